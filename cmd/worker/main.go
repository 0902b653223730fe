// Package main is an illustrative demonstration of a Disruptor wired up
// with one producer goroutine and several independently-paced subscriber
// goroutines, printing what each subscriber consumes.
package main

import (
	"flag"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/rishav/godisruptor/internal/ring"
)

func main() {
	size := flag.Uint64("size", 8, "ring capacity, must be a power of two")
	subscribers := flag.Int("subscribers", 2, "number of consumer subscribers")
	events := flag.Int("events", 20, "number of values the producer publishes")
	putInterval := flag.Duration("put-interval", 10*time.Millisecond, "delay between publishes")
	waitTimeout := flag.Duration("wait-timeout", time.Second, "per-call timeout for Put and Next")
	flag.Parse()

	cfg := ring.DefaultConfig[string](*size)

	d, err := ring.NewDisruptor(cfg)
	if err != nil {
		log.Fatalf("failed to construct disruptor: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < *subscribers; i++ {
		sub := d.Subscribe(false)
		wg.Add(1)
		go runSubscriber(&wg, sub, *events, *waitTimeout)
	}

	for i := 0; i < *events; i++ {
		value := fmt.Sprintf("event-%d", i)
		seq, err := d.Put(value, *waitTimeout)
		if err != nil {
			log.Printf("put failed: value=%s error=%v", value, err)
			continue
		}
		log.Printf("produced: seq=%d value=%s", seq, value)
		time.Sleep(*putInterval)
	}

	wg.Wait()
}

func runSubscriber(wg *sync.WaitGroup, sub *ring.Subscriber[string], events int, timeout time.Duration) {
	defer wg.Done()
	defer sub.Unregister()

	for i := 0; i < events; i++ {
		seq, value, err := sub.Next(timeout)
		if err != nil {
			log.Printf("next failed: subscriber=%s error=%v", sub.ID(), err)
			return
		}
		log.Printf("consumed: subscriber=%s seq=%d value=%s", sub.ID(), seq, value)
	}
}
