package database

import (
	"context"
	"sync"
	"time"
)

// Pinger is a backing service that can report its own reachability.
type Pinger interface {
	Name() string
	Ping(ctx context.Context) error
}

// CheckAll pings every service concurrently, each bounded by timeout, and
// returns the failures keyed by service name.
func CheckAll(ctx context.Context, timeout time.Duration, services ...Pinger) map[string]error {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		failures = make(map[string]error)
	)
	for _, svc := range services {
		if svc == nil {
			continue
		}
		wg.Add(1)
		go func(svc Pinger) {
			defer wg.Done()
			pingCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			if err := svc.Ping(pingCtx); err != nil {
				mu.Lock()
				failures[svc.Name()] = err
				mu.Unlock()
			}
		}(svc)
	}
	wg.Wait()
	return failures
}
