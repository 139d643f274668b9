package checkout

import (
	"context"
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"
)

// StartGC prunes with strategies every interval until the returned stop
// function is called. stop may be called more than once and returns once
// the collector has exited. A non-positive interval starts nothing.
//
//	stop := coord.StartGC(10*time.Minute, checkout.PruneOlderThan(24*time.Hour))
//	defer stop()
func (c *Coordinator) StartGC(interval time.Duration, strategies ...PruneStrategy) (stop func()) {
	if interval <= 0 {
		logger.Warnf("Background prune disabled, interval %v", interval)
		return func() {}
	}

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := c.Prune(ctx, strategies...)
				if err != nil && ctx.Err() == nil {
					logger.Warnf("Background prune failed: %v", err)
				}
				if len(removed) > 0 {
					logger.Infof("Background prune removed %d checkouts", len(removed))
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			wg.Wait()
		})
	}
}
