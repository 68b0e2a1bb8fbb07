package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Pinger receives periodic keep-alive ticks.
type Pinger interface {
	KeepAlive()
	Len() int
}

// StartKeepAliveWorker pings every open update stream at interval until ctx
// is cancelled. The returned channel closes when the worker exits. A
// non-positive interval disables the worker.
func StartKeepAliveWorker(ctx context.Context, streams Pinger, interval time.Duration, logger *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	if streams == nil || interval <= 0 {
		close(done)
		return done
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				logger.Debug("keep-alive worker stopped")
				return
			case <-ticker.C:
				if streams.Len() == 0 {
					continue
				}
				streams.KeepAlive()
			}
		}
	}()
	return done
}
