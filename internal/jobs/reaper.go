// Package jobs hosts the background maintenance routines that run beside
// the HTTP server.
package jobs

import (
	"context"
	"log"
	"time"

	"github.com/eafc-tic/equiptrack/internal/config"
	"github.com/eafc-tic/equiptrack/internal/repository"
)

// StartReaper launches the session reaper: a ticker goroutine that closes
// every active session older than the configured timeout.  The sweep is a
// single UPDATE, so overlapping sweeps or an explicit close racing the
// reaper cannot double-close a session.  The goroutine stops when ctx is
// cancelled.
func StartReaper(ctx context.Context, cfg config.Config, sessions *repository.SessionRepo) {
	if !cfg.ReaperEnabled {
		log.Println("reaper: disabled by configuration")
		return
	}

	go func() {
		ticker := time.NewTicker(cfg.ReaperInterval)
		defer ticker.Stop()
		log.Printf("reaper: started (interval=%s, timeout=%s)", cfg.ReaperInterval, cfg.SessionTimeout)

		for {
			select {
			case <-ctx.Done():
				log.Println("reaper: stopped")
				return
			case <-ticker.C:
				sweep(ctx, cfg, sessions)
			}
		}
	}()
}

// sweep runs one reaper pass.  Errors are logged and the next tick retries;
// a transient database failure must never take the server down.
func sweep(ctx context.Context, cfg config.Config, sessions *repository.SessionRepo) {
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cutoff := time.Now().UTC().Add(-cfg.SessionTimeout)
	n, err := sessions.CloseStale(sweepCtx, cutoff)
	if err != nil {
		log.Printf("reaper: sweep failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("reaper: closed %d stale session(s)", n)
	}
}
