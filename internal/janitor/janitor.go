// Package janitor runs the periodic cleanup sweeps, decoupled from request
// handling. Every sweep is idempotent, so running early or late changes
// nothing.
package janitor

import (
	"context"
	"log/slog"
	"time"
)

type CleanupService interface {
	CleanupExpiredSessions(ctx context.Context) (int64, error)
	CleanupExpiredRevocations(ctx context.Context) (int64, error)
	CleanupExpiredResetTokens(ctx context.Context) (int64, error)
}

type Janitor struct {
	svc      CleanupService
	interval time.Duration
	log      *slog.Logger
}

func New(svc CleanupService, interval time.Duration, log *slog.Logger) *Janitor {
	if log == nil {
		log = slog.Default()
	}
	return &Janitor{svc: svc, interval: interval, log: log}
}

// Run sweeps once immediately, then on every tick until ctx is canceled.
func (j *Janitor) Run(ctx context.Context) {
	j.sweep(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	if n, err := j.svc.CleanupExpiredSessions(ctx); err != nil {
		j.log.Warn("session sweep failed", "err", err)
	} else if n > 0 {
		j.log.Info("closed expired sessions", "count", n)
	}

	if n, err := j.svc.CleanupExpiredRevocations(ctx); err != nil {
		j.log.Warn("revocation sweep failed", "err", err)
	} else if n > 0 {
		j.log.Info("purged expired revocations", "count", n)
	}

	if n, err := j.svc.CleanupExpiredResetTokens(ctx); err != nil {
		j.log.Warn("reset token sweep failed", "err", err)
	} else if n > 0 {
		j.log.Info("purged expired reset tokens", "count", n)
	}
}
