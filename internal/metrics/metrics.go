package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_login_attempts_total",
		Help: "Login attempts by outcome.",
	}, []string{"result"})

	ThrottleRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auth_throttle_rejections_total",
		Help: "Login attempts rejected by the attempt throttle.",
	})

	TokensIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_tokens_issued_total",
		Help: "Bearer tokens issued by class.",
	}, []string{"class"})

	TokensRevoked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auth_tokens_revoked_total",
		Help: "Tokens added to the revocation ledger.",
	})

	SweepDeletions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_sweep_deletions_total",
		Help: "Rows closed or deleted by the periodic cleanup sweeps.",
	}, []string{"kind"})
)
