package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebhookEventsTotal counts Stripe webhook deliveries by event type and HTTP status.
	WebhookEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "salonbook",
		Subsystem: "billing",
		Name:      "webhook_events_total",
		Help:      "Stripe webhook deliveries by event type and HTTP status.",
	}, []string{"event_type", "status"})

	// CancellationsTotal counts subscription cancellations by outcome.
	CancellationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "salonbook",
		Subsystem: "billing",
		Name:      "cancellations_total",
		Help:      "Subscription cancellations by outcome (ok, processor_error, store_error).",
	}, []string{"outcome"})

	// MirrorUpdateFailuresTotal counts non-fatal failures writing mirror rows.
	MirrorUpdateFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "salonbook",
		Subsystem: "billing",
		Name:      "mirror_update_failures_total",
		Help:      "Failed writes to denormalized billing mirror tables.",
	}, []string{"table"})

	// PlanReconciliationsTotal counts reconcile runs by result.
	PlanReconciliationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "salonbook",
		Subsystem: "plans",
		Name:      "reconciliations_total",
		Help:      "Plan reconciliations by result (repaired, unchanged).",
	}, []string{"result"})

	// AppointmentsAutoCompleted counts appointments moved to completed by the sweeper.
	AppointmentsAutoCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "salonbook",
		Subsystem: "appointments",
		Name:      "auto_completed_total",
		Help:      "Appointments transitioned from confirmed to completed by the sweeper.",
	})

	// SweepRunsTotal counts sweeper runs by outcome.
	SweepRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "salonbook",
		Subsystem: "appointments",
		Name:      "sweep_runs_total",
		Help:      "Auto-completion sweeper runs by outcome.",
	}, []string{"outcome"})

	// TwoFactorVerificationsTotal counts verification attempts.
	TwoFactorVerificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "salonbook",
		Subsystem: "twofactor",
		Name:      "verifications_total",
		Help:      "2FA verification attempts by method and outcome.",
	}, []string{"method", "outcome"})

	// BlockedRequestsTotal counts requests rejected by the IP blocklist.
	BlockedRequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "salonbook",
		Subsystem: "http",
		Name:      "blocked_requests_total",
		Help:      "Requests rejected because the client IP is blocked.",
	})
)
