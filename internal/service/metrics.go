package service

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/absence-governance/internal/domain/model"
)

// Prometheus-метрики решений фасада.
var decisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ag_governance_decisions_total",
		Help: "Количество решений по операциям и исходам.",
	},
	[]string{"operation", "outcome"},
)

// outcome возвращает метку исхода для ошибки.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, model.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, model.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, model.ErrAlreadyResolved):
		return "already_resolved"
	case errors.Is(err, model.ErrReasonRequired):
		return "reason_required"
	case errors.Is(err, model.ErrConcurrentModification):
		return "concurrent_modification"
	case errors.Is(err, model.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}

func observe(operation string, err error) {
	decisionsTotal.WithLabelValues(operation, outcome(err)).Inc()
}
