// Package metrics регистрирует счётчики Prometheus для решений о доступе.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/magabrotheeeer/crimewatch/internal/access"
)

const namespace = "crimewatch"

// Metrics хранит счётчики сервиса доступа.
type Metrics struct {
	decisions        *prometheus.CounterVec
	trialDebits      prometheus.Counter
	duplicateActions prometheus.Counter
	activations      *prometheus.CounterVec
	premiumChanges   *prometheus.CounterVec
	accessToggles    *prometheus.CounterVec
}

// New регистрирует счётчики в reg. Для глобального реестра передаётся
// prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		decisions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "access_decisions_total",
			Help:      "Access decisions by outcome and denial reason.",
		}, []string{"valid", "reason"}),
		trialDebits: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trial_debits_total",
			Help:      "Trial uses consumed by apply-filter actions.",
		}),
		duplicateActions: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trial_duplicate_actions_total",
			Help:      "Apply-filter actions ignored as repeats of an already debited action.",
		}),
		activations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subscription_activations_total",
			Help:      "Subscription activations by plan.",
		}, []string{"plan"}),
		premiumChanges: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "premium_changes_total",
			Help:      "Premium override grants and revocations.",
		}, []string{"action"}),
		accessToggles: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admin_access_toggles_total",
			Help:      "Admin access flag changes by new value.",
		}, []string{"enabled"}),
	}
}

// ObserveDecision учитывает результат проверки доступа.
func (m *Metrics) ObserveDecision(r access.Result) {
	reason := string(r.Reason)
	if reason == "" {
		reason = "none"
	}
	valid := "false"
	if r.Valid {
		valid = "true"
	}
	m.decisions.WithLabelValues(valid, reason).Inc()
}

// TrialDebited учитывает списание пробного использования.
func (m *Metrics) TrialDebited() { m.trialDebits.Inc() }

// DuplicateAction учитывает повтор уже обработанного действия.
func (m *Metrics) DuplicateAction() { m.duplicateActions.Inc() }

// SubscriptionActivated учитывает активацию подписки.
func (m *Metrics) SubscriptionActivated(plan string) { m.activations.WithLabelValues(plan).Inc() }

// PremiumChanged учитывает выдачу или отзыв премиум-доступа.
func (m *Metrics) PremiumChanged(granted bool) {
	action := "revoke"
	if granted {
		action = "grant"
	}
	m.premiumChanges.WithLabelValues(action).Inc()
}

// AccessToggled учитывает изменение флага доступа администратора.
func (m *Metrics) AccessToggled(enabled bool) {
	v := "false"
	if enabled {
		v = "true"
	}
	m.accessToggles.WithLabelValues(v).Inc()
}
