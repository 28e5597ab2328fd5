// Package metrics описывает метрики Prometheus для будильника и ленты уведомлений.
// Все методы безопасно вызывать на nil *Metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	alarmsCreated   *prometheus.CounterVec
	alarmsFired     prometheus.Counter
	alarmsCancelled prometheus.Counter
	alarmsPending   prometheus.Gauge
	fallbacks       *prometheus.CounterVec
	notifInserted   prometheus.Counter
	notifDismissed  prometheus.Counter
	refreshFailures prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		alarmsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smart_alarm",
			Name:      "alarms_created_total",
			Help:      "Alarm creation attempts by outcome.",
		}, []string{"outcome"}),
		alarmsFired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "smart_alarm",
			Name:      "alarms_fired_total",
			Help:      "Alarms whose deadline elapsed.",
		}),
		alarmsCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "smart_alarm",
			Name:      "alarms_cancelled_total",
			Help:      "Alarms cancelled before firing.",
		}),
		alarmsPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "smart_alarm",
			Name:      "alarms_pending",
			Help:      "Alarms currently held in the registry.",
		}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smart_alarm",
			Name:      "announcement_fallbacks_total",
			Help:      "Announcement lines replaced by a fallback because a data source failed.",
		}, []string{"source"}),
		notifInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "smart_alarm",
			Name:      "notifications_inserted_total",
			Help:      "Notification items added by feed refreshes.",
		}),
		notifDismissed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "smart_alarm",
			Name:      "notifications_dismissed_total",
			Help:      "Notification titles dismissed by the user.",
		}),
		refreshFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "smart_alarm",
			Name:      "feed_refresh_failures_total",
			Help:      "Feed refreshes that produced no changes because the upstream failed.",
		}),
	}

	m.registry.MustRegister(
		m.alarmsCreated,
		m.alarmsFired,
		m.alarmsCancelled,
		m.alarmsPending,
		m.fallbacks,
		m.notifInserted,
		m.notifDismissed,
		m.refreshFailures,
	)
	return m
}

// Handler отдаёт метрики в формате Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry нужен тестам для проверки значений.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) AlarmCreated(outcome string) {
	if m == nil {
		return
	}
	m.alarmsCreated.WithLabelValues(outcome).Inc()
}

func (m *Metrics) AlarmFired() {
	if m == nil {
		return
	}
	m.alarmsFired.Inc()
}

func (m *Metrics) AlarmCancelled() {
	if m == nil {
		return
	}
	m.alarmsCancelled.Inc()
}

func (m *Metrics) SetPending(n int) {
	if m == nil {
		return
	}
	m.alarmsPending.Set(float64(n))
}

func (m *Metrics) Fallback(source string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(source).Inc()
}

func (m *Metrics) NotificationsInserted(n int) {
	if m == nil {
		return
	}
	m.notifInserted.Add(float64(n))
}

func (m *Metrics) NotificationDismissed() {
	if m == nil {
		return
	}
	m.notifDismissed.Inc()
}

func (m *Metrics) RefreshFailed() {
	if m == nil {
		return
	}
	m.refreshFailures.Inc()
}
