package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор prometheus коллекторов сервиса
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueryDuration    *prometheus.HistogramVec
	DBQueryErrors      *prometheus.CounterVec
	DBOpenConnections  *prometheus.GaugeVec
	DBInUseConnections *prometheus.GaugeVec
	DBWaitCount        *prometheus.GaugeVec

	InboundMessagesTotal *prometheus.CounterVec
	ResponderTotal       *prometheus.CounterVec
	TransportHandles     *prometheus.GaugeVec
}

// New регистрирует коллекторы в глобальном registry
func New(serviceName string) *Metrics {
	return NewWithRegistry(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegistry регистрирует коллекторы в переданном registry
func NewWithRegistry(serviceName string, reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	labels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: labels,
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),

		DBQueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query latency",
			ConstLabels: labels,
			Buckets:     []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		DBQueryErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_query_errors_total",
			Help:        "Database query errors",
			ConstLabels: labels,
		}, []string{"operation"}),
		DBOpenConnections: f.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Open connections in the pool",
			ConstLabels: labels,
		}, []string{"db"}),
		DBInUseConnections: f.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Connections currently in use",
			ConstLabels: labels,
		}, []string{"db"}),
		DBWaitCount: f.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_wait_count",
			Help:        "Total number of connections waited for",
			ConstLabels: labels,
		}, []string{"db"}),

		InboundMessagesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "inbound_messages_total",
			Help:        "Inbound messenger events by processing result",
			ConstLabels: labels,
		}, []string{"result"}),
		ResponderTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "responder_replies_total",
			Help:        "Automated replies by outcome",
			ConstLabels: labels,
		}, []string{"outcome"}),
		TransportHandles: f.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "transport_handle_up",
			Help:        "Transport handle status, 1 for the current status of each handle",
			ConstLabels: labels,
		}, []string{"handle", "status"}),
	}
}

// ObserveInbound учитывает результат обработки входящего сообщения
func (m *Metrics) ObserveInbound(result string) {
	if m == nil {
		return
	}
	m.InboundMessagesTotal.WithLabelValues(result).Inc()
}

// ObserveResponder учитывает исход автоответа
func (m *Metrics) ObserveResponder(outcome string) {
	if m == nil {
		return
	}
	m.ResponderTotal.WithLabelValues(outcome).Inc()
}

// SetTransportStatus выставляет 1 для текущего статуса хэндла и 0 для остальных
func (m *Metrics) SetTransportStatus(handle string, status string, all []string) {
	if m == nil {
		return
	}
	for _, s := range all {
		value := 0.0
		if s == status {
			value = 1
		}
		m.TransportHandles.WithLabelValues(handle, s).Set(value)
	}
}
