// Package metrics exposes network layer counters and gauges to Prometheus.
//
// A nil *Metrics is valid and records nothing, so callers never need to
// check whether metrics are enabled.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "msn"

// Label values for AssociationResult.
const (
	AssocGranted  = "granted"
	AssocCapacity = "pan_at_capacity"
	AssocIgnored  = "reservation_pending"
	AssocRejected = "response_rejected"
)

// Metrics holds the node's collectors.
type Metrics struct {
	joinAttempts     prometheus.Counter
	joins            *prometheus.CounterVec
	joinFailures     *prometheus.CounterVec
	transitions      *prometheus.CounterVec
	associations     *prometheus.CounterVec
	peers            prometheus.Gauge
	transmissions    *prometheus.CounterVec
	framesReceived   prometheus.Counter
	framesDropped    *prometheus.CounterVec
	queueDepth       *prometheus.GaugeVec
	releasedMessages prometheus.Counter
}

// New creates the collectors and registers them with reg. A nil reg
// creates unregistered collectors.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		joinAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "join", Name: "attempts_total",
			Help: "Join attempts started, including each retry out of the wait interval.",
		}),
		joins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "join", Name: "completed_total",
			Help: "Successful joins by resulting role.",
		}, []string{"role"}),
		joinFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "join", Name: "failures_total",
			Help: "Absorbed join failures by reason.",
		}, []string{"reason"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "nwk", Name: "state_transitions_total",
			Help: "Connection state transitions by target state.",
		}, []string{"state"}),
		associations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "coordinator", Name: "associations_total",
			Help: "Association indications handled by result.",
		}, []string{"result"}),
		peers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "coordinator", Name: "peers",
			Help: "Committed peer short addresses.",
		}),
		transmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "data", Name: "transmissions_total",
			Help: "Confirmed data transmissions by MAC status.",
		}, []string{"status"}),
		framesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "data", Name: "frames_received_total",
			Help: "Data frames delivered to the application.",
		}),
		framesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "data", Name: "frames_dropped_total",
			Help: "Received data frames not delivered, by reason.",
		}, []string{"reason"}),
		queueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "inbox", Name: "queue_depth",
			Help: "Queued MAC messages awaiting the dispatcher.",
		}, []string{"queue"}),
		releasedMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "inbox", Name: "released_total",
			Help: "MAC message buffers released by the dispatcher.",
		}),
	}

	if reg != nil {
		for _, c := range m.collectors() {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.joinAttempts, m.joins, m.joinFailures, m.transitions, m.associations,
		m.peers, m.transmissions, m.framesReceived, m.framesDropped, m.queueDepth,
		m.releasedMessages,
	}
}

// JoinAttempt counts a join attempt.
func (m *Metrics) JoinAttempt() {
	if m == nil {
		return
	}
	m.joinAttempts.Inc()
}

// Joined counts a completed join in role.
func (m *Metrics) Joined(role string) {
	if m == nil {
		return
	}
	m.joins.WithLabelValues(role).Inc()
}

// JoinFailure counts an absorbed join failure.
func (m *Metrics) JoinFailure(reason string) {
	if m == nil {
		return
	}
	m.joinFailures.WithLabelValues(reason).Inc()
}

// Transition counts entry into state.
func (m *Metrics) Transition(state string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(state).Inc()
}

// AssociationResult counts a handled association indication.
func (m *Metrics) AssociationResult(result string) {
	if m == nil {
		return
	}
	m.associations.WithLabelValues(result).Inc()
}

// SetPeers sets the committed peer count.
func (m *Metrics) SetPeers(n int) {
	if m == nil {
		return
	}
	m.peers.Set(float64(n))
}

// Transmission counts a confirmed transmission.
func (m *Metrics) Transmission(status string) {
	if m == nil {
		return
	}
	m.transmissions.WithLabelValues(status).Inc()
}

// FrameReceived counts a data frame delivered to the application.
func (m *Metrics) FrameReceived() {
	if m == nil {
		return
	}
	m.framesReceived.Inc()
}

// FrameDropped counts a data frame that was not delivered.
func (m *Metrics) FrameDropped(reason string) {
	if m == nil {
		return
	}
	m.framesDropped.WithLabelValues(reason).Inc()
}

// SetQueueDepth records the inbox queue lengths.
func (m *Metrics) SetQueueDepth(mgmt, data int) {
	if m == nil {
		return
	}
	m.queueDepth.WithLabelValues("management").Set(float64(mgmt))
	m.queueDepth.WithLabelValues("data").Set(float64(data))
}

// Released counts a released MAC message buffer.
func (m *Metrics) Released() {
	if m == nil {
		return
	}
	m.releasedMessages.Inc()
}
