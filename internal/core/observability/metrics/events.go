package metrics

import (
	"maps"
	"slices"
	"time"

	"github.com/zeusync/tickcore/internal/core/events/bus"
	"github.com/zeusync/tickcore/internal/core/observability/log"
)

var _ bus.Observer = (*EventStats)(nil)

// EventMetrics aggregates the dispatches of one event type.
type EventMetrics struct {
	// Operation counts
	PublishCount  uint64
	DispatchCount uint64
	DeliveryCount uint64
	ErrorCount    uint64
	Unhandled     uint64

	// Performance metrics
	AvgLatency time.Duration
	MaxLatency time.Duration

	FirstSeen time.Time
	LastSeen  time.Time
	LastError error
}

// EventStats is a bus.Observer recording per event type metrics. Like the bus
// it observes, it is owned by the tick goroutine.
type EventStats struct {
	byType map[string]*EventMetrics
	now    func() time.Time
}

func NewEventStats() *EventStats {
	return &EventStats{
		byType: make(map[string]*EventMetrics),
		now:    time.Now,
	}
}

func (s *EventStats) OnPublish(ev bus.Event) {
	m := s.entry(ev.Type())
	m.PublishCount++
}

func (s *EventStats) OnDelivered(ev bus.Event, handlers int, err error, took time.Duration) {
	m := s.entry(ev.Type())
	m.DeliveryCount += uint64(handlers)
	if handlers == 0 {
		m.Unhandled++
	}
	if err != nil {
		m.ErrorCount++
		m.LastError = err
	}
	// Running mean over completed dispatches.
	m.DispatchCount++
	n := time.Duration(m.DispatchCount)
	m.AvgLatency = (m.AvgLatency*(n-1) + took) / n
	m.MaxLatency = max(m.MaxLatency, took)
}

// Get returns the metrics of one event type.
func (s *EventStats) Get(eventType string) (EventMetrics, bool) {
	m, ok := s.byType[eventType]
	if !ok {
		return EventMetrics{}, false
	}
	return *m, true
}

// Types returns the observed event types in lexical order.
func (s *EventStats) Types() []string {
	return slices.Sorted(maps.Keys(s.byType))
}

func (s *EventStats) Reset() {
	clear(s.byType)
}

// LogSummary writes one info line per observed event type.
func (s *EventStats) LogSummary(l log.Log) {
	for _, t := range s.Types() {
		m := s.byType[t]
		l.Info("event stats",
			log.String("event", t),
			log.Uint64("published", m.PublishCount),
			log.Uint64("dispatched", m.DispatchCount),
			log.Uint64("delivered", m.DeliveryCount),
			log.Uint64("errors", m.ErrorCount),
			log.Uint64("unhandled", m.Unhandled),
			log.Duration("avg_latency", m.AvgLatency),
			log.Duration("max_latency", m.MaxLatency),
		)
	}
}

func (s *EventStats) entry(eventType string) *EventMetrics {
	m, ok := s.byType[eventType]
	if !ok {
		now := s.now()
		m = &EventMetrics{FirstSeen: now}
		s.byType[eventType] = m
	}
	m.LastSeen = s.now()
	return m
}
