// Package verdictbus broadcasts config validation verdicts to websocket
// watchers, adapted from the teacher's internal/realtime event bus
// (bus.go/event.go/subscriber.go) and narrowed to a single event shape:
// "this config's Validate() outcome just changed."
package verdictbus

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Verdict is one config's validation outcome at a point in time.
type Verdict struct {
	Namespace string    `json:"namespace"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Entries   []Entry   `json:"entries,omitempty"`
	Sequence  int64     `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`
}

// Entry mirrors disir.ValidationEntry for wire transport.
type Entry struct {
	Path    string `json:"path"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Subscriber receives Verdicts for configs it watches.
type Subscriber interface {
	ID() string
	Send(v Verdict) error
	Close() error
	Context() context.Context
}

var (
	subscribersActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "disir", Subsystem: "verdictbus", Name: "subscribers_active",
		Help: "Open websocket watch connections.",
	})
	verdictsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "disir", Subsystem: "verdictbus", Name: "verdicts_published_total",
		Help: "Verdicts published, by resulting status.",
	}, []string{"status"})
)

// Bus fans out Verdicts to subscribers watching a given
// namespace/name pair.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string]map[Subscriber]struct{} // key: namespace/name
	sequence    int64
	logger      *slog.Logger
}

// New constructs a Bus.
func New(logger *slog.Logger) *Bus {
	return &Bus{
		subscribers: make(map[string]map[Subscriber]struct{}),
		logger:      logger.With("component", "verdictbus"),
	}
}

func watchKey(namespace, name string) string { return namespace + "/" + name }

// Subscribe registers sub to receive Verdicts for namespace/name.
func (b *Bus) Subscribe(namespace, name string, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := watchKey(namespace, name)
	if b.subscribers[key] == nil {
		b.subscribers[key] = make(map[Subscriber]struct{})
	}
	b.subscribers[key][sub] = struct{}{}
	subscribersActive.Inc()
	b.logger.Info("subscriber added", "subscriber_id", sub.ID(), "watch", key)
}

// Unsubscribe removes sub from namespace/name's watch set and closes it.
func (b *Bus) Unsubscribe(namespace, name string, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := watchKey(namespace, name)
	if set, ok := b.subscribers[key]; ok {
		if _, present := set[sub]; present {
			delete(set, sub)
			if len(set) == 0 {
				delete(b.subscribers, key)
			}
			_ = sub.Close()
			subscribersActive.Dec()
			b.logger.Info("subscriber removed", "subscriber_id", sub.ID(), "watch", key)
		}
	}
}

// Publish broadcasts v to every subscriber watching v.Namespace/v.Name.
func (b *Bus) Publish(v Verdict) {
	v.Sequence = atomic.AddInt64(&b.sequence, 1)
	v.Timestamp = time.Now()
	verdictsPublished.WithLabelValues(v.Status).Inc()

	key := watchKey(v.Namespace, v.Name)

	b.mu.RLock()
	set := b.subscribers[key]
	subs := make([]Subscriber, 0, len(set))
	for s := range set {
		subs = append(subs, s)
	}
	b.mu.RUnlock()

	if len(subs) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, sub := range subs {
		wg.Add(1)
		go func(s Subscriber) {
			defer wg.Done()
			select {
			case <-s.Context().Done():
				b.Unsubscribe(v.Namespace, v.Name, s)
				return
			default:
			}
			if err := s.Send(v); err != nil {
				b.logger.Warn("failed to send verdict, dropping subscriber", "subscriber_id", s.ID(), "error", err)
				b.Unsubscribe(v.Namespace, v.Name, s)
			}
		}(sub)
	}
	wg.Wait()
}
