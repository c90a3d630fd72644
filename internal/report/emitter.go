package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/actionlab/actionlab/internal/config"
	"github.com/actionlab/actionlab/internal/logging"
)

// Sink consumes report events (file, webhook, etc.).
type Sink interface {
	Name() string
	Deliver(context.Context, *Event) error
	Close(context.Context) error
}

// Metrics holds counters for report delivery.
type Metrics struct {
	Enqueued    uint64
	Dropped     uint64
	SinkSuccess map[string]uint64
	SinkFailure map[string]uint64
}

func (m *Metrics) clone() Metrics {
	out := Metrics{
		Enqueued:    m.Enqueued,
		Dropped:     m.Dropped,
		SinkSuccess: make(map[string]uint64, len(m.SinkSuccess)),
		SinkFailure: make(map[string]uint64, len(m.SinkFailure)),
	}
	for k, v := range m.SinkSuccess {
		out.SinkSuccess[k] = v
	}
	for k, v := range m.SinkFailure {
		out.SinkFailure[k] = v
	}
	return out
}

// Emitter buffers and delivers report events to sinks.
type Emitter struct {
	queue           chan *Event
	sinks           []Sink
	metrics         Metrics
	shutdownTimeout time.Duration
	onDrop          func()
	log             *slog.Logger

	mu        sync.RWMutex
	metricsMu sync.Mutex
	closed    bool
	wg        sync.WaitGroup
}

// EmitterConfig controls worker and queue sizing.
type EmitterConfig struct {
	QueueSize       int
	Workers         int
	ShutdownTimeout time.Duration
	OnDrop          func()
}

// NewEmitter starts background workers to deliver events to the provided sinks.
func NewEmitter(cfg EmitterConfig, sinks []Sink) *Emitter {
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 256
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	shutdownTimeout := cfg.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 2 * time.Second
	}

	em := &Emitter{
		queue: make(chan *Event, queueSize),
		sinks: sinks,
		metrics: Metrics{
			SinkSuccess: make(map[string]uint64, len(sinks)),
			SinkFailure: make(map[string]uint64, len(sinks)),
		},
		shutdownTimeout: shutdownTimeout,
		onDrop:          cfg.OnDrop,
		log:             logging.New("report"),
	}
	for _, s := range sinks {
		em.metrics.SinkSuccess[s.Name()] = 0
		em.metrics.SinkFailure[s.Name()] = 0
	}

	for i := 0; i < workers; i++ {
		em.wg.Add(1)
		go em.worker()
	}
	return em
}

// FromConfig builds the configured sinks and starts an emitter. It returns
// nil when reporting is disabled or no sinks are configured.
func FromConfig(cfg config.ReportsConfig, onDrop func()) (*Emitter, error) {
	if !cfg.Enabled || len(cfg.Sinks) == 0 {
		return nil, nil
	}
	var sinks []Sink
	for i, sc := range cfg.Sinks {
		var (
			s   Sink
			err error
		)
		switch strings.ToLower(strings.TrimSpace(sc.Type)) {
		case "file_jsonl":
			s, err = NewFileSink(sc.Path)
		case "webhook":
			s, err = NewWebhookSink(sc.URL, nil, time.Duration(sc.TimeoutMs)*time.Millisecond)
		default:
			err = fmt.Errorf("unknown type %q", sc.Type)
		}
		if err != nil {
			for _, open := range sinks {
				_ = open.Close(context.Background())
			}
			return nil, fmt.Errorf("reports sink %d: %w", i, err)
		}
		sinks = append(sinks, s)
	}
	return NewEmitter(EmitterConfig{QueueSize: cfg.QueueSize, Workers: cfg.Workers, OnDrop: onDrop}, sinks), nil
}

// Emit enqueues the event without blocking; a full queue drops it.
func (e *Emitter) Emit(ev *Event) {
	if e == nil || ev == nil {
		return
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.closed {
		select {
		case e.queue <- ev:
			e.metricsMu.Lock()
			e.metrics.Enqueued++
			e.metricsMu.Unlock()
			return
		default:
		}
	}
	e.metricsMu.Lock()
	e.metrics.Dropped++
	e.metricsMu.Unlock()
	if e.onDrop != nil {
		e.onDrop()
	}
}

// Close stops accepting new events and waits briefly to drain the queue.
func (e *Emitter) Close(ctx context.Context) {
	if e == nil {
		return
	}
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	close(e.queue)
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	if ctx == nil {
		ctx = context.Background()
	}
	waitCtx, cancel := context.WithTimeout(ctx, e.shutdownTimeout)
	defer cancel()

	select {
	case <-done:
	case <-waitCtx.Done():
		e.log.Warn("report queue not drained before shutdown timeout")
	}

	for _, s := range e.sinks {
		if err := s.Close(waitCtx); err != nil {
			e.log.Warn("sink close failed", "sink", s.Name(), "err", err)
		}
	}
}

// MetricsSnapshot safely copies current counters.
func (e *Emitter) MetricsSnapshot() Metrics {
	if e == nil {
		return Metrics{}
	}
	e.metricsMu.Lock()
	defer e.metricsMu.Unlock()
	return e.metrics.clone()
}

func (e *Emitter) worker() {
	defer e.wg.Done()
	for ev := range e.queue {
		e.deliver(ev)
	}
}

func (e *Emitter) deliver(ev *Event) {
	for _, s := range e.sinks {
		if err := s.Deliver(context.Background(), ev); err != nil {
			e.log.Warn("sink delivery failed", "sink", s.Name(), "run_id", ev.RunID, "err", err)
			e.metricsMu.Lock()
			e.metrics.SinkFailure[s.Name()]++
			e.metricsMu.Unlock()
			continue
		}
		e.metricsMu.Lock()
		e.metrics.SinkSuccess[s.Name()]++
		e.metricsMu.Unlock()
	}
}
