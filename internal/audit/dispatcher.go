package audit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultDrainTimeout bounds Close when Config.DrainTimeout is zero.
const DefaultDrainTimeout = 5 * time.Second

// Config controls dispatcher buffering and shutdown.
type Config struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
	// DrainTimeout bounds how long Close waits for the sink to take the
	// buffered events. When it elapses the sink context is cancelled and the
	// rest are counted as dropped.
	DrainTimeout time.Duration
}

// Dispatcher hands token events to a Sink from a single goroutine, so sign
// and decode calls never wait on sink I/O. Drops are tracked per event type.
type Dispatcher struct {
	cfg   Config
	sink  Sink
	queue chan Event

	stop   chan struct{}
	exited chan struct{}
	once   sync.Once
	closed atomic.Bool

	// sinkCtx is handed to every Sink.Emit; Close cancels it once the drain
	// timeout passes.
	sinkCtx    context.Context
	cancelSink context.CancelFunc

	dropped [len(EventTypes) + 1]atomic.Uint64
}

// NewDispatcher starts a dispatcher for sink. It returns nil when cfg is
// disabled; a nil *Dispatcher accepts and discards every call.
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = DefaultDrainTimeout
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	sinkCtx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		cfg:        cfg,
		sink:       sink,
		queue:      make(chan Event, cfg.BufferSize),
		stop:       make(chan struct{}),
		exited:     make(chan struct{}),
		sinkCtx:    sinkCtx,
		cancelSink: cancel,
	}
	go d.loop()
	return d
}

// Emit queues event. The timestamp is stamped here when the caller left it
// zero. With DropIfFull a full queue drops the event; otherwise Emit waits
// for room until ctx ends, which also counts as a drop.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil || d.closed.Load() {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	if d.cfg.DropIfFull {
		select {
		case d.queue <- event:
		default:
			d.drop(event.EventType)
		}
		return
	}

	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case d.queue <- event:
	case <-ctx.Done():
		d.drop(event.EventType)
	case <-d.stop:
	}
}

// Close stops accepting events and flushes the queue to the sink, waiting at
// most DrainTimeout before cancelling the sink context. Sinks must return
// once their ctx is done. Close is idempotent.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.once.Do(func() {
		d.closed.Store(true)
		close(d.stop)

		timer := time.NewTimer(d.cfg.DrainTimeout)
		defer timer.Stop()
		select {
		case <-d.exited:
		case <-timer.C:
			d.cancelSink()
			<-d.exited
		}
		d.cancelSink()
	})
}

// Dropped returns the total number of dropped events.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	var total uint64
	for i := range d.dropped {
		total += d.dropped[i].Load()
	}
	return total
}

// DroppedByType returns drop counts keyed by event type. Every known type is
// present; events of an unknown type are reported under EventUnknown when
// any were dropped.
func (d *Dispatcher) DroppedByType() map[string]uint64 {
	out := make(map[string]uint64, len(EventTypes)+1)
	for i, t := range EventTypes {
		if d == nil {
			out[t] = 0
			continue
		}
		out[t] = d.dropped[i].Load()
	}
	if d != nil {
		if n := d.dropped[len(EventTypes)].Load(); n > 0 {
			out[EventUnknown] = n
		}
	}
	return out
}

func (d *Dispatcher) loop() {
	defer close(d.exited)
	for {
		select {
		case event := <-d.queue:
			d.deliver(event)
		case <-d.stop:
			d.flush()
			return
		}
	}
}

func (d *Dispatcher) flush() {
	for {
		select {
		case event := <-d.queue:
			d.deliver(event)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(event Event) {
	if d.sinkCtx.Err() != nil {
		d.drop(event.EventType)
		return
	}
	d.sink.Emit(d.sinkCtx, event)
}

func (d *Dispatcher) drop(eventType string) {
	d.dropped[eventIndex(eventType)].Add(1)
}

func eventIndex(eventType string) int {
	for i, t := range EventTypes {
		if t == eventType {
			return i
		}
	}
	return len(EventTypes)
}
