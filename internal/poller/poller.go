// Package poller keeps a live-position snapshot warm by polling the gateway
// on a fixed interval and on viewport changes.
package poller

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/skygate/skygate/internal/flightdata"
)

// DefaultInterval is the poll cadence when none is configured.
const DefaultInterval = 8 * time.Second

// FlightSource supplies live positions. Implemented by flightdata.Service.
type FlightSource interface {
	LiveFlights(ctx context.Context, box *flightdata.BoundingBox, limit int) ([]flightdata.Flight, error)
}

// Snapshot is the poller's latest applied result. On a failed refresh the
// previous flights are kept and Err records the failure.
type Snapshot struct {
	Flights   []flightdata.Flight
	UpdatedAt time.Time
	Seq       uint64
	Err       error
}

// Config holds configuration for the poller.
type Config struct {
	// Source supplies live positions. Required.
	Source FlightSource

	// Interval between polls. Default: DefaultInterval.
	Interval time.Duration

	// Limit is forwarded to every live-positions call.
	// Default: flightdata.DefaultLimit.
	Limit int

	// Bounds is the initial viewport, nil for worldwide.
	Bounds *flightdata.BoundingBox

	// OnUpdate, if set, is called after every applied snapshot.
	OnUpdate func(Snapshot)

	// Logger for poll diagnostics.
	Logger zerolog.Logger
}

// Poller issues the live-positions operation every interval and immediately
// after a bounds change. Every issued request carries a monotonically
// increasing sequence number; a response that would roll the snapshot back
// behind an already applied one is dropped, so a slow early poll can never
// overwrite a fast later one.
type Poller struct {
	source   FlightSource
	interval time.Duration
	limit    int
	onUpdate func(Snapshot)
	logger   zerolog.Logger

	seq atomic.Uint64

	mu          sync.RWMutex
	bounds      *flightdata.BoundingBox
	snap        Snapshot
	lastApplied uint64
	hasFetched  bool

	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	refresh   chan struct{}
	done      chan struct{}
}

// New creates a new poller. It does not poll until Start is called.
func New(cfg Config) *Poller {
	interval := cfg.Interval
	if interval == 0 {
		interval = DefaultInterval
	}
	limit := cfg.Limit
	if limit <= 0 {
		limit = flightdata.DefaultLimit
	}

	return &Poller{
		source:   cfg.Source,
		interval: interval,
		limit:    limit,
		bounds:   cfg.Bounds,
		onUpdate: cfg.OnUpdate,
		logger:   cfg.Logger,
		refresh:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Start begins polling. The first fetch is issued immediately. Start is
// idempotent; only the first call has effect.
func (p *Poller) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		ctx, p.cancel = context.WithCancel(ctx)
		go p.run(ctx)
	})
}

// Stop cancels the poll loop. Cancellation is cooperative: no further
// requests are issued, and an in-flight response is applied or dropped by
// its sequence number like any other. Stop does not wait for that response.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		if p.cancel != nil {
			p.cancel()
		}
	})
}

// Done is closed once the poll loop has exited.
func (p *Poller) Done() <-chan struct{} {
	return p.done
}

// SetBounds updates the viewport and triggers an immediate refresh.
func (p *Poller) SetBounds(box *flightdata.BoundingBox) {
	p.mu.Lock()
	p.bounds = box
	p.mu.Unlock()

	select {
	case p.refresh <- struct{}{}:
	default: // a refresh is already pending
	}
}

// Snapshot returns the latest applied result.
func (p *Poller) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snap
}

// Loading reports whether no fetch has completed yet. Background refreshes
// after the first completion never flip the consumer back into a loading
// state.
func (p *Poller) Loading() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return !p.hasFetched
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.fetch(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fetch(ctx)
		case <-p.refresh:
			p.fetch(ctx)
		}
	}
}

// fetch issues one live-positions request without blocking the loop, so a
// bounds-triggered refresh can overtake a slow earlier poll.
func (p *Poller) fetch(ctx context.Context) {
	seq := p.seq.Add(1)

	p.mu.RLock()
	bounds := p.bounds
	p.mu.RUnlock()

	go func() {
		flights, err := p.source.LiveFlights(ctx, bounds, p.limit)
		p.apply(seq, flights, err)
	}()
}

func (p *Poller) apply(seq uint64, flights []flightdata.Flight, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if seq <= p.lastApplied {
		p.logger.Debug().
			Uint64("seq", seq).
			Uint64("last_applied", p.lastApplied).
			Msg("dropping out-of-order poll response")
		return
	}
	p.lastApplied = seq
	p.hasFetched = true

	if err != nil {
		p.logger.Warn().Err(err).Uint64("seq", seq).Msg("live position poll failed")
		// Keep showing the previous flights; record the failure.
		p.snap.Err = err
		p.snap.Seq = seq
	} else {
		p.snap = Snapshot{
			Flights:   flights,
			UpdatedAt: time.Now(),
			Seq:       seq,
		}
	}

	if p.onUpdate != nil {
		p.onUpdate(p.snap)
	}
}
