package poller_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skygate/skygate/internal/flightdata"
	"github.com/skygate/skygate/internal/poller"
)

// sourceFunc adapts a function to the FlightSource interface.
type sourceFunc func(ctx context.Context, box *flightdata.BoundingBox, limit int) ([]flightdata.Flight, error)

func (f sourceFunc) LiveFlights(ctx context.Context, box *flightdata.BoundingBox, limit int) ([]flightdata.Flight, error) {
	return f(ctx, box, limit)
}

func flightsNamed(ids ...string) []flightdata.Flight {
	flights := make([]flightdata.Flight, len(ids))
	for i, id := range ids {
		flights[i] = flightdata.Flight{ID: id}
	}
	return flights
}

func TestPoller_FirstFetchImmediate(t *testing.T) {
	updates := make(chan poller.Snapshot, 16)

	p := poller.New(poller.Config{
		Source: sourceFunc(func(context.Context, *flightdata.BoundingBox, int) ([]flightdata.Flight, error) {
			return flightsNamed("a", "b"), nil
		}),
		Interval: time.Hour, // only the immediate fetch should fire
		OnUpdate: func(s poller.Snapshot) { updates <- s },
		Logger:   zerolog.Nop(),
	})

	assert.True(t, p.Loading())

	p.Start(context.Background())
	defer p.Stop()

	select {
	case snap := <-updates:
		assert.Len(t, snap.Flights, 2)
		assert.Equal(t, uint64(1), snap.Seq)
		assert.NoError(t, snap.Err)
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot applied")
	}

	assert.False(t, p.Loading())
	assert.Len(t, p.Snapshot().Flights, 2)
}

func TestPoller_ErrorKeepsPreviousFlights(t *testing.T) {
	updates := make(chan poller.Snapshot, 16)
	var calls atomic.Int32

	p := poller.New(poller.Config{
		Source: sourceFunc(func(context.Context, *flightdata.BoundingBox, int) ([]flightdata.Flight, error) {
			if calls.Add(1) == 1 {
				return flightsNamed("a"), nil
			}
			return nil, flightdata.ErrBackendUnavailable
		}),
		Interval: time.Hour,
		OnUpdate: func(s poller.Snapshot) { updates <- s },
		Logger:   zerolog.Nop(),
	})

	p.Start(context.Background())
	defer p.Stop()

	require.NoError(t, (<-updates).Err)

	p.SetBounds(nil) // trigger the failing refresh

	select {
	case snap := <-updates:
		assert.ErrorIs(t, snap.Err, flightdata.ErrBackendUnavailable)
		assert.Len(t, snap.Flights, 1, "previous flights survive a failed refresh")
	case <-time.After(2 * time.Second):
		t.Fatal("failed refresh was not applied")
	}

	assert.False(t, p.Loading(), "a failed refresh never flips back to loading")
}

func TestPoller_SetBoundsTriggersRefresh(t *testing.T) {
	updates := make(chan poller.Snapshot, 16)
	var gotBounds atomic.Pointer[flightdata.BoundingBox]

	p := poller.New(poller.Config{
		Source: sourceFunc(func(_ context.Context, box *flightdata.BoundingBox, _ int) ([]flightdata.Flight, error) {
			gotBounds.Store(box)
			return nil, nil
		}),
		Interval: time.Hour,
		OnUpdate: func(s poller.Snapshot) { updates <- s },
		Logger:   zerolog.Nop(),
	})

	p.Start(context.Background())
	defer p.Stop()

	<-updates // initial worldwide fetch
	assert.Nil(t, gotBounds.Load())

	box := &flightdata.BoundingBox{MinLat: -24.1, MaxLat: -22.9, MinLon: -47.5, MaxLon: -45.8}
	p.SetBounds(box)

	select {
	case <-updates:
		assert.Equal(t, box, gotBounds.Load())
	case <-time.After(2 * time.Second):
		t.Fatal("bounds change did not trigger a refresh")
	}
}

func TestPoller_SlowResponseCannotRollBack(t *testing.T) {
	updates := make(chan poller.Snapshot, 16)
	release := make(chan struct{})
	var calls atomic.Int32

	p := poller.New(poller.Config{
		Source: sourceFunc(func(context.Context, *flightdata.BoundingBox, int) ([]flightdata.Flight, error) {
			if calls.Add(1) == 1 {
				<-release // the first poll is slow
				return flightsNamed("stale"), nil
			}
			return flightsNamed("fresh"), nil
		}),
		Interval: time.Hour,
		OnUpdate: func(s poller.Snapshot) { updates <- s },
		Logger:   zerolog.Nop(),
	})

	p.Start(context.Background())
	defer p.Stop()

	// While poll 1 is stuck, a bounds change issues poll 2, which wins.
	require.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	p.SetBounds(nil)

	snap := <-updates
	require.Equal(t, uint64(2), snap.Seq)
	assert.Equal(t, "fresh", snap.Flights[0].ID)

	// Now the stale response arrives; it must be dropped, not applied.
	close(release)
	time.Sleep(200 * time.Millisecond)

	final := p.Snapshot()
	assert.Equal(t, uint64(2), final.Seq)
	assert.Equal(t, "fresh", final.Flights[0].ID)
	assert.Empty(t, updates, "a dropped response must not notify")
}

func TestPoller_LimitForwarded(t *testing.T) {
	updates := make(chan poller.Snapshot, 16)
	var gotLimit atomic.Int32

	p := poller.New(poller.Config{
		Source: sourceFunc(func(_ context.Context, _ *flightdata.BoundingBox, limit int) ([]flightdata.Flight, error) {
			gotLimit.Store(int32(limit))
			return nil, nil
		}),
		Interval: time.Hour,
		Limit:    250,
		OnUpdate: func(s poller.Snapshot) { updates <- s },
		Logger:   zerolog.Nop(),
	})

	p.Start(context.Background())
	defer p.Stop()

	<-updates
	assert.Equal(t, int32(250), gotLimit.Load())
}

func TestPoller_DefaultLimit(t *testing.T) {
	updates := make(chan poller.Snapshot, 16)
	var gotLimit atomic.Int32

	p := poller.New(poller.Config{
		Source: sourceFunc(func(_ context.Context, _ *flightdata.BoundingBox, limit int) ([]flightdata.Flight, error) {
			gotLimit.Store(int32(limit))
			return nil, nil
		}),
		Interval: time.Hour,
		OnUpdate: func(s poller.Snapshot) { updates <- s },
		Logger:   zerolog.Nop(),
	})

	p.Start(context.Background())
	defer p.Stop()

	<-updates
	assert.Equal(t, int32(flightdata.DefaultLimit), gotLimit.Load())
}

func TestPoller_StopEndsLoop(t *testing.T) {
	p := poller.New(poller.Config{
		Source: sourceFunc(func(context.Context, *flightdata.BoundingBox, int) ([]flightdata.Flight, error) {
			return nil, nil
		}),
		Interval: 10 * time.Millisecond,
		Logger:   zerolog.Nop(),
	})

	p.Start(context.Background())
	p.Stop()

	select {
	case <-p.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("poll loop did not exit after Stop")
	}

	// Stop twice is fine.
	p.Stop()
}
