package updater

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/theoremus-urban-solutions/transit-live/gtfsrt"
	"github.com/theoremus-urban-solutions/transit-live/gtfsrt/gtfsrttest"
)

type fakeLoader struct {
	mu      sync.Mutex
	results []gtfsrt.Result
	calls   atomic.Int32
}

func (f *fakeLoader) Load(ctx context.Context) gtfsrt.Result {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.results[0]
	if len(f.results) > 1 {
		f.results = f.results[1:]
	}
	return r
}

type cycle struct {
	err   error
	stops int
	at    time.Time
}

type recordingObserver struct {
	mu     sync.Mutex
	cycles []cycle
}

func (o *recordingObserver) ObserveRefresh(err error, stops int, at time.Time, d time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cycles = append(o.cycles, cycle{err: err, stops: stops, at: at})
}

func okResult() gtfsrt.Result {
	return gtfsrt.Result{
		Status: gtfsrt.StatusOK,
		Feed: gtfsrttest.Feed(1700000000,
			gtfsrttest.TripUpdate("1", "T1", "900",
				gtfsrttest.StopTime{StopID: "S1", Arrival: 1000},
				gtfsrttest.StopTime{StopID: "S2", Departure: 1100},
			),
		),
	}
}

func failResult() gtfsrt.Result {
	return gtfsrt.Result{
		Status: gtfsrt.StatusTransportError,
		Err:    &gtfsrt.FeedError{Kind: gtfsrt.KindTransport, URL: "http://upstream", StatusCode: 500},
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "nested", "trip_updates_by_stop.json"))

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save(ctx, []byte(`{"a":1}`)))
	require.NoError(t, store.Save(ctx, []byte(`{"b":2}`)))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"b":2}`, string(got))

	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	store := NewRedisStore(NewRedisClient(mr.Addr()), "trip_updates_by_stop")
	require.NoError(t, store.Ping(ctx))

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save(ctx, []byte(`{"S1":[]}`)))
	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"S1":[]}`, string(got))

	raw, err := mr.Get("trip_updates_by_stop")
	require.NoError(t, err)
	assert.Equal(t, `{"S1":[]}`, raw)
}

func TestRefreshOnceWritesArtifact(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "out.json"))
	obs := &recordingObserver{}
	now := time.Unix(1700000100, 0)
	u := New(&fakeLoader{results: []gtfsrt.Result{okResult()}}, store, time.Minute, zap.NewNop().Sugar(),
		WithObserver(obs), WithClock(func() time.Time { return now }))

	require.NoError(t, u.RefreshOnce(ctx))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"S1": [{"trip_id":"T1","route_id":"900","arrival":1000}],
		"S2": [{"trip_id":"T1","route_id":"900","arrival":1100}]
	}`, string(got))
	assert.Equal(t, now, u.LastSuccess())
	assert.Equal(t, int64(1700000000), u.FeedEpoch())
	assert.Equal(t, []cycle{{stops: 2, at: now}}, obs.cycles)
}

func TestObservedRefreshTimeIsSaveTime(t *testing.T) {
	var mu sync.Mutex
	tick := time.Unix(1700000000, 0)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		tick = tick.Add(time.Second)
		return tick
	}
	obs := &recordingObserver{}
	u := New(&fakeLoader{results: []gtfsrt.Result{okResult()}}, NewFileStore(filepath.Join(t.TempDir(), "out.json")),
		time.Minute, zap.NewNop().Sugar(), WithObserver(obs), WithClock(clock))

	require.NoError(t, u.RefreshOnce(context.Background()))
	require.Len(t, obs.cycles, 1)
	assert.Equal(t, u.LastSuccess(), obs.cycles[0].at)
	assert.Equal(t, time.Unix(1700000002, 0), obs.cycles[0].at)
}

func TestRefreshFailureKeepsPreviousArtifact(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "out.json"))
	obs := &recordingObserver{}
	u := New(&fakeLoader{results: []gtfsrt.Result{okResult(), failResult()}}, store, time.Minute,
		zap.NewNop().Sugar(), WithObserver(obs))

	require.NoError(t, u.RefreshOnce(ctx))
	before, err := store.Load(ctx)
	require.NoError(t, err)
	last := u.LastSuccess()

	err = u.RefreshOnce(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, gtfsrt.ErrTransport))

	after, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, last, u.LastSuccess())
	require.Len(t, obs.cycles, 2)
	assert.Error(t, obs.cycles[1].err)
}

func TestRefreshIsByteIdentical(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	first := NewFileStore(filepath.Join(dir, "a.json"))
	second := NewFileStore(filepath.Join(dir, "b.json"))

	require.NoError(t, New(&fakeLoader{results: []gtfsrt.Result{okResult()}}, first, time.Minute, zap.NewNop().Sugar()).RefreshOnce(ctx))
	require.NoError(t, New(&fakeLoader{results: []gtfsrt.Result{okResult()}}, second, time.Minute, zap.NewNop().Sugar()).RefreshOnce(ctx))

	a, _ := first.Load(ctx)
	b, _ := second.Load(ctx)
	assert.Equal(t, a, b)
}

func TestRunRefreshesImmediatelyAndStops(t *testing.T) {
	loader := &fakeLoader{results: []gtfsrt.Result{failResult()}}
	u := New(loader, NewFileStore(filepath.Join(t.TempDir(), "out.json")), time.Hour, zap.NewNop().Sugar())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- u.Run(ctx) }()

	require.Eventually(t, func() bool { return loader.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("updater did not stop after cancel")
	}
	assert.Equal(t, int32(1), loader.calls.Load())
}

func TestRunKeepsCadenceAfterFailures(t *testing.T) {
	loader := &fakeLoader{results: []gtfsrt.Result{failResult()}}
	u := New(loader, NewFileStore(filepath.Join(t.TempDir(), "out.json")), 10*time.Millisecond, zap.NewNop().Sugar())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = u.Run(ctx) }()

	require.Eventually(t, func() bool { return loader.calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	assert.True(t, u.LastSuccess().IsZero())
}
