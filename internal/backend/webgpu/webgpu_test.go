package webgpu

import (
	"errors"
	"testing"
	"time"

	"github.com/born-ml/gradbench/internal/bench"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeQueue counts fence waits and advances a clock by 3ms per read.
type fakeQueue struct {
	syncs int
	err   error
	clock time.Time
}

func (q *fakeQueue) sync() error {
	q.syncs++
	return q.err
}

func (q *fakeQueue) now() time.Time {
	q.clock = q.clock.Add(3 * time.Millisecond)
	return q.clock
}

func TestEvent_RecordDrainsQueue(t *testing.T) {
	q := &fakeQueue{}
	start, end := newEvent(q.sync, q.now), newEvent(q.sync, q.now)

	require.NoError(t, start.Record())
	require.NoError(t, end.Record())
	assert.Equal(t, 2, q.syncs)

	ms, err := start.ElapsedTime(end)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, ms, 1e-9)
}

func TestEvent_SyncFailure(t *testing.T) {
	lost := errors.New("device lost")
	q := &fakeQueue{err: lost}
	e := newEvent(q.sync, q.now)

	require.ErrorIs(t, e.Record(), lost)

	_, err := e.ElapsedTime(newEvent(q.sync, q.now))
	require.ErrorIs(t, err, ErrNotRecorded)
}

type foreignEvent struct{}

func (foreignEvent) Record() error {
	return nil
}

func (foreignEvent) ElapsedTime(bench.Event) (float64, error) {
	return 0, nil
}

func TestEvent_Foreign(t *testing.T) {
	q := &fakeQueue{}
	e := newEvent(q.sync, q.now)
	require.NoError(t, e.Record())

	_, err := e.ElapsedTime(foreignEvent{})
	require.ErrorIs(t, err, ErrForeignEvent)
}

func TestEvent_WithTimed(t *testing.T) {
	q := &fakeQueue{}
	dev := &eventDevice{q: q}

	out, ms, err := bench.Timed(dev, func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, out)
	assert.InDelta(t, 3.0, ms, 1e-9)
	assert.Equal(t, 3, q.syncs)
}

// eventDevice exposes fence markers without a GPU.
type eventDevice struct {
	q *fakeQueue
}

func (d *eventDevice) Name() string {
	return "fake-webgpu"
}

func (d *eventDevice) NewEvent() (bench.Event, error) {
	return newEvent(d.q.sync, d.q.now), nil
}

func (d *eventDevice) Synchronize() error {
	return d.q.sync()
}

func TestNew(t *testing.T) {
	if !IsAvailable() {
		_, err := New()
		require.ErrorIs(t, err, ErrUnavailable)
		t.Skip("WebGPU not available on this system")
	}

	b, err := New()
	require.NoError(t, err)
	defer b.Release()

	assert.Equal(t, "WebGPU", b.Name())
	require.NoError(t, b.Synchronize())

	out, ms, err := bench.Timed[struct{}](b, func() (struct{}, error) { return struct{}{}, nil })
	require.NoError(t, err)
	assert.Equal(t, struct{}{}, out)
	assert.GreaterOrEqual(t, ms, 0.0)
}
