package host

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type instance struct {
	closed atomic.Int32
	err    error
}

func (i *instance) Close() error {
	i.closed.Add(1)
	return i.err
}

type overlay struct{ removed atomic.Bool }

func (o *overlay) Remove() { o.removed.Store(true) }

func TestMountAwaitUnmount(t *testing.T) {
	inst := &instance{}
	ov := &overlay{}
	h := Mount(context.Background(), func(ctx context.Context) (io.Closer, error) {
		return inst, nil
	}, ov)

	got, err := h.Await(context.Background())
	require.NoError(t, err)
	assert.Same(t, inst, got)

	require.NoError(t, h.Unmount())
	assert.Equal(t, int32(1), inst.closed.Load())
	assert.True(t, ov.removed.Load())

	// idempotent
	require.NoError(t, h.Unmount())
	assert.Equal(t, int32(1), inst.closed.Load())
}

func TestUnmountWaitsForInflightSetup(t *testing.T) {
	inst := &instance{}
	started := make(chan struct{})
	release := make(chan struct{})
	h := Mount(context.Background(), func(ctx context.Context) (io.Closer, error) {
		close(started)
		// ignores cancellation and finishes late
		<-release
		return inst, nil
	}, nil)
	<-started

	unmounted := make(chan error, 1)
	go func() { unmounted <- h.Unmount() }()

	select {
	case <-unmounted:
		t.Fatal("unmount returned before setup finished")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-unmounted)
	assert.Equal(t, int32(1), inst.closed.Load(), "instance created after teardown began must be released")
}

func TestUnmountCancelsSetup(t *testing.T) {
	h := Mount(context.Background(), func(ctx context.Context) (io.Closer, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}, nil)
	require.NoError(t, h.Unmount())

	_, err := h.Await(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSetupFailureSurfacesOnce(t *testing.T) {
	boom := errors.New("image missing")
	calls := 0
	h := Mount(context.Background(), func(ctx context.Context) (io.Closer, error) {
		calls++
		return nil, boom
	}, nil)

	_, err := h.Await(context.Background())
	assert.ErrorIs(t, err, boom)
	_, err = h.Await(context.Background())
	assert.ErrorIs(t, err, boom)
	require.NoError(t, h.Unmount())
	assert.Equal(t, 1, calls)
}

func TestAdoptedReleasedInReverse(t *testing.T) {
	var order []string
	h := Mount(context.Background(), func(ctx context.Context) (io.Closer, error) {
		return CloserFunc(func() error { order = append(order, "instance"); return nil }), nil
	}, nil)
	_, err := h.Await(context.Background())
	require.NoError(t, err)

	h.Adopt(CloserFunc(func() error { order = append(order, "window"); return nil }))
	h.Adopt(CloserFunc(func() error { order = append(order, "renderer"); return errors.New("leak") }))

	err = h.Unmount()
	assert.ErrorContains(t, err, "leak")
	assert.Equal(t, []string{"renderer", "window", "instance"}, order)
}

func TestSetupPanicBecomesError(t *testing.T) {
	h := Mount(context.Background(), func(ctx context.Context) (io.Closer, error) {
		panic("bad module")
	}, nil)
	_, err := h.Await(context.Background())
	var pe *PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "bad module", pe.Value)
	require.NoError(t, h.Unmount())
}

func TestAwaitHonorsContext(t *testing.T) {
	block := make(chan struct{})
	h := Mount(context.Background(), func(ctx context.Context) (io.Closer, error) {
		<-block
		return nil, nil
	}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := h.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	close(block)
	require.NoError(t, h.Unmount())
}
