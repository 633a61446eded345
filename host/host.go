// Package host ties a rendering surface to a mount/unmount lifecycle. Setup
// runs asynchronously and teardown always waits for it, so an instance
// created after teardown started is still released.
package host

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/richinsley/goshaderdemos/logger"
	"go.uber.org/zap"
)

// SetupFunc acquires the resources of a surface. It should return promptly
// once ctx is cancelled.
type SetupFunc func(ctx context.Context) (io.Closer, error)

// Overlay is a diagnostic display removed on unmount.
type Overlay interface {
	Remove()
}

// Host owns one mounted surface.
type Host struct {
	cancel context.CancelFunc
	done   chan struct{}

	instance io.Closer
	err      error

	overlay Overlay

	mu      sync.Mutex
	adopted []io.Closer

	unmountOnce sync.Once
	unmountErr  error
}

// Mount starts setup in the background. overlay may be nil.
func Mount(parent context.Context, setup SetupFunc, overlay Overlay) *Host {
	ctx, cancel := context.WithCancel(parent)
	h := &Host{
		cancel:  cancel,
		done:    make(chan struct{}),
		overlay: overlay,
	}
	go func() {
		defer close(h.done)
		defer func() {
			if r := recover(); r != nil {
				h.err = &PanicError{Value: r}
			}
		}()
		h.instance, h.err = setup(ctx)
		if h.err != nil {
			logger.Log.Error("Surface setup failed", zap.Error(h.err))
		}
	}()
	return h
}

// PanicError wraps a panic raised by a setup function.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return "setup panicked"
}

// Done is closed when setup has finished.
func (h *Host) Done() <-chan struct{} { return h.done }

// Await blocks until setup finishes or ctx is done.
func (h *Host) Await(ctx context.Context) (io.Closer, error) {
	select {
	case <-h.done:
		return h.instance, h.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Adopt registers a resource created from the setup result. Adopted
// resources are closed in reverse order on unmount.
func (h *Host) Adopt(c io.Closer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.adopted = append(h.adopted, c)
}

// Unmount cancels setup, waits for it to finish, then releases the adopted
// resources, the setup instance and the overlay. Calling it again returns the
// first result.
func (h *Host) Unmount() error {
	h.unmountOnce.Do(func() {
		h.cancel()
		<-h.done

		var errs []error
		h.mu.Lock()
		adopted := h.adopted
		h.adopted = nil
		h.mu.Unlock()
		for i := len(adopted) - 1; i >= 0; i-- {
			if err := adopted[i].Close(); err != nil {
				errs = append(errs, err)
			}
		}
		if h.instance != nil {
			if err := h.instance.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		if h.overlay != nil {
			h.overlay.Remove()
		}
		h.unmountErr = errors.Join(errs...)
		logger.Log.Debug("Surface unmounted", zap.Int("released", len(adopted)))
	})
	return h.unmountErr
}

// CloserFunc adapts a function to io.Closer.
type CloserFunc func() error

func (f CloserFunc) Close() error { return f() }
