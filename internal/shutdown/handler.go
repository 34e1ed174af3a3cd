package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"oembed/internal/logger"
)

type cleanup struct {
	name string
	fn   func(ctx context.Context) error
}

// Handler cancels a shared context on SIGINT or SIGTERM and then runs the
// registered cleanups in reverse order of registration.
type Handler struct {
	ctx      context.Context
	cancel   context.CancelFunc
	timeout  time.Duration
	logger   *logger.Logger
	mu       sync.Mutex
	cleanups []cleanup
	once     sync.Once
	done     chan struct{}
}

// New creates a shutdown handler. timeout bounds all cleanups together.
func New(timeout time.Duration, log *logger.Logger) *Handler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Handler{
		ctx:     ctx,
		cancel:  cancel,
		timeout: timeout,
		logger:  log,
		done:    make(chan struct{}),
	}
}

// Context is cancelled when shutdown starts.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// AddCleanup registers a named cleanup to run on shutdown.
func (h *Handler) AddCleanup(name string, fn func(ctx context.Context) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cleanups = append(h.cleanups, cleanup{name: name, fn: fn})
}

// Listen starts listening for shutdown signals
func (h *Handler) Listen() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			h.logger.Info("Received %s, shutting down", sig)
			h.Shutdown()
		case <-h.done:
		}
		signal.Stop(sigChan)
	}()
}

// Shutdown cancels the context and runs the cleanups. It is safe to call more
// than once; only the first call has an effect.
func (h *Handler) Shutdown() {
	h.once.Do(func() {
		h.cancel()

		h.mu.Lock()
		fns := h.cleanups
		h.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()

		for i := len(fns) - 1; i >= 0; i-- {
			h.logger.Debug("Cleanup: %s", fns[i].name)
			if err := fns[i].fn(ctx); err != nil {
				h.logger.Warn("Cleanup %s failed: %v", fns[i].name, err)
			}
		}
		close(h.done)
	})
}

// Done is closed once every cleanup has run.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}
