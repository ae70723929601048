package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// InterruptHandler turns SIGINT/SIGTERM into context cancellation and tells
// the user what was stopped.
type InterruptHandler struct {
	writer      io.Writer
	notify      func(c chan<- os.Signal, sig ...os.Signal)
	stop        func(c chan<- os.Signal)
	action      string
	interrupted bool
	mu          sync.Mutex
}

// NewInterruptHandler creates a new interrupt handler.
func NewInterruptHandler(writer io.Writer) *InterruptHandler {
	if writer == nil {
		writer = os.Stderr
	}
	return &InterruptHandler{
		writer: writer,
		notify: signal.Notify,
		stop:   signal.Stop,
	}
}

// HandleInterrupts returns a context cancelled on the first interrupt. action
// names what is being stopped, e.g. "Export". Call the returned func when done.
func (h *InterruptHandler) HandleInterrupts(ctx context.Context, action string) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	h.action = action

	sigChan := make(chan os.Signal, 1)
	h.notify(sigChan, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		select {
		case <-sigChan:
			h.mu.Lock()
			if !h.interrupted {
				h.interrupted = true
				h.showInterruptMessage()
			}
			h.mu.Unlock()
			cancel()
		case <-done:
		}
	}()

	var once sync.Once
	return ctx, func() {
		once.Do(func() {
			h.stop(sigChan)
			close(done)
			cancel()
		})
	}
}

func (h *InterruptHandler) showInterruptMessage() {
	msg := "\n" + FormatWarning(h.action+" interrupted") + "\n"
	if _, err := fmt.Fprint(h.writer, msg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write interrupt message: %v\n", err)
	}
}

// WasInterrupted returns true if the process was interrupted.
func (h *InterruptHandler) WasInterrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.interrupted
}
