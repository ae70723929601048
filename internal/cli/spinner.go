package cli

import (
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Spinner shows an indeterminate progress indicator while a fetch runs.
type Spinner struct {
	bar  *progressbar.ProgressBar
	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// StartSpinner starts a spinner with description on w (stderr when nil).
func StartSpinner(w io.Writer, description string) *Spinner {
	if w == nil {
		w = os.Stderr
	}

	s := &Spinner{
		done: make(chan struct{}),
		bar: progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(w),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetDescription("[cyan]"+description+"[reset]"),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionClearOnFinish(),
		),
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-s.done:
				return
			case <-ticker.C:
				if err := s.bar.Add(1); err != nil {
					slog.Debug("Failed to update spinner", "error", err)
				}
			}
		}
	}()

	return s
}

// Stop clears the spinner. It is safe to call more than once.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		close(s.done)
		s.wg.Wait()
		if err := s.bar.Finish(); err != nil {
			slog.Debug("Failed to finish spinner", "error", err)
		}
	})
}
