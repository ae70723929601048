// Package service defines the interfaces shared between the recap packages.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/visit-recap/internal/model"
)

// LineFetcher retrieves the raw visit records the pivot is built from.
type LineFetcher interface {
	FetchLines(ctx context.Context) ([]model.VisitLine, error)
	FetchHeaders(ctx context.Context) ([]model.VisitHeader, error)
}

// TableWriter emits a built recap table to some destination.
type TableWriter interface {
	Write(ctx context.Context, table *model.Table) error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultRetryOptions returns the retry settings used for backend calls.
func DefaultRetryOptions() RetryOptions {
	return RetryOptions{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
	}
}
