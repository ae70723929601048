package recap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/visit-recap/internal/model"
	"github.com/Veraticus/visit-recap/internal/odoo"
	"github.com/Veraticus/visit-recap/internal/service"
)

// backendDatetime is how the backend expects datetimes in domains (UTC).
const backendDatetime = "2006-01-02 15:04:05"

// Backend is the part of the Odoo client the fetcher needs.
type Backend interface {
	SearchRead(ctx context.Context, q odoo.SearchRead, out any) error
}

// Fetcher reads visit lines and visit headers from the backend.
type Fetcher struct {
	backend Backend
	logger  *slog.Logger
	now     func() time.Time
	config  Config
}

// NewFetcher creates a fetcher for the given backend.
func NewFetcher(backend Backend, config Config, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		backend: backend,
		config:  config,
		logger:  logger,
		now:     time.Now,
	}
}

// LineQuery returns the search_read query for visit lines, filtered to the
// recency window and status set.
func (f *Fetcher) LineQuery() odoo.SearchRead {
	domain := odoo.Domain{}
	if f.config.Days > 0 {
		since := f.now().UTC().AddDate(0, 0, -f.config.Days)
		domain = append(domain, odoo.Cond(fieldReportedOn, ">=", since.Format(backendDatetime)))
	}
	if len(f.config.Statuses) > 0 {
		domain = append(domain, odoo.Cond(fieldStatus, "in", f.config.Statuses))
	}

	return odoo.SearchRead{
		Model:  f.config.LineModel,
		Domain: domain,
		Fields: lineFields,
		Limit:  f.config.MaxRecords,
	}
}

// FetchLines retrieves the visit lines.
func (f *Fetcher) FetchLines(ctx context.Context) ([]model.VisitLine, error) {
	var records []lineRecord
	if err := f.backend.SearchRead(ctx, f.LineQuery(), &records); err != nil {
		return nil, fmt.Errorf("failed to fetch visit lines: %w", err)
	}
	f.warnIfTruncated(f.config.LineModel, len(records))

	return lo.Map(records, func(r lineRecord, _ int) model.VisitLine {
		return r.toModel()
	}), nil
}

// FetchHeaders retrieves every visit header.
func (f *Fetcher) FetchHeaders(ctx context.Context) ([]model.VisitHeader, error) {
	var records []headerRecord
	q := odoo.SearchRead{
		Model:  f.config.HeaderModel,
		Fields: headerFields,
		Limit:  f.config.MaxRecords,
	}
	if err := f.backend.SearchRead(ctx, q, &records); err != nil {
		return nil, fmt.Errorf("failed to fetch visit headers: %w", err)
	}
	f.warnIfTruncated(f.config.HeaderModel, len(records))

	return lo.Map(records, func(r headerRecord, _ int) model.VisitHeader {
		return r.toModel()
	}), nil
}

func (f *Fetcher) warnIfTruncated(modelName string, n int) {
	if n >= f.config.MaxRecords {
		f.logger.Warn("record limit reached, recap may be incomplete",
			"model", modelName,
			"limit", f.config.MaxRecords)
	}
}

// Snapshot is one complete fetch result. Its slices are never modified after
// Fetch returns.
type Snapshot struct {
	FetchedAt time.Time
	Lines     []model.VisitLine
	Headers   []model.VisitHeader
}

// Fetch runs both queries concurrently. It returns a snapshot only when both succeed.
func Fetch(ctx context.Context, f service.LineFetcher, now time.Time) (*Snapshot, error) {
	g, gctx := errgroup.WithContext(ctx)

	var lines []model.VisitLine
	var headers []model.VisitHeader

	g.Go(func() error {
		var err error
		lines, err = f.FetchLines(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		headers, err = f.FetchHeaders(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Snapshot{
		Lines:     lines,
		Headers:   headers,
		FetchedAt: now,
	}, nil
}
