package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lepinkainen/bookrank/internal/books"
	"github.com/lepinkainen/bookrank/internal/datastore"
	"github.com/lepinkainen/bookrank/internal/enrichment/book"
	apperrors "github.com/lepinkainen/bookrank/internal/errors"
	"github.com/lepinkainen/bookrank/internal/score"
)

var timeNow = func() time.Time { return time.Now().UTC() }

// Store is the persistence a run needs.
type Store interface {
	score.Store
	CountBooks(ctx context.Context) (int, error)
	InsertBooks(ctx context.Context, list []books.Book) (int, error)
	LoadSnapshot(ctx context.Context, publishedDate string) ([]books.Book, error)
	SaveSnapshot(ctx context.Context, publishedDate string, list []books.Book) error
	LoadState(ctx context.Context, publishedDate string) (datastore.IngestState, bool, error)
	SaveState(ctx context.Context, state datastore.IngestState) error
}

// TitleSource produces the deduplicated bestseller titles.
type TitleSource interface {
	Fetch(ctx context.Context) ([]books.Title, error)
}

// Enricher attaches ratings to titles.
type Enricher interface {
	Enrich(ctx context.Context, titles []books.Title) ([]books.Book, book.Stats, error)
}

// Reporter is triggered once every chunk has been stored.
type Reporter interface {
	Report(ctx context.Context) error
}

// Options are the per-run settings.
type Options struct {
	PublishedDate string
	// Refresh re-fetches and re-enriches even when a snapshot exists.
	Refresh bool
	Policy  apperrors.Policy
}

// Result describes what one run did.
type Result struct {
	Plan         Plan
	RowsBefore   int
	RowsAfter    int
	Inserted     int
	SnapshotSize int
	// Fetched is true when the upstream APIs were called this run.
	Fetched  bool
	Stats    book.Stats
	Reported bool
}

// Controller runs one ingestion step.
type Controller struct {
	store    Store
	titles   TitleSource
	enricher Enricher
	reporter Reporter
}

// NewController wires a controller. reporter may be nil.
func NewController(store Store, titles TitleSource, enricher Enricher, reporter Reporter) *Controller {
	return &Controller{
		store:    store,
		titles:   titles,
		enricher: enricher,
		reporter: reporter,
	}
}

// Run performs the action PlanFor selects for the current row count.
// Upstream failures leave the store unchanged and are not returned; only
// local failures (storage, report output) and cancellation are errors.
func (c *Controller) Run(ctx context.Context, opts Options) (Result, error) {
	n, err := c.store.CountBooks(ctx)
	if err != nil {
		return Result{}, err
	}

	plan := PlanFor(n)
	result := Result{Plan: plan, RowsBefore: n, RowsAfter: n}
	slog.Info("Planned run", "rows", n, "plan", plan.String(), "published_date", opts.PublishedDate)

	switch plan.Action {
	case ActionNone:
		slog.Info("Store is complete, nothing to do", "rows", n)
		return result, nil
	case ActionReport:
		if c.reporter == nil {
			return result, nil
		}
		if err := c.reporter.Report(ctx); err != nil {
			return result, fmt.Errorf("reporting: %w", err)
		}
		result.Reported = true
		return result, nil
	}

	dataset, err := c.dataset(ctx, opts, &result)
	if err != nil {
		return result, err
	}
	result.SnapshotSize = len(dataset)

	start, end := plan.Bounds(len(dataset))
	chunk := dataset[start:end]

	inserted, err := c.store.InsertBooks(ctx, chunk)
	if err != nil {
		return result, fmt.Errorf("storing chunk %d: %w", plan.Chunk, err)
	}
	result.Inserted = inserted

	if _, err := score.Recompute(ctx, c.store); err != nil {
		return result, err
	}

	if result.RowsAfter, err = c.store.CountBooks(ctx); err != nil {
		return result, err
	}

	if err := c.saveState(ctx, opts.PublishedDate, result); err != nil {
		return result, err
	}

	slog.Info("Chunk stored",
		"chunk", plan.Chunk,
		"range", fmt.Sprintf("[%d:%d)", start, end),
		"inserted", inserted,
		"rows", result.RowsAfter,
		"dataset", len(dataset))
	return result, nil
}

// dataset returns the enriched titles for the run's published date, from the
// stored snapshot when possible.
func (c *Controller) dataset(ctx context.Context, opts Options, result *Result) ([]books.Book, error) {
	if !opts.Refresh {
		snapshot, err := c.store.LoadSnapshot(ctx, opts.PublishedDate)
		if err != nil {
			return nil, err
		}
		if len(snapshot) > 0 {
			slog.Debug("Using stored snapshot", "published_date", opts.PublishedDate, "size", len(snapshot))
			return snapshot, nil
		}
	}

	result.Fetched = true
	titles, err := c.titles.Fetch(ctx)
	if err != nil {
		if ctx.Err() != nil || opts.Policy == apperrors.FailFast {
			return nil, err
		}
		slog.Warn("Bestseller fetch failed, nothing to store this run", "error", err)
		result.Stats = book.Stats{Skipped: map[apperrors.Stage]int{apperrors.StageFetch: 1}}
		return nil, nil
	}

	enriched, stats, err := c.enricher.Enrich(ctx, titles)
	result.Stats = stats
	if err != nil {
		return nil, err
	}

	if len(enriched) > 0 {
		if err := c.store.SaveSnapshot(ctx, opts.PublishedDate, enriched); err != nil {
			return nil, err
		}
	}
	return enriched, nil
}

func (c *Controller) saveState(ctx context.Context, publishedDate string, result Result) error {
	state, _, err := c.store.LoadState(ctx, publishedDate)
	if err != nil {
		return err
	}

	if result.Inserted > 0 {
		state.LastChunk = result.Plan.Chunk
	}
	state.RowCount = result.RowsAfter
	if result.SnapshotSize > 0 {
		state.SnapshotSize = result.SnapshotSize
	}
	state.UpdatedAt = timeNow()

	return c.store.SaveState(ctx, state)
}
