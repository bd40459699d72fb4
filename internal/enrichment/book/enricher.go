// Package book attaches community ratings to bestseller titles.
package book

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/lepinkainen/bookrank/internal/books"
	apperrors "github.com/lepinkainen/bookrank/internal/errors"
)

// RatingSource resolves the average community rating for an ISBN.
type RatingSource interface {
	// Name returns the human-readable name of the source (e.g., "OpenLibrary").
	Name() string

	// Rating returns the average rating. Any failure, including a missing
	// rating, is returned as an error; implementations should wrap it in an
	// *errors.SkipError naming the failed stage.
	Rating(ctx context.Context, isbn string) (float64, error)
}

// Stats counts what happened to each title in one enrichment pass.
type Stats struct {
	Attempted int
	Enriched  int
	Skipped   map[apperrors.Stage]int
}

// SkippedTotal returns the number of titles dropped for any reason.
func (s Stats) SkippedTotal() int {
	total := 0
	for _, n := range s.Skipped {
		total += n
	}
	return total
}

// LogAttrs returns the stats as slog attributes, skip reasons in stable order.
func (s Stats) LogAttrs() []any {
	attrs := []any{"attempted", s.Attempted, "enriched", s.Enriched, "skipped", s.SkippedTotal()}

	stages := make([]string, 0, len(s.Skipped))
	for stage := range s.Skipped {
		stages = append(stages, string(stage))
	}
	sort.Strings(stages)
	for _, stage := range stages {
		attrs = append(attrs, "skipped_"+stage, s.Skipped[apperrors.Stage(stage)])
	}
	return attrs
}

// Enricher runs a RatingSource over a batch of titles.
type Enricher struct {
	source RatingSource
	policy apperrors.Policy
}

// NewEnricher creates an Enricher applying policy to per-title failures.
func NewEnricher(source RatingSource, policy apperrors.Policy) *Enricher {
	return &Enricher{
		source: source,
		policy: policy,
	}
}

// Enrich returns one Book per title whose rating resolved, in input order.
// Titles without a rating are dropped and counted; they are not retried.
// A cancelled context aborts the pass, and so does any other lookup failure
// under FailFast.
func (e *Enricher) Enrich(ctx context.Context, titles []books.Title) ([]books.Book, Stats, error) {
	stats := Stats{Skipped: make(map[apperrors.Stage]int)}
	result := make([]books.Book, 0, len(titles))

	for _, title := range titles {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		stats.Attempted++

		if title.ISBN13 == "" {
			stats.Skipped[apperrors.StageMissingISBN]++
			slog.Debug("Skipping title without ISBN", "title", title.Title)
			continue
		}

		rating, err := e.source.Rating(ctx, title.ISBN13)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				return nil, stats, ctxErr
			}
			// A missing rating is an answer, not a failure; FailFast only
			// stops on requests that did not complete.
			if e.policy == apperrors.FailFast && !errors.Is(err, ErrNoRating) {
				return nil, stats, err
			}

			stage := apperrors.StageUnknown
			if skipErr, ok := apperrors.AsSkipError(err); ok {
				stage = skipErr.Stage
			}
			stats.Skipped[stage]++
			slog.Debug("No rating, skipping", "source", e.source.Name(), "isbn", title.ISBN13, "title", title.Title, "stage", stage, "error", err)
			continue
		}

		stats.Enriched++
		result = append(result, books.Book{Title: title, Rating: rating})
	}

	slog.Info("Enriched titles", append([]any{"source", e.source.Name(), "policy", e.policy.String()}, stats.LogAttrs()...)...)
	return result, stats, nil
}
