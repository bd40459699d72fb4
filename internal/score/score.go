// Package score keeps the derived score of every stored book current.
package score

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lepinkainen/bookrank/internal/books"
	"github.com/lepinkainen/bookrank/internal/datastore"
)

// Store is the storage the calculator reads from and writes back to.
type Store interface {
	ScoreInputs(ctx context.Context) ([]datastore.ScoreInput, error)
	UpdateScores(ctx context.Context, updates []datastore.ScoreUpdate) error
}

// Recompute sets derived_score = rating - rank on every stored row and
// returns the number of rows written. Running it twice changes nothing.
func Recompute(ctx context.Context, store Store) (int, error) {
	inputs, err := store.ScoreInputs(ctx)
	if err != nil {
		return 0, fmt.Errorf("reading score inputs: %w", err)
	}

	updates := Compute(inputs)
	if err := store.UpdateScores(ctx, updates); err != nil {
		return 0, fmt.Errorf("writing scores: %w", err)
	}

	slog.Debug("Recomputed derived scores", "rows", len(updates))
	return len(updates), nil
}

// Compute derives the score of each input, preserving order.
func Compute(inputs []datastore.ScoreInput) []datastore.ScoreUpdate {
	updates := make([]datastore.ScoreUpdate, 0, len(inputs))
	for _, in := range inputs {
		updates = append(updates, datastore.ScoreUpdate{
			ISBN13: in.ISBN13,
			Score:  books.DerivedScore(in.Rating, in.Rank),
		})
	}
	return updates
}
