package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lepinkainen/bookrank/internal/books"
)

// IngestState is the progress record of one published date.
type IngestState struct {
	PublishedDate string
	LastChunk     int
	RowCount      int
	SnapshotSize  int
	UpdatedAt     time.Time
}

// SaveSnapshot replaces the enriched dataset stored for publishedDate.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, publishedDate string, list []books.Book) error {
	records := make([]map[string]any, 0, len(list))
	for i, b := range list {
		records = append(records, map[string]any{
			"published_date": publishedDate,
			"position":       i,
			"isbn13":         b.ISBN13,
			"title":          b.Title.Title,
			"nyt_rank":       b.Rank,
			"pub_id":         b.PublisherID,
			"rating":         b.Rating,
		})
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM enriched_titles WHERE published_date = ?", publishedDate); err != nil {
			return fmt.Errorf("failed to clear snapshot: %w", err)
		}
		_, err := insertRecords(ctx, tx, "INSERT", enrichedTitlesTable, records)
		return err
	})
}

// LoadSnapshot returns the enriched dataset stored for publishedDate in its
// original order, or nil when none was saved.
func (s *SQLiteStore) LoadSnapshot(ctx context.Context, publishedDate string) ([]books.Book, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT isbn13, title, nyt_rank, pub_id, rating
		FROM enriched_titles WHERE published_date = ? ORDER BY position`, publishedDate)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var list []books.Book
	for rows.Next() {
		var b books.Book
		if err := rows.Scan(&b.ISBN13, &b.Title.Title, &b.Rank, &b.PublisherID, &b.Rating); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// SaveState upserts the ingest state of state.PublishedDate.
func (s *SQLiteStore) SaveState(ctx context.Context, state IngestState) error {
	if state.UpdatedAt.IsZero() {
		state.UpdatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO ingest_state (published_date, last_chunk, row_count, snapshot_size, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(published_date) DO UPDATE SET
			last_chunk = excluded.last_chunk,
			row_count = excluded.row_count,
			snapshot_size = excluded.snapshot_size,
			updated_at = excluded.updated_at`,
		state.PublishedDate, state.LastChunk, state.RowCount, state.SnapshotSize,
		state.UpdatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save ingest state: %w", err)
	}
	return nil
}

// LoadState returns the ingest state of publishedDate. The boolean is false
// when no run has recorded one yet.
func (s *SQLiteStore) LoadState(ctx context.Context, publishedDate string) (IngestState, bool, error) {
	state := IngestState{PublishedDate: publishedDate, LastChunk: -1}

	var updatedAt string
	err := s.db.QueryRowContext(ctx, `SELECT last_chunk, row_count, snapshot_size, updated_at
		FROM ingest_state WHERE published_date = ?`, publishedDate).
		Scan(&state.LastChunk, &state.RowCount, &state.SnapshotSize, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return state, false, nil
	}
	if err != nil {
		return state, false, fmt.Errorf("failed to load ingest state: %w", err)
	}

	if ts, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		state.UpdatedAt = ts
	}
	return state, true, nil
}
