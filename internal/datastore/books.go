package datastore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lepinkainen/bookrank/internal/books"
)

// ScoreInput is the part of a stored book the derived score depends on.
type ScoreInput struct {
	ISBN13 string
	Rank   int
	Rating float64
}

// ScoreUpdate assigns a derived score to one stored book.
type ScoreUpdate struct {
	ISBN13 string
	Score  float64
}

// BookRow is a stored book as it sits in the books table.
type BookRow struct {
	ISBN13       string
	Title        string
	Rank         int
	Rating       float64
	PublisherID  int
	DerivedScore *float64
}

// CountBooks returns the number of rows in the books table.
func (s *SQLiteStore) CountBooks(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM books").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count books: %w", err)
	}
	return n, nil
}

// InsertBooks stores each book and its publisher link in one transaction.
// Rows whose ISBN is already stored are left untouched in both tables.
// Returns the number of new books.
func (s *SQLiteStore) InsertBooks(ctx context.Context, list []books.Book) (int, error) {
	bookRecords := make([]map[string]any, 0, len(list))
	publisherRecords := make([]map[string]any, 0, len(list))
	for _, b := range list {
		bookRecords = append(bookRecords, map[string]any{
			"isbn13":   b.ISBN13,
			"title":    b.Title.Title,
			"nyt_rank": b.Rank,
			"rating":   b.Rating,
		})
		publisherRecords = append(publisherRecords, map[string]any{
			"isbn13": b.ISBN13,
			"pub_id": b.PublisherID,
		})
	}

	var inserted int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		if inserted, err = insertRecords(ctx, tx, "INSERT OR IGNORE", booksTable, bookRecords); err != nil {
			return err
		}
		_, err = insertRecords(ctx, tx, "INSERT OR IGNORE", publishersTable, publisherRecords)
		return err
	})
	if err != nil {
		return 0, err
	}
	return int(inserted), nil
}

// ScoreInputs returns rank and rating of every stored book.
func (s *SQLiteStore) ScoreInputs(ctx context.Context) ([]ScoreInput, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT isbn13, nyt_rank, rating FROM books ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("failed to query score inputs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var inputs []ScoreInput
	for rows.Next() {
		var in ScoreInput
		if err := rows.Scan(&in.ISBN13, &in.Rank, &in.Rating); err != nil {
			return nil, fmt.Errorf("failed to scan score input: %w", err)
		}
		inputs = append(inputs, in)
	}
	return inputs, rows.Err()
}

// UpdateScores writes every derived score in one transaction.
func (s *SQLiteStore) UpdateScores(ctx context.Context, updates []ScoreUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, "UPDATE books SET derived_score = ? WHERE isbn13 = ?")
		if err != nil {
			return fmt.Errorf("failed to prepare score update: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, u := range updates {
			if _, err := stmt.ExecContext(ctx, u.Score, u.ISBN13); err != nil {
				return fmt.Errorf("failed to update score for %s: %w", u.ISBN13, err)
			}
		}
		return nil
	})
}

// ListBooks returns every stored book with its publisher in storage order.
func (s *SQLiteStore) ListBooks(ctx context.Context) ([]BookRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT b.isbn13, b.title, b.nyt_rank, b.rating, COALESCE(p.pub_id, 0), b.derived_score
		FROM books b LEFT JOIN publishers p ON p.isbn13 = b.isbn13
		ORDER BY b.rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var list []BookRow
	for rows.Next() {
		var (
			row   BookRow
			score sql.NullFloat64
		)
		if err := rows.Scan(&row.ISBN13, &row.Title, &row.Rank, &row.Rating, &row.PublisherID, &score); err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		if score.Valid {
			row.DerivedScore = &score.Float64
		}
		list = append(list, row)
	}
	return list, rows.Err()
}
