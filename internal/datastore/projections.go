package datastore

import (
	"context"
	"fmt"
)

// TitleScore is one point of the title ranking projection.
type TitleScore struct {
	Title string  `yaml:"title"`
	Score float64 `yaml:"score"`
}

// PublisherScore is one book's derived score labelled with its publisher.
type PublisherScore struct {
	PublisherID int     `yaml:"publisher_id"`
	Score       float64 `yaml:"score"`
}

// RankRating pairs the list rank of a book with its community rating.
type RankRating struct {
	Rank   int     `yaml:"rank"`
	Rating float64 `yaml:"rating"`
}

// TitlesByScore returns (title, derived_score) ordered by score, highest first.
func (s *SQLiteStore) TitlesByScore(ctx context.Context) ([]TitleScore, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT title, derived_score FROM books
		WHERE derived_score IS NOT NULL
		ORDER BY derived_score DESC, rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query titles by score: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []TitleScore
	for rows.Next() {
		var ts TitleScore
		if err := rows.Scan(&ts.Title, &ts.Score); err != nil {
			return nil, fmt.Errorf("failed to scan title score: %w", err)
		}
		out = append(out, ts)
	}
	return out, rows.Err()
}

// PublisherScores returns (pub_id, derived_score) for every scored book.
func (s *SQLiteStore) PublisherScores(ctx context.Context) ([]PublisherScore, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT p.pub_id, b.derived_score
		FROM publishers p JOIN books b ON p.isbn13 = b.isbn13
		WHERE b.derived_score IS NOT NULL
		ORDER BY b.rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query publisher scores: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []PublisherScore
	for rows.Next() {
		var ps PublisherScore
		if err := rows.Scan(&ps.PublisherID, &ps.Score); err != nil {
			return nil, fmt.Errorf("failed to scan publisher score: %w", err)
		}
		out = append(out, ps)
	}
	return out, rows.Err()
}

// RankRatings returns (nyt_rank, rating) in storage order.
func (s *SQLiteStore) RankRatings(ctx context.Context) ([]RankRating, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT nyt_rank, rating FROM books ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("failed to query rank ratings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []RankRating
	for rows.Next() {
		var rr RankRating
		if err := rows.Scan(&rr.Rank, &rr.Rating); err != nil {
			return nil, fmt.Errorf("failed to scan rank rating: %w", err)
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}

// Scores returns every derived score in storage order.
func (s *SQLiteStore) Scores(ctx context.Context) ([]float64, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT derived_score FROM books WHERE derived_score IS NOT NULL ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
