// Package bestsellers turns a dated bestseller overview into one canonical
// title per unique book.
package bestsellers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lepinkainen/bookrank/internal/books"
	"github.com/lepinkainen/bookrank/internal/nyt"
)

// OverviewSource is the upstream bestseller list.
type OverviewSource interface {
	Overview(ctx context.Context, publishedDate string) (*nyt.Overview, error)
}

// Fetcher retrieves and deduplicates the list for one published date.
type Fetcher struct {
	source        OverviewSource
	publishedDate string
}

// NewFetcher creates a Fetcher for publishedDate.
func NewFetcher(source OverviewSource, publishedDate string) *Fetcher {
	return &Fetcher{
		source:        source,
		publishedDate: publishedDate,
	}
}

// Fetch returns one Title per unique title in source order. The first entry
// seen for a title wins; later duplicates are dropped even if their ISBN or
// rank differ. Publisher IDs are assigned in first-seen order for this pass.
func (f *Fetcher) Fetch(ctx context.Context) ([]books.Title, error) {
	overview, err := f.source.Overview(ctx, f.publishedDate)
	if err != nil {
		return nil, fmt.Errorf("fetching bestsellers for %s: %w", f.publishedDate, err)
	}

	titles, duplicates, publishers := Canonicalize(overview)

	slog.Info("Fetched bestsellers",
		"published_date", f.publishedDate,
		"lists", len(overview.Lists),
		"entries", overview.EntryCount(),
		"unique", len(titles),
		"duplicates", duplicates,
		"publishers", publishers)

	return titles, nil
}

// Canonicalize deduplicates overview by title and keys the result by ISBN.
// An ISBN that reappears under a different title keeps its original position
// and takes the later entry's values. It returns the titles, the number of
// dropped title duplicates and the number of distinct publishers.
func Canonicalize(overview *nyt.Overview) ([]books.Title, int, int) {
	seenTitles := make(map[string]struct{})
	positions := make(map[string]int)
	assigner := NewAssigner()
	var titles []books.Title
	duplicates := 0

	for _, list := range overview.Lists {
		for _, entry := range list.Books {
			if _, ok := seenTitles[entry.Title]; ok {
				duplicates++
				continue
			}
			seenTitles[entry.Title] = struct{}{}

			title := books.Title{
				ISBN13:      entry.PrimaryISBN13,
				Title:       entry.Title,
				Rank:        entry.Rank,
				PublisherID: assigner.Assign(entry.Publisher),
			}

			if pos, ok := positions[title.ISBN13]; ok {
				titles[pos] = title
				continue
			}
			positions[title.ISBN13] = len(titles)
			titles = append(titles, title)
		}
	}

	return titles, duplicates, assigner.Len()
}
