package bestsellers

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/lepinkainen/bookrank/internal/books"
	"github.com/lepinkainen/bookrank/internal/nyt"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	overview *nyt.Overview
	err      error
	gotDate  string
}

func (f *fakeSource) Overview(_ context.Context, publishedDate string) (*nyt.Overview, error) {
	f.gotDate = publishedDate
	return f.overview, f.err
}

func TestFetchDeduplicatesByTitleFirstWins(t *testing.T) {
	source := &fakeSource{overview: &nyt.Overview{Lists: []nyt.List{
		{Name: "fiction", Books: []nyt.Entry{
			{Title: "DUNE", Rank: 3, Publisher: "Ace", PrimaryISBN13: "111"},
			{Title: "EMMA", Rank: 4, Publisher: "Penguin", PrimaryISBN13: "222"},
		}},
		{Name: "paperback", Books: []nyt.Entry{
			{Title: "DUNE", Rank: 1, Publisher: "Hodder", PrimaryISBN13: "333"},
			{Title: "ULYSSES", Rank: 2, Publisher: "Ace", PrimaryISBN13: "444"},
		}},
	}}}

	titles, err := NewFetcher(source, "2022-04-01").Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, "2022-04-01", source.gotDate)

	want := []books.Title{
		{ISBN13: "111", Title: "DUNE", Rank: 3, PublisherID: 1},
		{ISBN13: "222", Title: "EMMA", Rank: 4, PublisherID: 2},
		{ISBN13: "444", Title: "ULYSSES", Rank: 2, PublisherID: 1},
	}
	if diff := cmp.Diff(want, titles); diff != "" {
		t.Fatalf("titles mismatch (-want +got):\n%s", diff)
	}
}

func TestCanonicalizeDuplicateTitleDoesNotAllocatePublisher(t *testing.T) {
	overview := &nyt.Overview{Lists: []nyt.List{{Books: []nyt.Entry{
		{Title: "A", Rank: 1, Publisher: "P1", PrimaryISBN13: "1"},
		{Title: "A", Rank: 2, Publisher: "P2", PrimaryISBN13: "2"},
		{Title: "B", Rank: 3, Publisher: "P3", PrimaryISBN13: "3"},
	}}}}

	titles, duplicates, publishers := Canonicalize(overview)
	require.Len(t, titles, 2)
	require.Equal(t, 1, duplicates)
	require.Equal(t, 2, publishers)
	require.Equal(t, 2, titles[1].PublisherID, "P2 was never allocated")
}

func TestCanonicalizeRepeatedISBNReplacesInPlace(t *testing.T) {
	overview := &nyt.Overview{Lists: []nyt.List{{Books: []nyt.Entry{
		{Title: "HARDCOVER", Rank: 5, Publisher: "P", PrimaryISBN13: "9"},
		{Title: "OTHER", Rank: 6, Publisher: "P", PrimaryISBN13: "8"},
		{Title: "PAPERBACK", Rank: 2, Publisher: "P", PrimaryISBN13: "9"},
	}}}}

	titles, _, _ := Canonicalize(overview)
	want := []books.Title{
		{ISBN13: "9", Title: "PAPERBACK", Rank: 2, PublisherID: 1},
		{ISBN13: "8", Title: "OTHER", Rank: 6, PublisherID: 1},
	}
	if diff := cmp.Diff(want, titles); diff != "" {
		t.Fatalf("titles mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchEmptyOverview(t *testing.T) {
	titles, err := NewFetcher(&fakeSource{overview: &nyt.Overview{}}, "2022-04-01").Fetch(context.Background())
	require.NoError(t, err)
	require.Empty(t, titles)
}

func TestFetchSourceError(t *testing.T) {
	source := &fakeSource{err: errors.New("status 500")}
	titles, err := NewFetcher(source, "2022-04-01").Fetch(context.Background())
	require.Error(t, err)
	require.Nil(t, titles)
	require.Contains(t, err.Error(), "2022-04-01")
}
