// Package report turns the stored projections into the shapes the charts
// consume and writes the flat calculated-data artifact.
package report

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lepinkainen/bookrank/internal/datastore"
)

// Shaping limits of the chart projections.
const (
	TopTitleCount      = 5
	TitleLabelLimit    = 10
	MinPublisherBooks  = 3
	PublisherLimit     = 5
	RankRatingLimit    = 30
	calculatedDataHead = "[This line has all of the calculated data] "
)

// Source is the read side of the store the report is built from.
type Source interface {
	TitlesByScore(ctx context.Context) ([]datastore.TitleScore, error)
	PublisherScores(ctx context.Context) ([]datastore.PublisherScore, error)
	RankRatings(ctx context.Context) ([]datastore.RankRating, error)
	Scores(ctx context.Context) ([]float64, error)
}

// PublisherGroup is every derived score of one publisher's books.
type PublisherGroup struct {
	PublisherID int       `yaml:"publisher_id"`
	Scores      []float64 `yaml:"scores"`
}

// Summary holds the shaped projections of one report.
type Summary struct {
	GeneratedAt   time.Time              `yaml:"generated_at"`
	PublishedDate string                 `yaml:"published_date,omitempty"`
	Books         int                    `yaml:"books"`
	TopTitles     []datastore.TitleScore `yaml:"top_titles"`
	Publishers    []PublisherGroup       `yaml:"publishers"`
	RankRatings   []datastore.RankRating `yaml:"rank_ratings"`
	Scores        []float64              `yaml:"scores"`
}

// Build reads every projection from src and shapes it.
func Build(ctx context.Context, src Source) (*Summary, error) {
	titles, err := src.TitlesByScore(ctx)
	if err != nil {
		return nil, fmt.Errorf("titles by score: %w", err)
	}
	pubs, err := src.PublisherScores(ctx)
	if err != nil {
		return nil, fmt.Errorf("publisher scores: %w", err)
	}
	rr, err := src.RankRatings(ctx)
	if err != nil {
		return nil, fmt.Errorf("rank ratings: %w", err)
	}
	scores, err := src.Scores(ctx)
	if err != nil {
		return nil, fmt.Errorf("scores: %w", err)
	}

	return &Summary{
		GeneratedAt: time.Now().UTC(),
		Books:       len(rr),
		TopTitles:   TopTitles(titles, TopTitleCount),
		Publishers:  GroupPublishers(pubs, MinPublisherBooks, PublisherLimit),
		RankRatings: firstN(rr, RankRatingLimit),
		Scores:      scores,
	}, nil
}

// TopTitles keeps the first n entries with chart-sized labels.
func TopTitles(titles []datastore.TitleScore, n int) []datastore.TitleScore {
	top := firstN(titles, n)
	out := make([]datastore.TitleScore, len(top))
	for i, ts := range top {
		out[i] = datastore.TitleScore{Title: TruncateLabel(ts.Title), Score: ts.Score}
	}
	return out
}

// TruncateLabel shortens titles longer than TitleLabelLimit characters to
// their first TitleLabelLimit+1 characters followed by "..", the label
// format the existing charts were drawn with.
func TruncateLabel(title string) string {
	runes := []rune(title)
	if len(runes) <= TitleLabelLimit {
		return title
	}
	return string(runes[:TitleLabelLimit+1]) + ".."
}

// GroupPublishers groups scores by publisher in first-seen order and keeps
// up to limit publishers with at least minBooks books.
func GroupPublishers(scores []datastore.PublisherScore, minBooks, limit int) []PublisherGroup {
	var order []int
	byID := make(map[int][]float64)
	for _, ps := range scores {
		if _, seen := byID[ps.PublisherID]; !seen {
			order = append(order, ps.PublisherID)
		}
		byID[ps.PublisherID] = append(byID[ps.PublisherID], ps.Score)
	}

	groups := []PublisherGroup{}
	for _, id := range order {
		if len(groups) == limit {
			break
		}
		if len(byID[id]) < minBooks {
			continue
		}
		groups = append(groups, PublisherGroup{PublisherID: id, Scores: byID[id]})
	}
	return groups
}

// CalculatedData renders the single-line text artifact. Every value is
// followed by ", ".
func CalculatedData(scores []float64) string {
	var sb strings.Builder
	sb.WriteString(calculatedDataHead)
	for _, v := range scores {
		sb.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
		sb.WriteString(", ")
	}
	return sb.String()
}

func firstN[T any](in []T, n int) []T {
	if len(in) > n {
		in = in[:n]
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
