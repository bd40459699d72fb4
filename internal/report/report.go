package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/lepinkainen/bookrank/internal/fileutil"
)

// Artifact names inside the report directory.
const (
	CalculatedDataFile = "calculated_data.txt"
	SummaryFile        = "summary.yaml"
)

// Options controls where and what the Reporter writes.
type Options struct {
	Dir           string
	Overwrite     bool
	WriteYAML     bool
	PublishedDate string
	// Tables renders the projections to Out when set.
	Tables bool
	Out    io.Writer
}

// Reporter is the reporting sink triggered once the store is full.
type Reporter struct {
	src  Source
	opts Options
}

// New creates a Reporter reading from src.
func New(src Source, opts Options) *Reporter {
	return &Reporter{src: src, opts: opts}
}

// Report builds the summary and writes the artifacts.
func (r *Reporter) Report(ctx context.Context) error {
	summary, err := Build(ctx, r.src)
	if err != nil {
		return fmt.Errorf("building report: %w", err)
	}
	summary.PublishedDate = r.opts.PublishedDate

	textPath := filepath.Join(r.opts.Dir, CalculatedDataFile)
	written, err := fileutil.WriteFileWithOverwrite(textPath, []byte(CalculatedData(summary.Scores)), 0644, r.opts.Overwrite)
	if err != nil {
		return err
	}
	slog.Info("Report written", "path", textPath, "written", written, "scores", len(summary.Scores))

	if r.opts.WriteYAML {
		yamlPath := filepath.Join(r.opts.Dir, SummaryFile)
		written, err := fileutil.WriteYAMLFile(summary, yamlPath, r.opts.Overwrite)
		if err != nil {
			return err
		}
		slog.Info("Summary written", "path", yamlPath, "written", written)
	}

	if r.opts.Tables && r.opts.Out != nil {
		RenderTables(r.opts.Out, summary)
	}
	return nil
}

// RenderTables writes the shaped projections as tables to w.
func RenderTables(w io.Writer, s *Summary) {
	titles := newTable(w, "Top titles by derived score", table.Row{"#", "Title", "Score"})
	for i, ts := range s.TopTitles {
		titles.AppendRow(table.Row{i + 1, ts.Title, formatScore(ts.Score)})
	}
	titles.Render()

	pubs := newTable(w, "Publishers with more than 2 books", table.Row{"Publisher", "Books", "Scores"})
	for _, g := range s.Publishers {
		scores := make([]string, len(g.Scores))
		for i, v := range g.Scores {
			scores[i] = formatScore(v)
		}
		pubs.AppendRow(table.Row{g.PublisherID, len(g.Scores), strings.Join(scores, ", ")})
	}
	pubs.Render()

	ranks := newTable(w, "Rank vs rating", table.Row{"Rank", "Rating"})
	for _, rr := range s.RankRatings {
		ranks.AppendRow(table.Row{rr.Rank, formatScore(rr.Rating)})
	}
	ranks.Render()
}

func newTable(w io.Writer, title string, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.AppendHeader(header)
	t.SetStyle(table.StyleRounded)
	return t
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
