package cmd

import (
	"context"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/lepinkainen/bookrank/internal/config"
	"github.com/lepinkainen/bookrank/internal/ingest"
	"github.com/lepinkainen/bookrank/internal/openlibrary"
)

// StatusCmd prints the ingest progress
type StatusCmd struct {
	Check bool `help:"Also check that Open Library is reachable"`
}

func (s *StatusCmd) Run(ctx context.Context) error {
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	n, err := store.CountBooks(ctx)
	if err != nil {
		return err
	}
	state, found, err := store.LoadState(ctx, config.PublishedDate)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(stdout)
	t.SetTitle("bookrank " + config.DBFile)
	t.AppendHeader(table.Row{"Key", "Value"})
	t.AppendRow(table.Row{"Published date", config.PublishedDate})
	t.AppendRow(table.Row{"Stored books", n})
	t.AppendRow(table.Row{"Next run", ingest.PlanFor(n).String()})
	if found {
		t.AppendSeparator()
		t.AppendRow(table.Row{"Last chunk", state.LastChunk})
		t.AppendRow(table.Row{"Snapshot size", state.SnapshotSize})
		t.AppendRow(table.Row{"Updated", state.UpdatedAt.Format(time.RFC3339)})
	}
	if s.Check {
		t.AppendSeparator()
		t.AppendRow(table.Row{openLibraryName, checkOpenLibrary(ctx)})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
	return nil
}

// checkOpenLibrary reports whether the configured rating source answers.
// An unreachable upstream is shown, not returned, since status never fails on it.
func checkOpenLibrary(ctx context.Context) string {
	params := config.OpenLibraryParams()
	client := openlibrary.NewClient(params.BaseURL, params.Timeout, openlibrary.WithCache(false))
	if err := client.Ping(ctx); err != nil {
		return "unreachable: " + err.Error()
	}
	return "reachable"
}
