package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lepinkainen/bookrank/internal/bestsellers"
	"github.com/lepinkainen/bookrank/internal/config"
	"github.com/lepinkainen/bookrank/internal/datastore"
	"github.com/lepinkainen/bookrank/internal/enrichment/book"
	apperrors "github.com/lepinkainen/bookrank/internal/errors"
	"github.com/lepinkainen/bookrank/internal/ingest"
	"github.com/lepinkainen/bookrank/internal/nyt"
	"github.com/lepinkainen/bookrank/internal/openlibrary"
	"github.com/lepinkainen/bookrank/internal/ratelimit"
	"github.com/lepinkainen/bookrank/internal/report"
)

const openLibraryName = "OpenLibrary"

// RunCmd performs one ingestion run
type RunCmd struct {
	Refresh  bool `help:"Fetch and enrich the list again even when a snapshot is stored"`
	FailFast bool `help:"Fail on the first upstream request error instead of skipping the record (titles without a rating are still skipped)"`
}

func (r *RunCmd) Run(ctx context.Context) error {
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	nytParams := config.NYTParams()
	if nytParams.APIKey == "" {
		slog.Warn("NYT API key is not set (nyt.apikey or NYT_API_KEY); the list fetch will be rejected")
	}
	fetcher := bestsellers.NewFetcher(
		nyt.NewClient(nytParams.BaseURL, nytParams.APIKey, nytParams.Timeout),
		nytParams.PublishedDate,
	)

	olParams := config.OpenLibraryParams()
	ratings := openlibrary.NewClient(olParams.BaseURL, olParams.Timeout,
		openlibrary.WithLimiter(ratelimit.New(openLibraryName, olParams.RPS)))

	policy := apperrors.SkipAndContinue
	if r.FailFast {
		policy = apperrors.FailFast
	}

	controller := ingest.NewController(store, fetcher, book.NewEnricher(ratings, policy), newReporter(store, true, false))
	result, err := controller.Run(ctx, ingest.Options{
		PublishedDate: nytParams.PublishedDate,
		Refresh:       r.Refresh,
		Policy:        policy,
	})
	if err != nil {
		return err
	}

	attrs := []any{
		"plan", result.Plan.String(),
		"rows_before", result.RowsBefore,
		"rows_after", result.RowsAfter,
		"inserted", result.Inserted,
		"fetched", result.Fetched,
		"reported", result.Reported,
	}
	if result.Fetched {
		attrs = append(attrs, result.Stats.LogAttrs()...)
	}
	slog.Info("Run complete", attrs...)
	return nil
}

// openStore opens the configured database, creating its directory.
func openStore(ctx context.Context) (*datastore.SQLiteStore, error) {
	path := config.DBFile
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	return datastore.Open(ctx, path)
}

func newReporter(store *datastore.SQLiteStore, writeYAML, tables bool) *report.Reporter {
	return report.New(store, report.Options{
		Dir:           config.ReportDir,
		Overwrite:     config.OverwriteFiles,
		WriteYAML:     writeYAML,
		PublishedDate: config.PublishedDate,
		Tables:        tables,
		Out:           stdout,
	})
}
