package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/bookrank/internal/cache"
	"github.com/lepinkainen/bookrank/internal/config"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"
)

// stdout receives table output; tests swap it for a buffer.
var stdout io.Writer = os.Stdout

// CLI represents the complete command structure for the bookrank application
type CLI struct {
	// Global flags. Empty values leave config.yaml in charge.
	DBFile        string `name:"db-file" help:"Path to the bookrank SQLite database (default ./bookrank.db)"`
	CacheDBFile   string `help:"Path to cache SQLite database file (default ./cache.db)"`
	CacheTTL      string `help:"Cache time-to-live duration (e.g., 720h for 30 days)"`
	PublishedDate string `help:"Published date of the bestseller list to ingest (YYYY-MM-DD)"`
	ReportDir     string `help:"Directory the report artifacts are written to"`
	Overwrite     *bool  `help:"Overwrite existing report artifacts"`

	Run    RunCmd    `cmd:"" default:"withargs" help:"Store the next chunk of rated bestsellers (default command)"`
	Status StatusCmd `cmd:"" help:"Show stored rows, ingest progress and the next planned action"`
	Report ReportCmd `cmd:"" help:"Write the report artifacts regardless of how many rows are stored"`
	Cache  CacheCmd  `cmd:"" help:"Manage the Open Library response cache"`
}

// CacheCmd groups the cache maintenance subcommands
type CacheCmd struct {
	Invalidate cache.InvalidateCacheCmd `cmd:"" help:"Delete every cached response of a source"`
	Prune      cache.PruneCacheCmd      `cmd:"" help:"Delete expired cache entries"`
}

func newParser(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("bookrank"),
		kong.Description("Ingest NYT bestsellers with their Open Library ratings, 25 at a time."),
		kong.UsageOnError(),
	}, options...)
	return kong.New(cli, options...)
}

// Execute runs the Kong-based CLI
func Execute() {
	initLogging()
	initConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	var cli CLI
	parser, err := newParser(&cli, kong.BindTo(ctx, (*context.Context)(nil)))
	if err != nil {
		slog.Error("Failed to build CLI", "error", err)
		os.Exit(1)
	}

	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	// Update global config based on parsed flags
	updateGlobalConfig(&cli)

	err = kctx.Run()
	_ = cache.ResetGlobalCache()
	stop()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Warn("Interrupted")
		} else {
			slog.Error("Command failed", "error", err)
		}
		os.Exit(1)
	}
}

func initConfig() {
	if err := loadConfig(); err != nil {
		slog.Error("Fatal error config file", "error", err)
		os.Exit(1)
	}
}

// loadConfig reads config.yaml from the working directory, writing one with
// the defaults when it does not exist yet, and binds the environment.
func loadConfig() error {
	config.SetDefaults()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
		slog.Info("Config file not found, writing default config file...")
		if err := viper.SafeWriteConfig(); err != nil {
			slog.Warn("Error writing config file", "error", err)
		}
	}

	// Bound after the default file is written so the key never lands in it.
	viper.AutomaticEnv()
	if err := viper.BindEnv("nyt.apikey", "NYT_API_KEY"); err != nil {
		slog.Error("Failed to bind environment variable", "error", err)
	}

	// Initialize global config
	config.InitConfig()
	return nil
}

func updateGlobalConfig(cli *CLI) {
	setIfNotEmpty("datastore.dbfile", cli.DBFile)
	setIfNotEmpty("cache.dbfile", cli.CacheDBFile)
	setIfNotEmpty("cache.ttl", cli.CacheTTL)
	setIfNotEmpty("nyt.published_date", cli.PublishedDate)
	setIfNotEmpty("report.dir", cli.ReportDir)
	if cli.Overwrite != nil {
		viper.Set("report.overwrite", *cli.Overwrite)
	}

	config.InitConfig()
}

func setIfNotEmpty(key, value string) {
	if value != "" {
		viper.Set(key, value)
	}
}

func initLogging() {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("BOOKRANK_LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	// Create a human-readable handler for logging
	handler := humanlog.NewHandler(os.Stdout, &humanlog.Options{
		Level: level,
	})

	// Set the default logger
	slog.SetDefault(slog.New(handler))
}
