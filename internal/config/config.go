package config

import (
	"log/slog"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultPublishedDate   = "2022-04-01"
	DefaultNYTBaseURL      = "https://api.nytimes.com/svc/books/v3"
	DefaultOpenLibraryURL  = "https://openlibrary.org"
	DefaultHTTPTimeout     = 10 * time.Second
	DefaultOpenLibraryRate = 1
)

// Global configuration variables
var (
	// OverwriteFiles controls whether existing report artifacts should be overwritten
	OverwriteFiles bool
	// NYTAPIKey is the API key for the New York Times Books API
	NYTAPIKey string
	// PublishedDate selects which dated bestseller list is ingested
	PublishedDate string
	NYTBaseURL    string
	// OpenLibraryBaseURL is the root of the Open Library API
	OpenLibraryBaseURL string
	// OpenLibraryRPS is the request budget per second for Open Library; 0 disables limiting
	OpenLibraryRPS int
	// HTTPTimeout applies to every upstream request; there are no retries
	HTTPTimeout time.Duration
	DBFile      string
	ReportDir   string
)

// SetDefaults registers the viper defaults for every known key.
func SetDefaults() {
	viper.SetDefault("nyt.published_date", DefaultPublishedDate)
	viper.SetDefault("nyt.baseurl", DefaultNYTBaseURL)
	viper.SetDefault("openlibrary.baseurl", DefaultOpenLibraryURL)
	viper.SetDefault("openlibrary.rps", DefaultOpenLibraryRate)
	viper.SetDefault("http.timeout", DefaultHTTPTimeout.String())
	viper.SetDefault("datastore.dbfile", "./bookrank.db")
	viper.SetDefault("report.dir", "./report/")
	viper.SetDefault("report.overwrite", true)

	viper.SetDefault("cache.dbfile", "./cache.db")
	viper.SetDefault("cache.ttl", "720h") // 30 days
}

// InitConfig initializes the global configuration
func InitConfig() {
	SetDefaults()

	OverwriteFiles = viper.GetBool("report.overwrite")
	NYTAPIKey = viper.GetString("nyt.apikey")
	PublishedDate = viper.GetString("nyt.published_date")
	NYTBaseURL = viper.GetString("nyt.baseurl")
	OpenLibraryBaseURL = viper.GetString("openlibrary.baseurl")
	OpenLibraryRPS = viper.GetInt("openlibrary.rps")
	DBFile = viper.GetString("datastore.dbfile")
	ReportDir = viper.GetString("report.dir")

	timeout, err := time.ParseDuration(viper.GetString("http.timeout"))
	if err != nil || timeout <= 0 {
		slog.Warn("Invalid HTTP timeout, using default", "timeout", viper.GetString("http.timeout"), "default", DefaultHTTPTimeout)
		timeout = DefaultHTTPTimeout
	}
	HTTPTimeout = timeout

	if OpenLibraryRPS < 0 {
		OpenLibraryRPS = DefaultOpenLibraryRate
	}
}

// NYT holds the parameters of the bestseller source.
type NYT struct {
	BaseURL       string
	APIKey        string
	PublishedDate string
	Timeout       time.Duration
}

// OpenLibrary holds the parameters of the rating source.
type OpenLibrary struct {
	BaseURL string
	RPS     int
	Timeout time.Duration
}

// NYTParams returns the bestseller source parameters from the global config.
func NYTParams() NYT {
	return NYT{
		BaseURL:       NYTBaseURL,
		APIKey:        NYTAPIKey,
		PublishedDate: PublishedDate,
		Timeout:       HTTPTimeout,
	}
}

// OpenLibraryParams returns the rating source parameters from the global config.
func OpenLibraryParams() OpenLibrary {
	return OpenLibrary{
		BaseURL: OpenLibraryBaseURL,
		RPS:     OpenLibraryRPS,
		Timeout: HTTPTimeout,
	}
}
