package datastore

const (
	booksTable          = "books"
	publishersTable     = "publishers"
	enrichedTitlesTable = "enriched_titles"
	ingestStateTable    = "ingest_state"
)

// BooksSchema stores one rated bestseller per ISBN. derived_score stays NULL
// until the first recompute after the row lands.
const BooksSchema = `CREATE TABLE IF NOT EXISTS books (
	isbn13 TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	nyt_rank INTEGER NOT NULL,
	rating REAL NOT NULL,
	derived_score REAL
)`

// PublishersSchema links each stored book to its publisher ID.
const PublishersSchema = `CREATE TABLE IF NOT EXISTS publishers (
	isbn13 TEXT PRIMARY KEY,
	pub_id INTEGER NOT NULL
)`

// EnrichedTitlesSchema keeps the full enriched dataset of one published date
// so chunks are always sliced from the same ordering.
const EnrichedTitlesSchema = `CREATE TABLE IF NOT EXISTS enriched_titles (
	published_date TEXT NOT NULL,
	position INTEGER NOT NULL,
	isbn13 TEXT NOT NULL,
	title TEXT NOT NULL,
	nyt_rank INTEGER NOT NULL,
	pub_id INTEGER NOT NULL,
	rating REAL NOT NULL,
	PRIMARY KEY (published_date, position)
)`

// IngestStateSchema records the progress of the chunked ingestion per date.
const IngestStateSchema = `CREATE TABLE IF NOT EXISTS ingest_state (
	published_date TEXT PRIMARY KEY,
	last_chunk INTEGER NOT NULL DEFAULT -1,
	row_count INTEGER NOT NULL DEFAULT 0,
	snapshot_size INTEGER NOT NULL DEFAULT 0,
	updated_at TEXT NOT NULL
)`

// AllSchemas lists every table Migrate creates, in dependency order.
var AllSchemas = []string{
	BooksSchema,
	PublishersSchema,
	EnrichedTitlesSchema,
	IngestStateSchema,
}
