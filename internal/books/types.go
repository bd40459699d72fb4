// Package books holds the records that flow between the bestseller fetcher,
// the rating enricher and the datastore.
package books

// Title is one unique bestseller entry after title deduplication.
type Title struct {
	ISBN13      string `json:"isbn13" yaml:"isbn13"`
	Title       string `json:"title" yaml:"title"`
	Rank        int    `json:"rank" yaml:"rank"`
	PublisherID int    `json:"publisher_id" yaml:"publisher_id"`
}

// Book is a Title with a resolved community rating.
type Book struct {
	Title
	Rating float64 `json:"rating" yaml:"rating"`
}

// DerivedScore is the comparison metric stored with every book.
func DerivedScore(rating float64, rank int) float64 {
	return rating - float64(rank)
}
