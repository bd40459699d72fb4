package book

import "errors"

var (
	// ErrNoRating is returned when no community rating can be resolved for an ISBN.
	ErrNoRating = errors.New("no rating")

	// ErrInvalidISBN is returned when the provided ISBN is empty or invalid.
	ErrInvalidISBN = errors.New("invalid ISBN")

	// ErrAPIUnavailable is returned when the external API answers with a server error.
	ErrAPIUnavailable = errors.New("API unavailable")
)
