package openlibrary

// editionResponse matches /isbn/{isbn}.json, reduced to the work reference.
type editionResponse struct {
	Works []struct {
		Key string `json:"key"`
	} `json:"works"`
}

// ratingsResponse matches /works/{id}/ratings.json. Both levels are pointers
// so a missing summary and an explicit null average are detectable.
type ratingsResponse struct {
	Summary *struct {
		Average *float64 `json:"average"`
		Count   int      `json:"count"`
	} `json:"summary"`
}

// ratingLookup is the cached outcome of the two-step lookup. Definitive
// negatives (404, no work, no average) are cached; transient failures are not.
type ratingLookup struct {
	WorkID   string   `json:"work_id,omitempty"`
	Average  *float64 `json:"average,omitempty"`
	Count    int      `json:"count,omitempty"`
	NotFound bool     `json:"not_found"`
	Stage    string   `json:"stage,omitempty"`
}
