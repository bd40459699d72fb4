package nyt

// Overview is the decoded full-overview payload, reduced to the fields the
// fetcher reads. Entries missing a title or rank are dropped while decoding.
type Overview struct {
	PublishedDate string
	Lists         []List
	// Malformed counts entries dropped for missing required fields.
	Malformed int
}

// List is one bestseller category.
type List struct {
	Name  string
	Books []Entry
}

// Entry is one book appearance on a list.
type Entry struct {
	Title         string
	Rank          int
	Publisher     string
	PrimaryISBN13 string
}

// EntryCount returns the number of entries across every list.
func (o *Overview) EntryCount() int {
	n := 0
	for _, l := range o.Lists {
		n += len(l.Books)
	}
	return n
}

// overviewResponse matches the API response structure. Pointer fields
// distinguish "missing" from zero values.
type overviewResponse struct {
	Status  string `json:"status"`
	Results *struct {
		PublishedDate string `json:"published_date"`
		Lists         []struct {
			ListName string          `json:"list_name"`
			Books    []entryResponse `json:"books"`
		} `json:"lists"`
	} `json:"results"`
}

type entryResponse struct {
	Title         *string `json:"title"`
	Rank          *int    `json:"rank"`
	Publisher     *string `json:"publisher"`
	PrimaryISBN13 *string `json:"primary_isbn13"`
}

func (r *overviewResponse) toOverview() *Overview {
	out := &Overview{}
	if r.Results == nil {
		return out
	}
	out.PublishedDate = r.Results.PublishedDate
	for _, l := range r.Results.Lists {
		list := List{Name: l.ListName, Books: make([]Entry, 0, len(l.Books))}
		for _, b := range l.Books {
			if b.Title == nil || b.Rank == nil {
				out.Malformed++
				continue
			}
			list.Books = append(list.Books, Entry{
				Title:         *b.Title,
				Rank:          *b.Rank,
				Publisher:     deref(b.Publisher),
				PrimaryISBN13: deref(b.PrimaryISBN13),
			})
		}
		out.Lists = append(out.Lists, list)
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
