package mds

import "encoding/json"

// ExtractResponse is one page of the bulk-extract API.
type ExtractResponse struct {
	// Data holds the page's records as raw JSON. A nil slice means the
	// server omitted the field entirely, which is a protocol violation;
	// an empty non-nil slice is a valid empty page.
	Data []json.RawMessage `json:"data"`

	Stats Stats `json:"stats"`

	// Resume is the cursor to persist for resuming from this point.
	// Empty when the server provides none for this page.
	Resume string `json:"resume"`

	// HasNext reports whether another page follows. The export loop is
	// driven by this flag alone, never by Stats.Remaining.
	HasNext bool `json:"has_next"`

	// NextURL is the absolute URL of the next page when HasNext is true.
	NextURL string `json:"next_url"`
}

// Stats carries the server's progress counters. Both fields default to zero
// when absent; the server does not guarantee them consistent with pagination.
type Stats struct {
	Total     int `json:"total"`
	Remaining int `json:"remaining"`
}

// Completed returns the number of items already exported according to the
// server's counters.
func (s Stats) Completed() int {
	return s.Total - s.Remaining
}
