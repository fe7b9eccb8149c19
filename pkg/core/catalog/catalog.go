// Package catalog defines the remote movie-catalog contracts and the
// match resolver that turns a filename guess or an explicit id into a
// fetched Record.
package catalog

import "context"

// Record is a fetched catalog entry. It is immutable once fetched; its
// cache identity is (ID, Language).
type Record struct {
	ID            int64    `json:"id"`
	Title         string   `json:"title"`
	OriginalTitle string   `json:"original_title"`
	Year          int      `json:"year"`
	Overview      string   `json:"overview"`
	Genres        []string `json:"genres"`
	Countries     []string `json:"countries,omitempty"`
	RuntimeMin    int      `json:"runtime_min"`
	Language      string   `json:"language"`
	CatalogURL    string   `json:"catalog_url,omitempty"`
	IMDbURL       string   `json:"imdb_url,omitempty"`
}

// SearchResult is one ranked candidate from a catalog search.
type SearchResult struct {
	ID            int64
	Title         string
	OriginalTitle string
	Year          int
	Relevance     float64
}

// Client is the remote catalog service. Implementations map transport
// failures onto the shared error taxonomy (ErrCatalogNotFound,
// ErrCatalogRateLimited, ErrCatalogAuth).
type Client interface {
	// Search returns candidates ordered by the service's native relevance.
	Search(ctx context.Context, query string, year int, lang string) ([]SearchResult, error)
	// Get fetches the full record for an id in the requested language.
	Get(ctx context.Context, id int64, lang string) (*Record, error)
}

// Cache is a read-through store for fetched records keyed by (id, lang).
// The resolver treats it as transparent: miss means client call.
type Cache interface {
	Get(id int64, lang string) (*Record, bool)
	Put(id int64, lang string, rec *Record) error
}

// Chooser presents ranked candidates for manual selection in interactive
// mode. It returns the index of the chosen candidate, or -1 for none.
type Chooser interface {
	Choose(candidates []SearchResult) (int, error)
}
