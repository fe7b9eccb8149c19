package catalog

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
)

// maxCandidates is how many ranked results an interactive chooser sees.
const maxCandidates = 5

// Guess is the filename-derived search seed.
type Guess struct {
	Title string
	Year  int
}

// Resolver selects a catalog record from an explicit id or a search
// guess, reading fetched records through the cache.
type Resolver struct {
	client  Client
	cache   Cache
	chooser Chooser // nil in non-interactive mode
	logger  *log.Logger
}

// NewResolver creates a Resolver. cache and chooser may be nil.
func NewResolver(client Client, cache Cache, chooser Chooser, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.New()
		logger.SetOutput(os.Stderr)
	}
	return &Resolver{client: client, cache: cache, chooser: chooser, logger: logger}
}

// Resolve fetches the record for explicitID when given (a missing id is
// fatal: the error propagates), otherwise searches with the guess. A
// search with no results, or an interactive selection of none, yields
// (nil, nil): the report proceeds without catalog data.
func (r *Resolver) Resolve(ctx context.Context, guess Guess, explicitID int64, lang string) (*Record, error) {
	if explicitID > 0 {
		rec, err := r.fetch(ctx, explicitID, lang)
		if err != nil {
			return nil, fmt.Errorf("catalog id %d: %w", explicitID, err)
		}
		return rec, nil
	}

	if guess.Title == "" {
		return nil, nil
	}

	results, err := r.client.Search(ctx, guess.Title, guess.Year, lang)
	if err != nil {
		return nil, fmt.Errorf("catalog search %q: %w", guess.Title, err)
	}
	if len(results) == 0 {
		r.logger.Infof("No catalog match for %q", guess.Title)
		return nil, nil
	}

	picked := results[0]
	if r.chooser != nil {
		candidates := results
		if len(candidates) > maxCandidates {
			candidates = candidates[:maxCandidates]
		}
		idx, err := r.chooser.Choose(candidates)
		if err != nil {
			return nil, fmt.Errorf("candidate selection: %w", err)
		}
		if idx < 0 || idx >= len(candidates) {
			r.logger.Info("No candidate selected, continuing without catalog data")
			return nil, nil
		}
		picked = candidates[idx]
	}

	r.logger.Infof("Catalog match: %s (%d) [id %d]", picked.Title, picked.Year, picked.ID)
	rec, err := r.fetch(ctx, picked.ID, lang)
	if err != nil {
		return nil, fmt.Errorf("catalog id %d: %w", picked.ID, err)
	}
	return rec, nil
}

// fetch reads a record through the cache.
func (r *Resolver) fetch(ctx context.Context, id int64, lang string) (*Record, error) {
	if r.cache != nil {
		if rec, ok := r.cache.Get(id, lang); ok {
			r.logger.Debugf("Catalog cache hit for (%d, %s)", id, lang)
			return rec, nil
		}
	}
	rec, err := r.client.Get(ctx, id, lang)
	if err != nil {
		return nil, err
	}
	if r.cache != nil {
		if err := r.cache.Put(id, lang, rec); err != nil {
			r.logger.Warnf("Failed to cache catalog record (%d, %s): %v", id, lang, err)
		}
	}
	return rec, nil
}
