package tmdb_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/clembu/nfogen/pkg/core/errors"
	"github.com/clembu/nfogen/pkg/core/tmdb"
)

func TestNewClientRequiresCredentials(t *testing.T) {
	client, err := tmdb.NewClient(tmdb.Config{}, nil, nil)
	require.Error(t, err)
	assert.Nil(t, client)

	client, err = tmdb.NewClient(tmdb.Config{APIKey: "key"}, nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/movie", r.URL.Path)
		assert.Equal(t, "blade runner 2049", r.URL.Query().Get("query"))
		assert.Equal(t, "2017", r.URL.Query().Get("year"))
		assert.Equal(t, "fr-FR", r.URL.Query().Get("language"))
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))

		fmt.Fprintln(w, `{
			"results": [
				{"id": 335984, "title": "Blade Runner 2049", "original_title": "Blade Runner 2049",
				 "release_date": "2017-10-04", "popularity": 95.3},
				{"id": 78, "title": "Blade Runner", "original_title": "Blade Runner",
				 "release_date": "1982-06-25", "popularity": 60.1}
			]
		}`)
	}))
	defer server.Close()

	client, err := tmdb.NewClient(tmdb.Config{APIKey: "test-key", BaseURL: server.URL}, nil, nil)
	require.NoError(t, err)

	results, err := client.Search(context.Background(), "blade runner 2049", 2017, "fr-FR")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, int64(335984), results[0].ID)
	assert.Equal(t, "Blade Runner 2049", results[0].Title)
	assert.Equal(t, 2017, results[0].Year)
	assert.InDelta(t, 95.3, results[0].Relevance, 0.001)
	assert.Equal(t, 1982, results[1].Year)
}

func TestSearchBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer v4-token", r.Header.Get("Authorization"))
		assert.Empty(t, r.URL.Query().Get("api_key"))
		fmt.Fprintln(w, `{"results": []}`)
	}))
	defer server.Close()

	client, err := tmdb.NewClient(tmdb.Config{Token: "v4-token", BaseURL: server.URL}, nil, nil)
	require.NoError(t, err)

	results, err := client.Search(context.Background(), "anything", 0, "")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/movie/335984":
			assert.Equal(t, "fr-FR", r.URL.Query().Get("language"))
			fmt.Fprintln(w, `{
				"id": 335984,
				"title": "Blade Runner 2049",
				"original_title": "Blade Runner 2049",
				"release_date": "2017-10-04",
				"overview": "Un film.",
				"runtime": 164,
				"genres": [{"name": "Science-Fiction"}, {"name": "Drame"}],
				"production_countries": [{"name": "United States of America"}, {"name": "Canada"}]
			}`)
		case "/movie/335984/external_ids":
			fmt.Fprintln(w, `{"imdb_id": "tt1856101"}`)
		default:
			t.Errorf("unexpected request path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client, err := tmdb.NewClient(tmdb.Config{APIKey: "test-key", BaseURL: server.URL}, nil, nil)
	require.NoError(t, err)

	rec, err := client.Get(context.Background(), 335984, "fr-FR")
	require.NoError(t, err)
	assert.Equal(t, int64(335984), rec.ID)
	assert.Equal(t, "Blade Runner 2049", rec.Title)
	assert.Equal(t, 2017, rec.Year)
	assert.Equal(t, "Un film.", rec.Overview)
	assert.Equal(t, 164, rec.RuntimeMin)
	assert.Equal(t, []string{"Science-Fiction", "Drame"}, rec.Genres)
	assert.Equal(t, []string{"United States of America", "Canada"}, rec.Countries)
	assert.Equal(t, "fr-FR", rec.Language)
	assert.Equal(t, "https://www.themoviedb.org/movie/335984", rec.CatalogURL)
	assert.Equal(t, "https://www.imdb.com/title/tt1856101", rec.IMDbURL)
}

// A failed external-ids lookup must not fail the whole fetch.
func TestGetExternalIDsBestEffort(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/movie/603":
			fmt.Fprintln(w, `{"id": 603, "title": "The Matrix", "release_date": "1999-03-30"}`)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	client, err := tmdb.NewClient(tmdb.Config{APIKey: "k", BaseURL: server.URL}, nil, nil)
	require.NoError(t, err)

	rec, err := client.Get(context.Background(), 603, "")
	require.NoError(t, err)
	assert.Equal(t, "The Matrix", rec.Title)
	assert.Empty(t, rec.IMDbURL)
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		expected error
	}{
		{"not found", http.StatusNotFound, apierrors.ErrCatalogNotFound},
		{"unauthorized", http.StatusUnauthorized, apierrors.ErrCatalogAuth},
		{"forbidden", http.StatusForbidden, apierrors.ErrCatalogAuth},
		{"rate limited", http.StatusTooManyRequests, apierrors.ErrCatalogRateLimited},
		{"server error", http.StatusInternalServerError, apierrors.ErrCatalogUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer server.Close()

			client, err := tmdb.NewClient(tmdb.Config{APIKey: "k", BaseURL: server.URL}, nil, nil)
			require.NoError(t, err)

			_, err = client.Get(context.Background(), 1, "")
			assert.ErrorIs(t, err, tc.expected)
		})
	}
}
