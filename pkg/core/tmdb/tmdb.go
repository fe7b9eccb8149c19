// Package tmdb implements the catalog.Client contract against the TMDB
// v3 API. Authentication is either a v4 bearer token or a v3 api_key
// query parameter.
package tmdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/clembu/nfogen/internal/constants"
	"github.com/clembu/nfogen/internal/httpclient"
	"github.com/clembu/nfogen/pkg/core/catalog"
)

// Config holds the configuration for the TMDB client.
type Config struct {
	APIKey    string // v3 API key (query parameter auth)
	Token     string // v4 read access token (bearer auth)
	BaseURL   string // Optional: override default base URL
	UserAgent string
}

// Client talks to the TMDB API.
type Client struct {
	config     Config
	httpClient *httpclient.Client
	logger     *log.Logger
}

// NewClient creates a new TMDB client. At least one of APIKey or Token
// is required.
func NewClient(config Config, httpDoer *http.Client, logger *log.Logger) (*Client, error) {
	if config.APIKey == "" && config.Token == "" {
		return nil, errors.New("TMDB API key or token is required")
	}
	if config.BaseURL == "" {
		config.BaseURL = constants.TMDBBaseURL
	}
	if config.UserAgent == "" {
		config.UserAgent = constants.DefaultUserAgent
	}
	if logger == nil {
		logger = log.New()
		logger.SetOutput(os.Stderr)
	}

	hc := httpclient.New(config.BaseURL, config.UserAgent, httpDoer)
	if config.Token != "" {
		token := config.Token
		hc.SetBearerToken(&token)
	}
	return &Client{config: config, httpClient: hc, logger: logger}, nil
}

type searchParams struct {
	Query    string `url:"query"`
	Year     int    `url:"year,omitempty"`
	Language string `url:"language,omitempty"`
	APIKey   string `url:"api_key,omitempty"`
}

type movieParams struct {
	Language string `url:"language,omitempty"`
	APIKey   string `url:"api_key,omitempty"`
}

type searchResponse struct {
	Results []struct {
		ID            int64   `json:"id"`
		Title         string  `json:"title"`
		OriginalTitle string  `json:"original_title"`
		ReleaseDate   string  `json:"release_date"`
		Popularity    float64 `json:"popularity"`
	} `json:"results"`
}

type movieResponse struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	OriginalTitle string `json:"original_title"`
	ReleaseDate   string `json:"release_date"`
	Overview      string `json:"overview"`
	Runtime       int    `json:"runtime"`
	Genres        []struct {
		Name string `json:"name"`
	} `json:"genres"`
	ProductionCountries []struct {
		Name string `json:"name"`
	} `json:"production_countries"`
}

type externalIDsResponse struct {
	IMDbID string `json:"imdb_id"`
}

// Search queries /search/movie and returns candidates in the service's
// native relevance order.
func (c *Client) Search(ctx context.Context, query string, year int, lang string) ([]catalog.SearchResult, error) {
	params := searchParams{Query: query, Year: year, Language: lang, APIKey: c.config.APIKey}
	var resp searchResponse
	if err := c.httpClient.Get(ctx, "/search/movie", params, &resp); err != nil {
		return nil, fmt.Errorf("tmdb search: %w", err)
	}

	results := make([]catalog.SearchResult, 0, len(resp.Results))
	for _, item := range resp.Results {
		results = append(results, catalog.SearchResult{
			ID:            item.ID,
			Title:         item.Title,
			OriginalTitle: item.OriginalTitle,
			Year:          yearFromReleaseDate(item.ReleaseDate),
			Relevance:     item.Popularity,
		})
	}
	return results, nil
}

// Get fetches /movie/{id} in the requested language and enriches the
// record with catalog/IMDb URLs. The external-ids lookup is best effort.
func (c *Client) Get(ctx context.Context, id int64, lang string) (*catalog.Record, error) {
	params := movieParams{Language: lang, APIKey: c.config.APIKey}
	var resp movieResponse
	if err := c.httpClient.Get(ctx, "/movie/"+strconv.FormatInt(id, 10), params, &resp); err != nil {
		return nil, fmt.Errorf("tmdb movie %d: %w", id, err)
	}

	rec := &catalog.Record{
		ID:            resp.ID,
		Title:         resp.Title,
		OriginalTitle: resp.OriginalTitle,
		Year:          yearFromReleaseDate(resp.ReleaseDate),
		Overview:      resp.Overview,
		RuntimeMin:    resp.Runtime,
		Language:      lang,
		CatalogURL:    "https://www.themoviedb.org/movie/" + strconv.FormatInt(resp.ID, 10),
	}
	for _, genre := range resp.Genres {
		if genre.Name != "" {
			rec.Genres = append(rec.Genres, genre.Name)
		}
	}
	for _, country := range resp.ProductionCountries {
		if country.Name != "" {
			rec.Countries = append(rec.Countries, country.Name)
		}
	}

	var ids externalIDsResponse
	if err := c.httpClient.Get(ctx, "/movie/"+strconv.FormatInt(id, 10)+"/external_ids", movieParams{APIKey: c.config.APIKey}, &ids); err != nil {
		c.logger.Warnf("TMDB external ids for %d unavailable: %v", id, err)
	} else if ids.IMDbID != "" {
		rec.IMDbURL = "https://www.imdb.com/title/" + ids.IMDbID
	}

	return rec, nil
}

func yearFromReleaseDate(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
