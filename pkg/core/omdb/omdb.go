// Package omdb is a minimal OMDb client used as a secondary title
// lookup when the primary catalog search finds nothing: the corrected
// title it returns feeds a second catalog search.
package omdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/clembu/nfogen/internal/constants"
	"github.com/clembu/nfogen/internal/httpclient"
)

// Client talks to the OMDb API.
type Client struct {
	apiKey     string
	httpClient *httpclient.Client
}

// NewClient creates a new OMDb client.
func NewClient(apiKey, baseURL string, httpDoer *http.Client) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("OMDb API key is required")
	}
	if baseURL == "" {
		baseURL = constants.OMDBBaseURL
	}
	return &Client{
		apiKey:     apiKey,
		httpClient: httpclient.New(baseURL, constants.DefaultUserAgent, httpDoer),
	}, nil
}

type titleParams struct {
	Title  string `url:"t,omitempty"`
	Search string `url:"s,omitempty"`
	Year   string `url:"y,omitempty"`
	APIKey string `url:"apikey"`
}

type titleResponse struct {
	Response string `json:"Response"`
	Title    string `json:"Title"`
	Year     string `json:"Year"`
	Search   []struct {
		Title string `json:"Title"`
		Year  string `json:"Year"`
	} `json:"Search"`
}

// SearchTitle looks up a movie title, first as an exact match then as a
// search. It returns the canonical title and year, or ("", 0) when
// nothing matches.
func (c *Client) SearchTitle(ctx context.Context, query string, year int) (string, int, error) {
	if query == "" {
		return "", 0, nil
	}
	yearParam := ""
	if year > 0 {
		yearParam = strconv.Itoa(year)
	}

	var exact titleResponse
	if err := c.httpClient.Get(ctx, "/", titleParams{Title: query, Year: yearParam, APIKey: c.apiKey}, &exact); err != nil {
		return "", 0, fmt.Errorf("omdb title lookup: %w", err)
	}
	if exact.Response == "True" && exact.Title != "" {
		return exact.Title, parseYear(exact.Year), nil
	}

	var search titleResponse
	if err := c.httpClient.Get(ctx, "/", titleParams{Search: query, Year: yearParam, APIKey: c.apiKey}, &search); err != nil {
		return "", 0, fmt.Errorf("omdb search: %w", err)
	}
	if len(search.Search) == 0 {
		return "", 0, nil
	}
	if year > 0 {
		for _, item := range search.Search {
			if parseYear(item.Year) == year && item.Title != "" {
				return item.Title, year, nil
			}
		}
	}
	first := search.Search[0]
	return first.Title, parseYear(first.Year), nil
}

// parseYear handles OMDb's "2017" and series-style "2017-2019" values.
func parseYear(value string) int {
	value, _, _ = strings.Cut(value, "–")
	value, _, _ = strings.Cut(value, "-")
	year, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return year
}
