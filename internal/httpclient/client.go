package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/google/go-querystring/query"

	apierrors "github.com/clembu/nfogen/pkg/core/errors"
)

// Client manages making JSON GET requests to a catalog API.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	mu         sync.RWMutex // Protects bearer
	bearer     *string
}

// New creates a new internal HTTP client.
func New(baseURL, userAgent string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: httpClient,
	}
}

// SetBearerToken updates the Authorization bearer token. A nil token clears it.
func (c *Client) SetBearerToken(token *string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bearer = token
}

// Get makes a GET request, encoding params (a struct with `url` tags) as the
// query string and unmarshalling the JSON response into target.
func (c *Client) Get(ctx context.Context, path string, params interface{}, target interface{}) error {
	c.mu.RLock()
	currentBearer := c.bearer
	c.mu.RUnlock()

	fullURL, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	fullURL.Path += path // Assumes baseURL doesn't end with / and path starts with /

	if params != nil {
		v, err := query.Values(params)
		if err != nil {
			return fmt.Errorf("failed to encode query parameters: %w", err)
		}
		fullURL.RawQuery = v.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if currentBearer != nil && *currentBearer != "" {
		req.Header.Set("Authorization", "Bearer "+*currentBearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err := statusToError(resp.StatusCode, respBodyBytes); err != nil {
		return err
	}

	if target != nil {
		if err := json.Unmarshal(respBodyBytes, target); err != nil {
			return fmt.Errorf("failed to unmarshal response body: %w", err)
		}
	}

	return nil
}

// statusToError maps HTTP status codes onto the shared catalog error taxonomy.
func statusToError(statusCode int, body []byte) error {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return nil
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return fmt.Errorf("%w (status %d)", apierrors.ErrCatalogAuth, statusCode)
	case statusCode == http.StatusNotFound:
		return apierrors.ErrCatalogNotFound
	case statusCode == http.StatusTooManyRequests:
		return apierrors.ErrCatalogRateLimited
	case statusCode >= 500:
		return fmt.Errorf("%w (status %d)", apierrors.ErrCatalogUnavailable, statusCode)
	default:
		return fmt.Errorf("api request failed: status %d, body: %s", statusCode, string(body))
	}
}
