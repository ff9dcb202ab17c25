// Package bintray is a client for a Bintray-style package-repository service:
// an API endpoint for resource metadata and a download endpoint backed by
// eventually-consistent mirrors. Its centrepiece is the set of convergence
// waits on Content, which detect when propagation and indexing have caught up
// with an upload.
package bintray

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	// repositoryCacheSize bounds the resolved-repository cache; a client
	// rarely touches more than a handful of repositories.
	repositoryCacheSize = 64
	repositoryCacheTTL  = 5 * time.Minute
)

// Client issues requests against the API and download endpoints. It is safe
// for concurrent use; independent polls may probe through it at the same time.
type Client struct {
	apiURL   url.URL
	dlURL    url.URL
	username string
	apiKey   string

	httpClient   *http.Client
	repositories *expirable.LRU[string, Repository]
}

// NewClient builds a Client from cfg. Zero-value config fields fall back to
// the public service endpoints and anonymous access.
func NewClient(cfg Config) (*Client, error) {
	cfg.applyDefaults()

	apiURL, err := url.Parse(cfg.APIURL)
	if err != nil {
		return nil, fmt.Errorf("parsing api_url: %w", err)
	}
	dlURL, err := url.Parse(cfg.DownloadURL)
	if err != nil {
		return nil, fmt.Errorf("parsing download_url: %w", err)
	}
	requestTimeout, err := cfg.requestTimeout()
	if err != nil {
		return nil, err
	}

	return &Client{
		apiURL:       *apiURL,
		dlURL:        *dlURL,
		username:     cfg.Username,
		apiKey:       cfg.APIKey,
		httpClient:   &http.Client{Timeout: requestTimeout},
		repositories: expirable.NewLRU[string, Repository](repositoryCacheSize, nil, repositoryCacheTTL),
	}, nil
}

// APIURL joins path segments onto the API base URL.
func (c *Client) APIURL(path ...string) string {
	return c.apiURL.JoinPath(path...).String()
}

// DownloadURL joins path segments onto the download base URL.
func (c *Client) DownloadURL(path ...string) string {
	return c.dlURL.JoinPath(path...).String()
}

// Do issues a bodyless request, attaching basic auth when credentials are
// configured. The caller owns the response body.
func (c *Client) Do(ctx context.Context, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bintray request: %w", err)
	}
	return resp, nil
}

// getJSON fetches rawURL and decodes a 2xx JSON body into v.
func (c *Client) getJSON(ctx context.Context, rawURL string, v any) error {
	resp, err := c.Do(ctx, http.MethodGet, rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &UnexpectedStatusError{Status: resp.StatusCode, Body: buf.String()}
	}

	if err := json.Unmarshal(buf.Bytes(), v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
