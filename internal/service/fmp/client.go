// Package fmp is a thin client for the FinancialModelingPrep REST API.
// Each endpoint method builds a URL, fetches the JSON rows, and reshapes
// them into the domain's typed models.
package fmp

import (
	"context"
	"fmt"
	"time"

	drepo "FinCast/internal/domain/repository"
	xhttp "FinCast/pkg/http"
)

// DefaultBaseURL is the production API root.
const DefaultBaseURL = "https://financialmodelingprep.com/api"

// Client talks to the FinancialModelingPrep API.
type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	http    *xhttp.Client
}

// Option configures Client.
type Option func(*Client)

// WithBaseURL overrides the API root (used by tests).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// New creates an API client.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http = xhttp.NewClient(xhttp.WithTimeout(c.timeout))
	return c
}

// get fetches baseURL+path with the API key attached and decodes the JSON
// response into dest.
func (c *Client) get(ctx context.Context, path string, query map[string][]string, dest interface{}) error {
	params := map[string][]string{"apikey": {c.apiKey}}
	for k, v := range query {
		params[k] = v
	}

	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + path,
		QueryParams: params,
	}, dest)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", path, err)
	}
	return nil
}

var _ drepo.MarketData = (*Client)(nil)
