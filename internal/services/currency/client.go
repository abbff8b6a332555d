// Package currency resolves conversion rates from an external rate
// service at read time. Balances are stored in the base currency only.
package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// BaseCurrency is the currency every balance is stored in.
const BaseCurrency = "INR"

const (
	defaultAPIURL  = "https://api.currencyapi.com/v3/latest"
	defaultTimeout = 10 * time.Second
)

var ErrUnknownCurrency = errors.New("invalid currency code")

// RateSource returns the conversion rate from the base currency to target.
type RateSource interface {
	Rate(ctx context.Context, target string) (float64, error)
}

// Client is a RateSource backed by currencyapi.com.
type Client struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		apiURL:     defaultAPIURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// NewClientWithURL is used by tests to point the client at a stub server.
func NewClientWithURL(apiKey, apiURL string) *Client {
	c := NewClient(apiKey)
	c.apiURL = apiURL
	return c
}

func (c *Client) Rate(ctx context.Context, target string) (float64, error) {
	params := url.Values{}
	params.Set("apikey", c.apiKey)
	params.Set("base_currency", BaseCurrency)
	params.Set("currencies", target)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build rate request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("rate lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("rate service returned status %d", resp.StatusCode)
	}

	var payload struct {
		Data map[string]struct {
			Value float64 `json:"value"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("failed to decode rate response: %w", err)
	}

	entry, ok := payload.Data[target]
	if !ok || entry.Value == 0 {
		return 0, ErrUnknownCurrency
	}
	return entry.Value, nil
}
