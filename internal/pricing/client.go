// Package pricing fetches list prices for product numbers from the
// external provider: one call for a bearer token, one for the price.
// There is no retry, no backoff and no caching; every registration does a
// fresh lookup and a failed lookup simply fails that row.
package pricing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

const userAgent = "Mozilla/5.0"

// Lookup is the interface the registration paths consume
type Lookup interface {
	Price(ctx context.Context, productNumber string) (int64, error)
}

// Client talks to the price provider over HTTP
type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger
}

// NewClient creates a price lookup client. A nil httpClient falls back to
// http.DefaultClient; no timeout is layered on top of what the caller's
// client already has.
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		log:     logger,
	}
}

// Price returns the original list price for the product number, in the
// smallest currency unit. Any failure in either call surfaces as an error;
// the caller reports the row as failed and moves on.
func (c *Client) Price(ctx context.Context, productNumber string) (int64, error) {
	token, err := c.token(ctx)
	if err != nil {
		c.log.Warn("token fetch failed", "error", err)
		return 0, fmt.Errorf("fetch token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/product/v1/price/%s", c.baseURL, productNumber), nil)
	if err != nil {
		return 0, fmt.Errorf("build price request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("price request failed", "productNumber", productNumber, "error", err)
		return 0, fmt.Errorf("price request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("price request: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read price response: %w", err)
	}

	return extractOriginalPrice(body)
}

func (c *Client) token(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/common/v1/token", nil)
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Body struct {
			Token string `json:"token"`
		} `json:"body"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if payload.Body.Token == "" {
		return "", errors.New("token response: empty token")
	}

	return payload.Body.Token, nil
}

// extractOriginalPrice tries the structured response shape first and falls
// back to a raw substring scan, so a provider schema change only touches
// this boundary.
func extractOriginalPrice(body []byte) (int64, error) {
	var typed struct {
		Body struct {
			OriginalPrice *int64 `json:"originalPrice"`
		} `json:"body"`
	}
	if err := json.Unmarshal(body, &typed); err == nil && typed.Body.OriginalPrice != nil {
		return *typed.Body.OriginalPrice, nil
	}

	return scanOriginalPrice(body)
}

// scanOriginalPrice extracts the integer between the literal
// `"originalPrice":` marker and the next comma.
func scanOriginalPrice(body []byte) (int64, error) {
	const marker = `"originalPrice":`

	idx := bytes.Index(body, []byte(marker))
	if idx < 0 {
		return 0, errors.New("price response: originalPrice not found")
	}

	rest := body[idx+len(marker):]
	if end := bytes.IndexByte(rest, ','); end >= 0 {
		rest = rest[:end]
	}

	price, err := strconv.ParseInt(strings.TrimSpace(string(rest)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("price response: parse originalPrice: %w", err)
	}

	return price, nil
}
