// Package shopify implements the Shopify Admin API client used by the sync
// worker: GraphQL (ShopifyQL analytics) and REST (orders, products).
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	shopifydomain "github.com/pulse-platform/service-store-analytics/internal/domain/shopify"
)

// DefaultAPIVersion pins the Admin API version for both GraphQL and REST so
// the two surfaces stay compatible.
const DefaultAPIVersion = "2026-01"

// Client is the Shopify Admin API client with automatic retry for throttled
// and server-side failures.
type Client struct {
	baseURL     string
	apiVersion  string
	accessToken string
	httpClient  *http.Client
	logger      *zap.Logger
	retryPolicy *shopifydomain.RetryPolicy
}

// ClientConfig holds configuration for the Shopify client.
type ClientConfig struct {
	StoreURL       string
	AccessToken    string
	APIVersion     string
	Logger         *zap.Logger
	RetryPolicy    *shopifydomain.RetryPolicy
	RequestTimeout time.Duration
}

// NewClient creates a new Shopify Admin API client for one store.
func NewClient(cfg *ClientConfig) (*Client, error) {
	if cfg.StoreURL == "" {
		return nil, fmt.Errorf("store URL is required")
	}

	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	retryPolicy := cfg.RetryPolicy
	if retryPolicy == nil {
		retryPolicy = shopifydomain.DefaultRetryPolicy()
	}

	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:     FormatStoreURL(cfg.StoreURL),
		apiVersion:  apiVersion,
		accessToken: cfg.AccessToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:      logger,
		retryPolicy: retryPolicy,
	}, nil
}

// FormatStoreURL normalizes a store URL: a bare store name becomes
// https://<name>.myshopify.com and a missing protocol is added.
func FormatStoreURL(storeURL string) string {
	url := strings.TrimSpace(storeURL)

	noProtocol := strings.TrimPrefix(strings.TrimPrefix(url, "https://"), "http://")
	if !strings.Contains(noProtocol, ".") {
		return "https://" + noProtocol + ".myshopify.com"
	}

	if strings.HasPrefix(url, "http") {
		return url
	}
	return "https://" + url
}

// graphQLResponse is the envelope of an Admin GraphQL response.
type graphQLResponse struct {
	Data   json.RawMessage              `json:"data"`
	Errors []shopifydomain.GraphQLError `json:"errors"`
}

// ExecuteGraphQL posts a GraphQL document and returns the raw data payload.
// Top-level GraphQL errors become an APIError carrying the extension code, so
// callers can detect unsupported fields with errors.Is(err, ErrFieldUndefined).
func (c *Client) ExecuteGraphQL(ctx context.Context, operation, query string) (json.RawMessage, error) {
	url := fmt.Sprintf("%s/admin/api/%s/graphql.json", c.baseURL, c.apiVersion)

	payload, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, fmt.Errorf("marshal GraphQL query: %w", err)
	}

	body, err := c.do(ctx, operation, http.MethodPost, url, payload)
	if err != nil {
		return nil, err
	}

	var resp graphQLResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode GraphQL response for %s: %w", operation, err)
	}

	if len(resp.Errors) > 0 {
		apiErr := shopifydomain.NewGraphQLAPIError(operation, resp.Errors)
		if shopifydomain.IsFieldUndefined(resp.Errors) {
			c.logger.Warn("GraphQL field not supported by store",
				zap.String("operation", operation),
				zap.String("message", apiErr.Message),
			)
		} else {
			c.logger.Error("GraphQL query failed",
				zap.String("operation", operation),
				zap.String("message", apiErr.Message),
			)
		}
		return nil, apiErr
	}

	return resp.Data, nil
}

// getREST issues a GET against an Admin REST path and decodes into out.
func (c *Client) getREST(ctx context.Context, operation, path string, out any) error {
	url := fmt.Sprintf("%s/admin/api/%s/%s", c.baseURL, c.apiVersion, path)

	body, err := c.do(ctx, operation, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

// do executes one HTTP request with the retry policy applied.
func (c *Client) do(ctx context.Context, operation, method, url string, payload []byte) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= c.retryPolicy.MaxAttempts(); attempt++ {
		body, err := c.doOnce(ctx, operation, method, url, payload)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if !c.retryPolicy.ShouldRetry(err, attempt) {
			return nil, err
		}

		c.logger.Warn("retrying Shopify request",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if !c.retryPolicy.WaitForRetry(ctx, attempt) {
			return nil, ctx.Err()
		}
	}

	return nil, lastErr
}

func (c *Client) doOnce(ctx context.Context, operation, method, url string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", operation, err)
	}

	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("shopify %s: %w", operation, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", operation, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, shopifydomain.NewAPIError(operation, strings.TrimSpace(string(body)), resp.StatusCode)
	}

	return body, nil
}
