package mds

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"mdsexport/pkg/logger"
)

// Client is an HTTP client for the bulk-extract API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     logger.Logger
}

// NewClient creates a new extract API client. If log is nil the global
// logger is used.
func NewClient(baseURL string, timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		logger:  log,
	}
}

// FetchFirst requests the first page of an extract using the given
// resumption token.
func (c *Client) FetchFirst(ctx context.Context, token string) (*ExtractResponse, error) {
	return c.fetch(ctx, ExtractURL(c.baseURL, token))
}

// FetchNext requests a follow-up page via the absolute URL the server
// returned in next_url.
func (c *Client) FetchNext(ctx context.Context, nextURL string) (*ExtractResponse, error) {
	return c.fetch(ctx, nextURL)
}

// fetch performs a single GET and decodes the extract page. One attempt
// only; any failure is fatal to the caller's run.
func (c *Client) fetch(ctx context.Context, url string) (*ExtractResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{
			Type:    ErrorTypeFetchFailed,
			Message: fmt.Sprintf("failed to create request: %v", err),
		}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"url":      url,
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, &Error{
			Type:    ErrorTypeFetchFailed,
			Message: fmt.Sprintf("network error: %v", err),
		}
	}
	defer resp.Body.Close()

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"url":      url,
		"status":   resp.StatusCode,
		"duration": duration,
	})

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.ErrorWithFields("extract request rejected", map[string]interface{}{
			"url":    url,
			"status": resp.StatusCode,
		})
		return nil, &Error{
			Type:    ErrorTypeFetchFailed,
			Message: fmt.Sprintf("server returned status %d", resp.StatusCode),
			Code:    resp.StatusCode,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{
			Type:    ErrorTypeFetchFailed,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
		}
	}

	var page ExtractResponse
	if err := json.Unmarshal(body, &page); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse extract response", map[string]interface{}{
			"url":          url,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		return nil, &Error{
			Type:    ErrorTypeProtocol,
			Message: fmt.Sprintf("failed to parse JSON: %v", err),
			Code:    resp.StatusCode,
		}
	}

	// A present-but-empty data array is a valid empty page; an absent data
	// field is not.
	if page.Data == nil {
		c.logger.ErrorWithFields("extract response missing data field", map[string]interface{}{
			"url": url,
		})
		return nil, &Error{
			Type:    ErrorTypeProtocol,
			Message: "response missing data field",
			Code:    resp.StatusCode,
		}
	}

	return &page, nil
}
