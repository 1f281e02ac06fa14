package isgd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prasetyowira/qrlink/constant"
	"github.com/prasetyowira/qrlink/domain/shortener"
	"github.com/prasetyowira/qrlink/infrastructure/logger"
)

// DefaultEndpoint is the public is.gd create endpoint
const DefaultEndpoint = "https://is.gd/create.php"

// maxBodySize bounds how much of a response is read. A short URL or an
// error line is far smaller.
const maxBodySize = 2 << 10

const errorPrefix = "Error:"

// Client shortens URLs with the is.gd "simple" format API
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient creates a client for endpoint with the given request timeout
func NewClient(endpoint string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

// Shorten asks the provider for a short URL. Provider-reported failures are
// returned as *shortener.UpstreamError; transport failures are wrapped as is.
func (c *Client) Shorten(ctx context.Context, longURL string) (string, error) {
	q := url.Values{}
	q.Set("format", "simple")
	q.Set("url", longURL)
	target := c.endpoint + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("build shorten request: %w", err)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("call shortening provider: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("read shortening provider response: %w", err)
	}
	body := strings.TrimSpace(string(raw))

	logger.CtxDebug(ctx, "Shortening provider responded", logger.LoggerInfo{
		ContextFunction: constant.CtxIsgdShorten,
		Data: map[string]interface{}{
			constant.DataEndpoint: c.endpoint,
			constant.DataStatus:   resp.StatusCode,
			constant.DataLatency:  time.Since(start).String(),
		},
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &shortener.UpstreamError{StatusCode: resp.StatusCode, Body: body}
	}
	if body == "" || strings.HasPrefix(body, errorPrefix) {
		return "", &shortener.UpstreamError{StatusCode: resp.StatusCode, Body: body}
	}

	return body, nil
}
