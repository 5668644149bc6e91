// Package reporter submits attendance reports to the remote endpoint.
package reporter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fatcatfablab/autodoh/types"
	"go.uber.org/zap"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/87.0.4280.66 Safari/537.36"

	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 64 << 10
)

type Client struct {
	client *http.Client
	url    *url.URL
	cookie string
}

// New returns a Client posting to endpoint with cookie. If hc is nil a
// client with a 30s timeout is used.
func New(endpoint, cookie string, hc *http.Client) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to parse report url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("report url must be absolute, got %q", endpoint)
	}
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{client: hc, url: u, cookie: cookie}, nil
}

// Submit posts the form for kind. A response with any status is an Outcome;
// only failing to get a response at all is an error.
func (c *Client) Submit(ctx context.Context, kind types.ReportKind) (types.Outcome, error) {
	zap.S().Infof("Reporting %s", kind)

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.url.String(),
		strings.NewReader(kind.Form().Encode()),
	)
	if err != nil {
		return types.Outcome{}, fmt.Errorf("error building report request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("cookie", c.cookie)

	resp, err := c.client.Do(req)
	if err != nil {
		return types.Outcome{}, fmt.Errorf("error sending report request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		zap.S().Errorf("error reading report response body: %s", err)
	}

	o := types.Outcome{Kind: kind, StatusCode: resp.StatusCode, Body: string(body)}
	logOutcome(resp.Request.URL.Path, o)
	return o, nil
}

func logOutcome(path string, o types.Outcome) {
	if o.Ok() {
		zap.S().Infof("Request succeeded [%d] - %s", o.StatusCode, path)
	} else {
		zap.S().Errorf("Request failed [%d] - %s : %s", o.StatusCode, path, o.Body)
	}
}
