// Package client is an HTTP client for the bucketflags evaluation API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/TimurManjosov/bucketflags/internal/featureflags"
	"github.com/TimurManjosov/bucketflags/internal/flags"
)

// DefaultSessionParam matches the server's default session query parameter.
const DefaultSessionParam = "sid"

// Client is an HTTP client for the bucketflags API
type Client struct {
	BaseURL      string
	SessionParam string
	HTTPClient   *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		SessionParam: DefaultSessionParam,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// EvalOptions carries the optional evaluation inputs. Nil fields are not sent.
type EvalOptions struct {
	SessionID *string
	BucketFor *string
}

func (c *Client) evalQuery(q url.Values, opts EvalOptions) {
	if opts.SessionID != nil {
		param := c.SessionParam
		if param == "" {
			param = DefaultSessionParam
		}
		q.Set(param, *opts.SessionID)
	}
	if opts.BucketFor != nil {
		q.Set("bucket_for", *opts.BucketFor)
	}
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// ListFlags retrieves the server's current flag definitions as a registry.
func (c *Client) ListFlags(ctx context.Context) (*flags.Registry, error) {
	var result struct {
		Flags map[string]flags.Definition `json:"flags"`
	}
	if err := c.get(ctx, "/v1/flags", url.Values{}, &result); err != nil {
		return nil, err
	}
	return flags.NewRegistry(result.Flags), nil
}

// Evaluate evaluates one flag on the server.
func (c *Client) Evaluate(ctx context.Context, name string, opts EvalOptions) (bool, error) {
	q := url.Values{}
	c.evalQuery(q, opts)

	var result featureflags.Evaluation
	if err := c.get(ctx, "/v1/flags/"+url.PathEscape(name)+"/evaluate", q, &result); err != nil {
		return false, err
	}
	return result.Enabled, nil
}

// EvaluateMany evaluates several flags in one request, in the given order.
func (c *Client) EvaluateMany(ctx context.Context, names []string, opts EvalOptions) ([]featureflags.Evaluation, error) {
	q := url.Values{}
	q.Set("flags", strings.Join(names, ","))
	c.evalQuery(q, opts)

	var result struct {
		Results []featureflags.Evaluation `json:"results"`
	}
	if err := c.get(ctx, "/v1/evaluate", q, &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}
