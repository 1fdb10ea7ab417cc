package hcloud

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/talhybrid/internal/config"
)

// RealClient implements InfrastructureManager using the Hetzner Cloud API.
type RealClient struct {
	client     *hcloud.Client
	timeouts   *config.Timeouts
	httpClient *http.Client
}

// ClientOption configures a RealClient.
type ClientOption func(*RealClient)

// WithTimeouts sets custom timeouts for the client.
func WithTimeouts(t *config.Timeouts) ClientOption {
	return func(c *RealClient) {
		c.timeouts = t
	}
}

// WithHTTPClient sets the HTTP client used for API requests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *RealClient) {
		c.httpClient = hc
	}
}

// WithHCloudClient sets a custom hcloud client (useful for testing).
func WithHCloudClient(hc *hcloud.Client) ClientOption {
	return func(c *RealClient) {
		c.client = hc
	}
}

// NewRealClient creates a new RealClient with optional configuration.
// Unless overridden, requests go through a pooled cleanhttp client bounded
// by the HTTP timeout.
func NewRealClient(token string, opts ...ClientOption) *RealClient {
	c := &RealClient{timeouts: config.LoadTimeouts()}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = cleanhttp.DefaultPooledClient()
		c.httpClient.Timeout = c.timeouts.HTTP
	}
	if c.client == nil {
		c.client = hcloud.NewClient(
			hcloud.WithToken(token),
			hcloud.WithHTTPClient(c.httpClient),
			hcloud.WithApplication("talhybrid", ""),
		)
	}
	return c
}

// waitFor blocks until all non-nil actions finish or the action timeout expires.
func (c *RealClient) waitFor(ctx context.Context, what string, actions ...*hcloud.Action) error {
	pending := make([]*hcloud.Action, 0, len(actions))
	for _, a := range actions {
		if a != nil {
			pending = append(pending, a)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeouts.Action)
	defer cancel()

	if err := c.client.Action.WaitFor(ctx, pending...); err != nil {
		return fmt.Errorf("failed to wait for %s: %w", what, err)
	}
	return nil
}
