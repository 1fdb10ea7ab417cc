package robot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
)

// DefaultBaseURL is the Robot webservice endpoint.
const DefaultBaseURL = "https://robot-ws.your-server.de"

// DefaultTimeout bounds every Robot request.
const DefaultTimeout = 30 * time.Second

// VLAN IDs accepted by Robot for vSwitches.
const (
	MinVLAN = 4000
	MaxVLAN = 4091
)

// VSwitch is a Robot vSwitch.
type VSwitch struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	VLAN      int             `json:"vlan"`
	Cancelled bool            `json:"cancelled"`
	Servers   []VSwitchServer `json:"server,omitempty"`
}

// VSwitchServer is a dedicated server attached to a vSwitch.
type VSwitchServer struct {
	ServerIP     string `json:"server_ip"`
	ServerNumber int64  `json:"server_number"`
	Status       string `json:"status"`
}

// Error is an error reported by the Robot API.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("robot API error %d %s: %s", e.Status, e.Code, e.Message)
}

type errorResponse struct {
	Error *Error `json:"error"`
}

// IsNotFound reports whether err is a Robot NOT_FOUND error.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && (apiErr.Status == http.StatusNotFound || strings.HasSuffix(apiErr.Code, "NOT_FOUND"))
}

// IsUnauthorized reports whether Robot rejected the webservice credentials.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Code == "UNAUTHORIZED")
}

// IsRateLimited reports whether the request hit the Robot request limit.
func IsRateLimited(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Code == "RATE_LIMIT_EXCEEDED"
}

// VSwitchManager lists and creates vSwitches.
type VSwitchManager interface {
	ListVSwitches(ctx context.Context) ([]VSwitch, error)
	CreateVSwitch(ctx context.Context, name string, vlan int) (*VSwitch, error)
}

// MemberManager reads and extends the server list of a vSwitch.
type MemberManager interface {
	GetVSwitch(ctx context.Context, id int64) (*VSwitch, error)
	AddServers(ctx context.Context, id int64, servers ...string) error
}

// API combines the vSwitch and membership calls.
type API interface {
	VSwitchManager
	MemberManager
}

var _ API = (*Client)(nil)

// Client is a Robot webservice client.
type Client struct {
	user       string
	password   string
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another endpoint (used by tests).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout overrides the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if c.httpClient != nil && d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// NewClient creates a new Robot API client.
func NewClient(user, password string, opts ...Option) *Client {
	hc := cleanhttp.DefaultClient()
	hc.Timeout = DefaultTimeout
	c := &Client{
		user:       user,
		password:   password,
		baseURL:    DefaultBaseURL,
		httpClient: hc,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListVSwitches returns all vSwitches of the account, cancelled ones included.
func (c *Client) ListVSwitches(ctx context.Context) ([]VSwitch, error) {
	var out []VSwitch
	if err := c.call(ctx, http.MethodGet, "/vswitch", nil, &out); err != nil {
		return nil, fmt.Errorf("list vswitches: %w", err)
	}
	return out, nil
}

// GetVSwitch returns a vSwitch with its attached servers.
func (c *Client) GetVSwitch(ctx context.Context, id int64) (*VSwitch, error) {
	var out VSwitch
	if err := c.call(ctx, http.MethodGet, "/vswitch/"+strconv.FormatInt(id, 10), nil, &out); err != nil {
		return nil, fmt.Errorf("get vswitch %d: %w", id, err)
	}
	return &out, nil
}

// CreateVSwitch creates a vSwitch on the given VLAN.
func (c *Client) CreateVSwitch(ctx context.Context, name string, vlan int) (*VSwitch, error) {
	if vlan < MinVLAN || vlan > MaxVLAN {
		return nil, fmt.Errorf("vlan id %d must be between %d and %d", vlan, MinVLAN, MaxVLAN)
	}

	form := url.Values{}
	form.Set("name", name)
	form.Set("vlan", strconv.Itoa(vlan))

	var out VSwitch
	if err := c.call(ctx, http.MethodPost, "/vswitch", form, &out); err != nil {
		return nil, fmt.Errorf("create vswitch %s: %w", name, err)
	}
	return &out, nil
}

// AddServers attaches dedicated servers (by number or main IP) to a vSwitch.
func (c *Client) AddServers(ctx context.Context, id int64, servers ...string) error {
	form := url.Values{}
	for _, s := range servers {
		form.Add("server", s)
	}
	if err := c.call(ctx, http.MethodPost, fmt.Sprintf("/vswitch/%d/server", id), form, nil); err != nil {
		return fmt.Errorf("add servers to vswitch %d: %w", id, err)
	}
	return nil
}

func (c *Client) call(ctx context.Context, method, path string, form url.Values, out any) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.user, c.password)
	req.Header.Set("Accept", "application/json")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr errorResponse
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != nil {
			if apiErr.Error.Status == 0 {
				apiErr.Error.Status = resp.StatusCode
			}
			return apiErr.Error
		}
		return &Error{Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse response: %w (status %d)", err, resp.StatusCode)
	}
	return nil
}
