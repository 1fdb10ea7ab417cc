package talos

import (
	"bytes"
	"context"
	"crypto/md5" // #nosec G501 -- label fingerprint, not a security boundary
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/blang/semver/v4"
	"github.com/hashicorp/go-cleanhttp"
)

// DefaultFactoryURL is the public Talos image factory.
const DefaultFactoryURL = "https://factory.talos.dev"

// FactoryClient talks to the Talos image factory.
type FactoryClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewFactoryClient creates a factory client. An empty baseURL selects
// DefaultFactoryURL; a nil httpClient selects a cleanhttp client.
func NewFactoryClient(baseURL string, httpClient *http.Client) *FactoryClient {
	if baseURL == "" {
		baseURL = DefaultFactoryURL
	}
	if httpClient == nil {
		httpClient = cleanhttp.DefaultClient()
	}
	return &FactoryClient{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// SubmitSchematic uploads a schematic definition and returns its ID.
// The factory is content addressed: the same schematic always yields the
// same ID.
func (c *FactoryClient) SubmitSchematic(ctx context.Context, schematic []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/schematics", bytes.NewReader(schematic))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/yaml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("submit schematic: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("image factory returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("image factory returned no schematic id")
	}
	return out.ID, nil
}

// ImageURL returns the download URL of a factory asset, e.g.
// hcloud-amd64.raw.xz or metal-amd64.iso.
func (c *FactoryClient) ImageURL(schematicID, talosVersion, asset string) string {
	return fmt.Sprintf("%s/image/%s/%s/%s", c.baseURL, schematicID, NormalizeVersion(talosVersion), asset)
}

// Factory asset names.
const (
	AssetHCloudRaw = "hcloud-amd64.raw.xz"
	AssetMetalISO  = "metal-amd64.iso"
)

// NormalizeVersion returns a Talos version with a leading v, as used in
// factory URLs. Unparseable input is returned unchanged.
func NormalizeVersion(v string) string {
	sv, err := semver.ParseTolerant(v)
	if err != nil {
		return v
	}
	return "v" + sv.String()
}

// SnapshotLabel is the value identifying an uploaded image: the MD5 of
// the schematic ID joined with the Talos version.
func SnapshotLabel(schematicID, talosVersion string) string {
	sum := md5.Sum([]byte(schematicID)) // #nosec G401
	return hex.EncodeToString(sum[:]) + "-" + NormalizeVersion(talosVersion)
}
