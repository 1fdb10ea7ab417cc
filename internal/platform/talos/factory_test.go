package talos

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitSchematic(t *testing.T) {
	t.Parallel()
	schematic := []byte("customization:\n  systemExtensions:\n    officialExtensions:\n      - siderolabs/iscsi-tools\n")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/schematics", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, schematic, body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"376567988ad370138ad8b2698212367b8edcb69b5fd68c80be1f2ec7d603b4ba"}`))
	}))
	defer srv.Close()

	id, err := NewFactoryClient(srv.URL, srv.Client()).SubmitSchematic(context.Background(), schematic)
	require.NoError(t, err)
	assert.Equal(t, "376567988ad370138ad8b2698212367b8edcb69b5fd68c80be1f2ec7d603b4ba", id)
}

func TestSubmitSchematic_Error(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "invalid schematic", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := NewFactoryClient(srv.URL, srv.Client()).SubmitSchematic(context.Background(), []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Contains(t, err.Error(), "invalid schematic")
}

func TestSubmitSchematic_EmptyID(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := NewFactoryClient(srv.URL, srv.Client()).SubmitSchematic(context.Background(), []byte("x"))
	require.Error(t, err)
}

func TestImageURL(t *testing.T) {
	t.Parallel()
	c := NewFactoryClient("", nil)

	assert.Equal(t,
		"https://factory.talos.dev/image/abc/v1.10.3/hcloud-amd64.raw.xz",
		c.ImageURL("abc", "1.10.3", AssetHCloudRaw))
	assert.Equal(t,
		"https://factory.talos.dev/image/abc/v1.10.3/metal-amd64.iso",
		c.ImageURL("abc", "v1.10.3", AssetMetalISO))
}

func TestSnapshotLabel(t *testing.T) {
	t.Parallel()
	// md5("abc") = 900150983cd24fb0d6963f7d28e17f72
	assert.Equal(t, "900150983cd24fb0d6963f7d28e17f72-v1.10.3", SnapshotLabel("abc", "v1.10.3"))
	assert.Equal(t, SnapshotLabel("abc", "1.10.3"), SnapshotLabel("abc", "v1.10.3"))
}
