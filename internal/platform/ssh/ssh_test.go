package ssh

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

type testKey struct {
	pem    []byte
	public ssh.PublicKey
	signer ssh.Signer
}

func newTestKey(t *testing.T) testKey {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	block, err := ssh.MarshalPrivateKey(priv, "")
	require.NoError(t, err)
	signer, err := ssh.NewSignerFromKey(priv)
	require.NoError(t, err)
	sshPub, err := ssh.NewPublicKey(pub)
	require.NoError(t, err)

	return testKey{pem: pem.EncodeToMemory(block), public: sshPub, signer: signer}
}

type testServer struct {
	host        string
	port        int
	hostKey     testKey
	connections atomic.Int32
}

// startServer runs an in-process SSH server that answers exec requests
// with handler. Only clientKey may authenticate.
func startServer(t *testing.T, clientKey ssh.PublicKey, handler func(cmd string) (string, uint32)) *testServer {
	t.Helper()

	srv := &testServer{hostKey: newTestKey(t)}
	cfg := &ssh.ServerConfig{
		PublicKeyCallback: func(_ ssh.ConnMetadata, key ssh.PublicKey) (*ssh.Permissions, error) {
			if bytes.Equal(key.Marshal(), clientKey.Marshal()) {
				return nil, nil
			}
			return nil, fmt.Errorf("unknown key")
		},
	}
	cfg.AddHostKey(srv.hostKey.signer)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	addr := ln.Addr().(*net.TCPAddr)
	srv.host = addr.IP.String()
	srv.port = addr.Port

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go srv.serve(conn, cfg, handler)
		}
	}()
	return srv
}

func (s *testServer) serve(conn net.Conn, cfg *ssh.ServerConfig, handler func(string) (string, uint32)) {
	_, chans, reqs, err := ssh.NewServerConn(conn, cfg)
	if err != nil {
		_ = conn.Close()
		return
	}
	s.connections.Add(1)
	go ssh.DiscardRequests(reqs)

	for newCh := range chans {
		if newCh.ChannelType() != "session" {
			_ = newCh.Reject(ssh.UnknownChannelType, "unsupported")
			continue
		}
		ch, requests, err := newCh.Accept()
		if err != nil {
			continue
		}
		go func() {
			for req := range requests {
				if req.Type != "exec" {
					_ = req.Reply(false, nil)
					continue
				}
				var payload struct{ Command string }
				_ = ssh.Unmarshal(req.Payload, &payload)
				_ = req.Reply(true, nil)

				out, status := handler(payload.Command)
				_, _ = ch.Write([]byte(out))
				_, _ = ch.SendRequest("exit-status", false, ssh.Marshal(struct{ Status uint32 }{status}))
				_ = ch.Close()
				return
			}
		}()
	}
}

func (s *testServer) address() string {
	return net.JoinHostPort(s.host, strconv.Itoa(s.port))
}

func TestNewClient_Validation(t *testing.T) {
	t.Parallel()
	key := newTestKey(t)

	tests := []struct {
		name string
		cfg  *Config
		want string
	}{
		{"nil", nil, "config cannot be nil"},
		{"host", &Config{User: "root", PrivateKey: key.pem}, "config host cannot be empty"},
		{"user", &Config{Host: "192.0.2.1", PrivateKey: key.pem}, "config user cannot be empty"},
		{"key", &Config{Host: "192.0.2.1", User: "root"}, "config private key cannot be empty"},
		{"bad key", &Config{Host: "192.0.2.1", User: "root", PrivateKey: []byte("nope"), InsecureIgnoreHostKey: true}, "failed to parse private key"},
		{"known hosts", &Config{Host: "192.0.2.1", User: "root", PrivateKey: key.pem, KnownHostsFile: filepath.Join(t.TempDir(), "missing")}, "failed to load known_hosts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewClient(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNewClient_Defaults(t *testing.T) {
	t.Parallel()
	key := newTestKey(t)

	c, err := NewClient(&Config{Host: "192.0.2.1", User: "root", PrivateKey: key.pem, InsecureIgnoreHostKey: true})
	require.NoError(t, err)

	assert.Equal(t, defaultPort, c.config.Port)
	assert.Equal(t, defaultDialTimeout, c.config.DialTimeout)
	assert.Equal(t, defaultDialAttempts, c.config.DialAttempts)
	assert.Equal(t, defaultRetryDelay, c.config.RetryDelay)
	assert.Equal(t, "192.0.2.1:22", c.Address())
	assert.NotNil(t, c.config.HostKeyCallback)
}

func TestClient_Execute(t *testing.T) {
	t.Parallel()
	key := newTestKey(t)
	srv := startServer(t, key.public, func(cmd string) (string, uint32) {
		if cmd == "false" {
			return "boom\n", 1
		}
		return "ran " + cmd + "\n", 0
	})

	c, err := NewClient(&Config{
		Host:            srv.host,
		Port:            srv.port,
		User:            "root",
		PrivateKey:      key.pem,
		HostKeyCallback: ssh.FixedHostKey(srv.hostKey.public),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	out, err := c.Execute(context.Background(), "lsblk")
	require.NoError(t, err)
	assert.Equal(t, "ran lsblk\n", out)

	out, err = c.Execute(context.Background(), "false")
	require.ErrorIs(t, err, ErrCommandFailed)
	assert.Equal(t, "boom\n", out)
	assert.Contains(t, err.Error(), "boom")

	assert.Equal(t, int32(1), srv.connections.Load(), "connection is reused")
}

func TestClient_KnownHosts(t *testing.T) {
	t.Parallel()
	key := newTestKey(t)
	srv := startServer(t, key.public, func(string) (string, uint32) { return "ok", 0 })

	path := filepath.Join(t.TempDir(), "known_hosts")
	line := knownhosts.Line([]string{knownhosts.Normalize(srv.address())}, srv.hostKey.public)
	require.NoError(t, os.WriteFile(path, []byte(line+"\n"), 0o600))

	c, err := NewClient(&Config{Host: srv.host, Port: srv.port, User: "root", PrivateKey: key.pem, KnownHostsFile: path})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	out, err := c.Execute(context.Background(), "true")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

func TestClient_HostKeyMismatchIsNotRetried(t *testing.T) {
	t.Parallel()
	key := newTestKey(t)
	srv := startServer(t, key.public, func(string) (string, uint32) { return "ok", 0 })

	other := newTestKey(t)
	path := filepath.Join(t.TempDir(), "known_hosts")
	line := knownhosts.Line([]string{knownhosts.Normalize(srv.address())}, other.public)
	require.NoError(t, os.WriteFile(path, []byte(line+"\n"), 0o600))

	c, err := NewClient(&Config{
		Host:           srv.host,
		Port:           srv.port,
		User:           "root",
		PrivateKey:     key.pem,
		KnownHostsFile: path,
		DialAttempts:   3,
		RetryDelay:     time.Hour,
	})
	require.NoError(t, err)

	_, err = c.Execute(context.Background(), "true")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "knownhosts")
}

func TestClient_WrongKeyIsNotRetried(t *testing.T) {
	t.Parallel()
	key := newTestKey(t)
	srv := startServer(t, newTestKey(t).public, func(string) (string, uint32) { return "ok", 0 })

	c, err := NewClient(&Config{
		Host:                  srv.host,
		Port:                  srv.port,
		User:                  "root",
		PrivateKey:            key.pem,
		InsecureIgnoreHostKey: true,
		DialAttempts:          3,
		RetryDelay:            time.Hour,
	})
	require.NoError(t, err)

	_, err = c.Execute(context.Background(), "true")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to authenticate")
}

func TestClient_DialRetriesThenFails(t *testing.T) {
	t.Parallel()
	key := newTestKey(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	c, err := NewClient(&Config{
		Host:                  "127.0.0.1",
		Port:                  port,
		User:                  "root",
		PrivateKey:            key.pem,
		InsecureIgnoreHostKey: true,
		DialAttempts:          2,
		RetryDelay:            time.Millisecond,
	})
	require.NoError(t, err)

	_, err = c.Execute(context.Background(), "true")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "giving up after 2 attempts")
}

func TestClient_CloseWithoutConnect(t *testing.T) {
	t.Parallel()
	key := newTestKey(t)
	c, err := NewClient(&Config{Host: "192.0.2.1", User: "root", PrivateKey: key.pem, InsecureIgnoreHostKey: true})
	require.NoError(t, err)
	assert.NoError(t, c.Close())
}
