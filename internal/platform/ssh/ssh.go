package ssh

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/imamik/talhybrid/internal/util/retry"
)

const (
	defaultPort         = 22
	defaultDialTimeout  = 10 * time.Second
	defaultDialAttempts = 6
	defaultRetryDelay   = 5 * time.Second
	defaultMaxDelay     = 20 * time.Second
)

// ErrCommandFailed is returned when a remote command exits non-zero.
var ErrCommandFailed = errors.New("remote command failed")

// Config holds SSH client configuration.
type Config struct {
	Host       string
	Port       int
	User       string
	PrivateKey []byte

	// DialTimeout bounds a single TCP connect and handshake.
	DialTimeout time.Duration

	// DialAttempts is how often connecting is tried while the rescue
	// system comes up. Commands themselves are never retried.
	DialAttempts int
	RetryDelay   time.Duration

	// KnownHostsFile defaults to ~/.ssh/known_hosts.
	KnownHostsFile string

	// InsecureIgnoreHostKey skips host key verification. Rescue systems
	// get a fresh host key on every boot, so this is often needed.
	InsecureIgnoreHostKey bool

	// HostKeyCallback overrides both settings above.
	HostKeyCallback ssh.HostKeyCallback
}

// Client executes commands on a remote server. The connection is opened
// on first use and reused until Close.
type Client struct {
	config Config
	signer ssh.Signer

	mu   sync.Mutex
	conn *ssh.Client
}

// NewClient validates cfg, parses the private key and resolves host key
// checking. It does not connect.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Host == "" {
		return nil, fmt.Errorf("config host cannot be empty")
	}
	if cfg.User == "" {
		return nil, fmt.Errorf("config user cannot be empty")
	}
	if len(cfg.PrivateKey) == 0 {
		return nil, fmt.Errorf("config private key cannot be empty")
	}

	c := *cfg
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = defaultDialTimeout
	}
	if c.DialAttempts == 0 {
		c.DialAttempts = defaultDialAttempts
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = defaultRetryDelay
	}

	signer, err := ssh.ParsePrivateKey(c.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	if c.HostKeyCallback == nil {
		cb, err := hostKeyCallback(c)
		if err != nil {
			return nil, err
		}
		c.HostKeyCallback = cb
	}

	return &Client{config: c, signer: signer}, nil
}

func hostKeyCallback(c Config) (ssh.HostKeyCallback, error) {
	if c.InsecureIgnoreHostKey {
		return ssh.InsecureIgnoreHostKey(), nil //nolint:gosec // opt-in for rescue systems
	}
	path := c.KnownHostsFile
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to locate known_hosts: %w", err)
		}
		path = filepath.Join(home, ".ssh", "known_hosts")
	}
	cb, err := knownhosts.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load known_hosts %s: %w", path, err)
	}
	return cb, nil
}

// Address returns host:port.
func (c *Client) Address() string {
	return net.JoinHostPort(c.config.Host, strconv.Itoa(c.config.Port))
}

// Execute runs command and returns its combined output. A non-zero exit
// yields ErrCommandFailed with the output attached. Cancelling ctx kills
// the remote command.
func (c *Client) Execute(ctx context.Context, command string) (string, error) {
	conn, err := c.connect(ctx)
	if err != nil {
		return "", err
	}

	session, err := conn.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to create SSH session on %s: %w", c.config.Host, err)
	}
	defer func() { _ = session.Close() }()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = session.Signal(ssh.SIGKILL)
			_ = session.Close()
		case <-done:
		}
	}()

	output, err := session.CombinedOutput(command)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return string(output), ctxErr
	}
	if err != nil {
		return string(output), fmt.Errorf("%w on %s: %s: %w\n%s",
			ErrCommandFailed, c.config.Host, command, err, strings.TrimSpace(string(output)))
	}
	return string(output), nil
}

// Close closes the connection, if any.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) connect(ctx context.Context) (*ssh.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return c.conn, nil
	}

	config := &ssh.ClientConfig{
		User:            c.config.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(c.signer)},
		HostKeyCallback: c.config.HostKeyCallback,
		Timeout:         c.config.DialTimeout,
	}

	addr := c.Address()
	policy := retry.Policy{
		Attempts:   c.config.DialAttempts,
		Initial:    c.config.RetryDelay,
		Max:        defaultMaxDelay,
		Multiplier: 2,
	}
	err := policy.Do(ctx, func() error {
		conn, err := ssh.Dial("tcp", addr, config)
		if err != nil {
			if permanent(err) {
				return retry.Fatal(err)
			}
			return err
		}
		c.conn = conn
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to establish SSH connection to %s: %w", addr, err)
	}
	return c.conn, nil
}

// permanent reports dial errors that another attempt cannot fix.
func permanent(err error) bool {
	var keyErr *knownhosts.KeyError
	if errors.As(err, &keyErr) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "unable to authenticate") || strings.Contains(msg, "knownhosts:")
}
