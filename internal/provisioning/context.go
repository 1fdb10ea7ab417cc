package provisioning

import (
	"context"

	"github.com/imamik/talhybrid/internal/config"
	"github.com/imamik/talhybrid/internal/descriptor"
)

// Context wraps all dependencies needed by a provisioning phase. It
// replaces process-wide descriptor state: one Context per run, never
// shared between concurrent runs.
type Context struct {
	context.Context
	Paths       config.Paths
	Store       *descriptor.Store
	Credentials *config.Credentials
	Observer    Observer
	Metrics     *Metrics
	Timeouts    *config.Timeouts
}

// NewContext creates a provisioning context with a console observer and
// environment-derived timeouts.
func NewContext(ctx context.Context, paths config.Paths, store *descriptor.Store, creds *config.Credentials) *Context {
	if creds == nil {
		creds = &config.Credentials{}
	}
	return &Context{
		Context:     ctx,
		Paths:       paths,
		Store:       store,
		Credentials: creds,
		Observer:    NewConsoleObserver(),
		Metrics:     NewMetrics(),
		Timeouts:    config.LoadTimeouts(),
	}
}

// Descriptor returns the currently loaded descriptor.
func (c *Context) Descriptor() *config.Descriptor {
	return c.Store.Descriptor()
}
