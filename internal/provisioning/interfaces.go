package provisioning

// Phase defines the interface for a provisioning phase.
type Phase interface {
	// Name returns the human-readable name of this phase.
	Name() string

	// Provision executes the provisioning logic for this phase.
	Provision(ctx *Context) error
}

// Logger is the minimal printing interface used by helpers that do not
// need structured events.
type Logger interface {
	Printf(format string, v ...any)
	Warnf(format string, v ...any)
}
