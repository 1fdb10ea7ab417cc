package provisioning

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Observer defines the interface for structured observability during provisioning.
type Observer interface {
	Logger

	// Event emits a structured event
	Event(event Event)

	// WithFields returns a new Observer with additional context fields
	WithFields(fields map[string]string) Observer
}

// Event is one line of run output. Resource names the cloud resource,
// descriptor field or node the event is about.
type Event struct {
	Type      EventType
	Phase     string
	Message   string
	Resource  string
	Timestamp time.Time
	Fields    map[string]string
}

// EventType represents the type of provisioning event.
type EventType string

const (
	// EventPhaseStarted indicates a provisioning phase has started.
	EventPhaseStarted EventType = "phase.started"
	// EventPhaseCompleted indicates a provisioning phase completed successfully.
	EventPhaseCompleted EventType = "phase.completed"
	// EventPhaseFailed indicates a provisioning phase failed.
	EventPhaseFailed EventType = "phase.failed"

	// EventResourceCreating indicates a resource is being created.
	EventResourceCreating EventType = "resource.creating"
	// EventResourceCreated indicates a resource was created successfully.
	EventResourceCreated EventType = "resource.created"
	// EventResourceExists indicates a resource already exists.
	EventResourceExists EventType = "resource.exists"
	// EventResourceFailed indicates a lookup, create or attach call failed.
	EventResourceFailed EventType = "resource.failed"
	// EventResourcePersisted indicates a resource identifier was written to the descriptor.
	EventResourcePersisted EventType = "resource.persisted"
)

var (
	styleOK   = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	styleWarn = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	styleFail = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	styleDim  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// ConsoleObserver implements Observer on top of a zap console logger.
type ConsoleObserver struct {
	log           *zap.SugaredLogger
	styled        bool
	contextFields map[string]string
}

// NewConsoleObserver creates an observer writing to stdout. Output is
// colored only when stdout is a terminal.
func NewConsoleObserver() *ConsoleObserver {
	return NewWriterObserver(os.Stdout, isatty.IsTerminal(os.Stdout.Fd()))
}

// NewWriterObserver creates an observer writing plain lines to w.
func NewWriterObserver(w io.Writer, styled bool) *ConsoleObserver {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = ""
	enc.LevelKey = ""
	enc.CallerKey = ""
	enc.NameKey = ""
	enc.StacktraceKey = ""

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), zapcore.DebugLevel)
	return &ConsoleObserver{
		log:           zap.New(core).Sugar(),
		styled:        styled,
		contextFields: make(map[string]string),
	}
}

// Printf implements Logger.
func (o *ConsoleObserver) Printf(format string, v ...any) {
	o.log.Infof(format, v...)
}

// Warnf implements Logger.
func (o *ConsoleObserver) Warnf(format string, v ...any) {
	o.log.Warn(o.paint(styleWarn, "WARNING") + " " + fmt.Sprintf(format, v...))
}

// Event implements Observer.
func (o *ConsoleObserver) Event(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if event.Fields == nil {
		event.Fields = make(map[string]string)
	}
	for k, v := range o.contextFields {
		if _, exists := event.Fields[k]; !exists {
			event.Fields[k] = v
		}
	}

	o.log.Info(o.formatEvent(event))
}

// WithFields implements Observer.
func (o *ConsoleObserver) WithFields(fields map[string]string) Observer {
	newFields := make(map[string]string, len(o.contextFields)+len(fields))
	for k, v := range o.contextFields {
		newFields[k] = v
	}
	for k, v := range fields {
		newFields[k] = v
	}
	return &ConsoleObserver{log: o.log, styled: o.styled, contextFields: newFields}
}

// Sync flushes buffered output.
func (o *ConsoleObserver) Sync() {
	_ = o.log.Sync()
}

func (o *ConsoleObserver) paint(style lipgloss.Style, s string) string {
	if !o.styled {
		return s
	}
	return style.Render(s)
}

// formatEvent formats an event for console output.
func (o *ConsoleObserver) formatEvent(event Event) string {
	var parts []string

	switch event.Type {
	case EventResourceCreated, EventResourceExists, EventResourcePersisted, EventPhaseCompleted:
		parts = append(parts, o.paint(styleOK, string(event.Type)))
	case EventResourceFailed, EventPhaseFailed:
		parts = append(parts, o.paint(styleFail, string(event.Type)))
	default:
		parts = append(parts, string(event.Type))
	}

	if event.Phase != "" {
		parts = append(parts, fmt.Sprintf("[%s]", event.Phase))
	}
	if event.Resource != "" {
		parts = append(parts, fmt.Sprintf("resource=%s", event.Resource))
	}
	parts = append(parts, event.Message)

	if len(event.Fields) > 0 {
		keys := make([]string, 0, len(event.Fields))
		for k := range event.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fieldParts := make([]string, 0, len(keys))
		for _, k := range keys {
			fieldParts = append(fieldParts, fmt.Sprintf("%s=%s", k, event.Fields[k]))
		}
		parts = append(parts, o.paint(styleDim, fmt.Sprintf("(%s)", strings.Join(fieldParts, ", "))))
	}

	return strings.Join(parts, " ")
}

// LogPhaseStart logs a phase start event.
func LogPhaseStart(observer Observer, phase string) {
	observer.Event(Event{
		Type:    EventPhaseStarted,
		Phase:   phase,
		Message: "starting",
	})
}

// LogPhaseComplete logs a phase completion event.
func LogPhaseComplete(observer Observer, phase string, duration time.Duration) {
	observer.Event(Event{
		Type:    EventPhaseCompleted,
		Phase:   phase,
		Message: fmt.Sprintf("completed in %v", duration.Round(time.Millisecond)),
	})
}

// LogPhaseFailed logs a phase failure event.
func LogPhaseFailed(observer Observer, phase string, err error) {
	observer.Event(Event{
		Type:    EventPhaseFailed,
		Phase:   phase,
		Message: fmt.Sprintf("failed: %v", err),
	})
}

// LogResourceCreating logs a resource creation start event.
func LogResourceCreating(observer Observer, phase, resourceType, resourceName string) {
	observer.Event(Event{
		Type:     EventResourceCreating,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("creating %s", resourceType),
		Fields: map[string]string{
			"type": resourceType,
		},
	})
}

// LogResourceCreated logs a successful resource creation event.
func LogResourceCreated(observer Observer, phase, resourceType, resourceName, resourceID string) {
	observer.Event(Event{
		Type:     EventResourceCreated,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("%s created", resourceType),
		Fields: map[string]string{
			"type": resourceType,
			"id":   resourceID,
		},
	})
}

// LogResourceExists logs when a resource already exists.
func LogResourceExists(observer Observer, phase, resourceType, resourceName, resourceID string) {
	observer.Event(Event{
		Type:     EventResourceExists,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("%s already exists", resourceType),
		Fields: map[string]string{
			"type": resourceType,
			"id":   resourceID,
		},
	})
}

// LogResourceFailed logs a failed cloud call for a resource.
func LogResourceFailed(observer Observer, phase, resourceType, resourceName string, err error) {
	observer.Event(Event{
		Type:     EventResourceFailed,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("%s: %v", resourceType, err),
		Fields: map[string]string{
			"type": resourceType,
		},
	})
}

// LogResourcePersisted logs a descriptor write-back.
func LogResourcePersisted(observer Observer, phase, field, value string) {
	observer.Event(Event{
		Type:     EventResourcePersisted,
		Phase:    phase,
		Resource: field,
		Message:  fmt.Sprintf("saved %s to descriptor", value),
	})
}
