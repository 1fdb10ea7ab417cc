// Package render renders Talos patch templates with fail-closed variable
// resolution.
//
// Templates use text/template syntax plus the sprig function library. Any
// reference to a name absent from the context is an error: a missing
// network field must never be baked into a node config as an empty string.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/imamik/talhybrid/internal/config"
	"github.com/imamik/talhybrid/internal/util/fileutil"
)

// ErrUndefinedTemplateVariable is returned when a template references a
// name that is not defined in its context.
var ErrUndefinedTemplateVariable = errors.New("undefined template variable")

// Values is the template namespace. Nested maps are addressed with dots.
type Values map[string]any

// Engine renders templates against a Values namespace.
type Engine struct {
	funcs template.FuncMap
}

// NewEngine returns an engine with the sprig functions and a strict get.
func NewEngine() *Engine {
	funcs := sprig.TxtFuncMap()
	funcs["get"] = strictGet
	return &Engine{funcs: funcs}
}

// strictGet replaces sprig's get, which yields "" for missing keys.
func strictGet(m map[string]any, key string) (any, error) {
	v, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUndefinedTemplateVariable, key)
	}
	return v, nil
}

// Render renders source under name against values.
func (e *Engine) Render(name, source string, values Values) (string, error) {
	tmpl, err := template.New(name).
		Option("missingkey=error").
		Funcs(e.funcs).
		Parse(source)
	if err != nil {
		return "", classify(name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any(values)); err != nil {
		return "", classify(name, err)
	}
	return buf.String(), nil
}

// classify maps template failures caused by unknown names onto
// ErrUndefinedTemplateVariable.
func classify(name string, err error) error {
	if errors.Is(err, ErrUndefinedTemplateVariable) {
		return fmt.Errorf("template %s: %w", name, err)
	}
	msg := err.Error()
	for _, marker := range []string{
		"map has no entry for key",
		"nil pointer evaluating",
		"can't evaluate field",
		"not defined",
	} {
		if strings.Contains(msg, marker) {
			return fmt.Errorf("template %s: %w: %w", name, ErrUndefinedTemplateVariable, err)
		}
	}
	return fmt.Errorf("template %s: %w", name, err)
}

// RenderFile renders the template at src and writes the result to dst.
func (e *Engine) RenderFile(src, dst string, values Values) error {
	// #nosec G304
	source, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read template: %w", err)
	}
	out, err := e.Render(filepath.Base(src), string(source), values)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := fileutil.WriteFileAtomic(dst, []byte(out), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return nil
}

// ListTemplates returns the template file names in dir in lexical order.
// A missing directory has no templates.
func ListTemplates(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list templates in %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.Type().IsRegular() && strings.HasSuffix(entry.Name(), config.TemplateSuffix) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// RenderFolder renders every template in src into dst, stripping the
// template suffix, and returns the rendered basenames in lexical order.
// Rendering stops at the first failing template.
func (e *Engine) RenderFolder(src, dst string, values Values) ([]string, error) {
	names, err := ListTemplates(src)
	if err != nil {
		return nil, err
	}

	rendered := make([]string, 0, len(names))
	for _, name := range names {
		stem := strings.TrimSuffix(name, config.TemplateSuffix)
		if err := e.RenderFile(filepath.Join(src, name), filepath.Join(dst, stem), values); err != nil {
			return nil, err
		}
		rendered = append(rendered, stem)
	}
	return rendered, nil
}
