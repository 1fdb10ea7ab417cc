package descriptor

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrDescriptorFieldNotFound is returned when no line introduces the key.
	ErrDescriptorFieldNotFound = errors.New("descriptor field not found")

	// ErrDescriptorFieldAmbiguous is returned when more than one line introduces the key.
	ErrDescriptorFieldAmbiguous = errors.New("descriptor field is ambiguous")
)

// scalarPattern is a double-quoted, single-quoted or plain scalar. A ` #`
// inside quotes belongs to the value. Plain scalars are lazy so that a
// trailing ` # comment` is never swallowed.
const scalarPattern = `"(?:[^"\\\n]|\\.)*"|'(?:[^'\n]|'')*'|[^\s#"'][^\n]*?`

// fieldPattern matches `<indent><key>:<sep><value><comment><trail>` on a single line.
func fieldPattern(key string) *regexp.Regexp {
	return regexp.MustCompile(`(?m)^([ \t]*)(` + regexp.QuoteMeta(key) + `:)([ \t]*)(` + scalarPattern + `)?([ \t]+#[^\n]*)?([ \t\r]*)$`)
}

// SetField replaces the value of key in text and returns the updated text.
// Indentation, the whitespace after the colon and any trailing comment are
// preserved. Lines that do not introduce key are never touched.
func SetField(text, key, value string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("%w: empty key", ErrDescriptorFieldNotFound)
	}

	re := fieldPattern(key)
	matches := re.FindAllStringSubmatchIndex(text, -1)
	switch {
	case len(matches) == 0:
		return "", fmt.Errorf("%w: %s", ErrDescriptorFieldNotFound, key)
	case len(matches) > 1:
		return "", fmt.Errorf("%w: %s appears on %d lines", ErrDescriptorFieldAmbiguous, key, len(matches))
	}

	m := matches[0]
	group := func(i int) string {
		if m[2*i] < 0 {
			return ""
		}
		return text[m[2*i]:m[2*i+1]]
	}

	sep := group(3)
	if sep == "" {
		sep = " "
	}

	var b strings.Builder
	b.Grow(len(text) + len(value))
	b.WriteString(text[:m[0]])
	b.WriteString(group(1))
	b.WriteString(group(2))
	b.WriteString(sep)
	b.WriteString(value)
	b.WriteString(group(5))
	b.WriteString(group(6))
	b.WriteString(text[m[1]:])
	return b.String(), nil
}

// FormatValue renders v as a single-line YAML scalar suitable for SetField.
func FormatValue(v any) (string, error) {
	out, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to format value: %w", err)
	}
	s := strings.TrimSuffix(string(out), "\n")
	if strings.Contains(s, "\n") {
		return "", fmt.Errorf("value %v does not fit on a single line", v)
	}
	return s, nil
}
