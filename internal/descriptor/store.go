package descriptor

import (
	"errors"
	"fmt"
	"os"

	"github.com/imamik/talhybrid/internal/config"
	"github.com/imamik/talhybrid/internal/util/fileutil"
)

// ErrDescriptorParseFailure is returned when the descriptor cannot be
// loaded, either at start or after a field update.
var ErrDescriptorParseFailure = errors.New("descriptor parse failure")

// Store owns the descriptor file for the duration of a run. It is the only
// writer; concurrent runs against the same file are not supported.
type Store struct {
	path       string
	descriptor *config.Descriptor
}

// Open loads the descriptor at path.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the descriptor file path.
func (s *Store) Path() string {
	return s.path
}

// Descriptor returns the most recently loaded descriptor.
func (s *Store) Descriptor() *config.Descriptor {
	return s.descriptor
}

// Reload re-reads the descriptor from disk.
func (s *Store) Reload() error {
	d, err := config.LoadDescriptor(s.path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDescriptorParseFailure, s.path, err)
	}
	s.descriptor = d
	return nil
}

// Set writes value into key and reloads the descriptor so later steps of
// the same run observe it. An update that would leave an unparseable
// descriptor is rejected and the file is left as it was.
func (s *Store) Set(key string, value any) error {
	formatted, err := FormatValue(value)
	if err != nil {
		return fmt.Errorf("field %s: %w", key, err)
	}

	// #nosec G304
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read descriptor: %w", err)
	}

	updated, err := SetField(string(data), key, formatted)
	if err != nil {
		return err
	}

	if updated == string(data) {
		return s.Reload()
	}

	d, err := config.ParseDescriptor([]byte(updated))
	if err != nil {
		return fmt.Errorf("%w: setting %s: %w", ErrDescriptorParseFailure, key, err)
	}
	if err := fileutil.WriteFileAtomic(s.path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("failed to write descriptor: %w", err)
	}
	s.descriptor = d
	return nil
}
