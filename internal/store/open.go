package store

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
)

const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Open builds the Store named by backend. The returned close func is never nil.
func Open(ctx context.Context, backend, path string, logger *log.Logger) (Store, func() error, error) {
	noop := func() error { return nil }

	switch backend {
	case BackendMemory:
		return NewMemory(), noop, nil
	case BackendFile:
		f, err := NewFile(path, logger)
		if err != nil {
			return nil, noop, err
		}
		return f, noop, nil
	case BackendSQLite:
		s, err := NewSQLite(ctx, path, logger)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	}
	return nil, noop, fmt.Errorf("unknown store backend %q", backend)
}
