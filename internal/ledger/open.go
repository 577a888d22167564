package ledger

import (
	"fmt"

	"go.uber.org/zap"
)

// Backend names accepted by Open
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Options selects and locates a ledger backend
type Options struct {
	Backend string
	Path    string
}

// Open returns the Store described by opts
func Open(opts Options, log *zap.Logger) (Store, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("ledger path is empty")
	}

	switch opts.Backend {
	case "", BackendJSON:
		return NewJSONStore(opts.Path, log), nil
	case BackendSQLite:
		return NewSQLiteStore(opts.Path, log)
	default:
		return nil, fmt.Errorf("unknown ledger backend: %s", opts.Backend)
	}
}
