package knowledge

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Store persists a knowledge base.
//
// Implementations are not required to be safe for concurrent writers from
// separate processes: two writers saving the same prompt concurrently resolve
// as last-write-wins for that prompt's whole response map.
type Store interface {
	// Load returns the stored knowledge base. A missing or undecodable
	// backing resource is reported as *LoadError; any other failure is
	// returned as-is.
	Load() (*Knowledge, error)

	// Save re-reads the current stored state, merges partial into it at
	// prompt granularity (see Knowledge.Merge) and writes the result.
	Save(partial *Knowledge) error

	// Close releases the backing resource.
	Close() error
}

// LoadOrEmpty loads s, treating a missing or corrupt store as empty.
// Other errors (permissions, I/O) are returned.
func LoadOrEmpty(s Store) (*Knowledge, error) {
	return Recover(s.Load())
}

// Recover applies the LoadOrEmpty policy to the result of a Load call.
func Recover(k *Knowledge, err error) (*Knowledge, error) {
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			return New(), nil
		}
		return nil, err
	}
	if k == nil {
		return New(), nil
	}
	return k, nil
}

// Backend names accepted by Open.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
	BackendMemory = "memory"
)

// Backends lists the supported backend names.
var Backends = []string{BackendJSON, BackendSQLite, BackendBolt, BackendMemory}

// DefaultPath is the json store location used when none is configured.
const DefaultPath = "speakeasy_data.json"

// DefaultPathFor returns the store location used for backend when none is
// configured. Database backends get their own file so they never try to open
// a json store left in the working directory.
func DefaultPathFor(backend string) string {
	switch strings.ToLower(backend) {
	case BackendSQLite:
		return "speakeasy_data.db"
	case BackendBolt:
		return "speakeasy_data.bolt"
	case BackendMemory:
		return ":memory:"
	default:
		return DefaultPath
	}
}

// Options selects and locates a store backend.
type Options struct {
	Backend string
	Path    string
	Logger  *zap.Logger
}

// Open creates the store described by opts.
func Open(opts Options) (Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	path := opts.Path
	if path == "" {
		path = DefaultPathFor(opts.Backend)
	}

	switch strings.ToLower(opts.Backend) {
	case "", BackendJSON:
		return NewFileStore(path, logger), nil
	case BackendSQLite:
		return NewSQLiteStore(path, logger)
	case BackendBolt:
		return NewBoltStore(path, logger)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q (supported: %s)", opts.Backend, strings.Join(Backends, ", "))
	}
}
