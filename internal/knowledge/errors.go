package knowledge

import (
	"errors"
	"fmt"
	"runtime"
)

// Sentinel errors matched by LoadError via errors.Is.
var (
	ErrNotFound = errors.New("knowledge store not found")
	ErrCorrupt  = errors.New("knowledge store is corrupt")
)

// LoadErrorKind classifies a recoverable load failure.
type LoadErrorKind int

const (
	// NotFound means the backing resource does not exist yet.
	NotFound LoadErrorKind = iota + 1

	// Corrupt means the backing resource exists but could not be decoded.
	Corrupt
)

func (k LoadErrorKind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case Corrupt:
		return "corrupt"
	default:
		return "unknown"
	}
}

// LoadError reports a missing or undecodable store. LoadOrEmpty maps it to
// an empty knowledge base; callers wanting stricter behavior can inspect it.
type LoadError struct {
	Kind LoadErrorKind
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	msg := fmt.Sprintf("knowledge store %s: %s", e.Kind, e.Path)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is matches ErrNotFound and ErrCorrupt by kind.
func (e *LoadError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == NotFound
	case ErrCorrupt:
		return e.Kind == Corrupt
	}
	return false
}

// PermissionError represents a permission-related store error
type PermissionError struct {
	Path string
	Op   string // "read" or "write"
	Fix  string // Suggested fix command
	Err  error
}

func (e *PermissionError) Error() string {
	msg := fmt.Sprintf("permission denied (cannot %s knowledge store): %s", e.Op, e.Path)
	if e.Fix != "" {
		msg += "\nFix: " + e.Fix
	}
	return msg
}

func (e *PermissionError) Unwrap() error {
	return e.Err
}

// permissionFix returns a platform-specific fix command
func permissionFix(path, op string) string {
	if runtime.GOOS == "windows" {
		return fmt.Sprintf("Right-click %s → Properties → Security → Grant '%s' permission", path, op)
	}
	if op == "read" {
		return fmt.Sprintf("Run: chmod u+r %s", path)
	}
	return fmt.Sprintf("Run: chmod u+w %s", path)
}
