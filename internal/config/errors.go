package config

import "fmt"

// PermissionError reports a config file the process may not read.
type PermissionError struct {
	Path    string
	Op      string // "read"
	Fix     string // suggested fix command
	Details string // current mode, when known
}

func (e *PermissionError) Error() string {
	msg := fmt.Sprintf("permission denied (cannot %s config): %s\n", e.Op, e.Path)
	if e.Details != "" {
		msg += e.Details + "\n"
	}
	return msg + "Fix: " + e.Fix
}

// ConfigNotFoundError reports an explicitly requested config file that does
// not exist. A missing default file is not an error.
type ConfigNotFoundError struct {
	Path string
	Hint string
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("config file not found: %s\n%s", e.Path, e.Hint)
}

// InvalidConfigError reports a config file that failed to parse or validate.
type InvalidConfigError struct {
	Path    string
	Message string
	Hint    string
}

func (e *InvalidConfigError) Error() string {
	msg := fmt.Sprintf("invalid config: %s", e.Path)
	if e.Message != "" {
		msg += "\n" + e.Message
	}
	if e.Hint != "" {
		msg += "\n" + e.Hint
	}
	return msg
}
