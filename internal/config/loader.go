package config

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "SPEAKEASY_"

	maxConfigFileSize = 1024 * 1024 // 1MB
)

// Load reads configuration from path, then applies environment overrides.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (SPEAKEASY_STORE_BACKEND, SPEAKEASY_LOG_LEVEL, ...)
//  2. YAML config file
//  3. Defaults
//
// An empty path means the default location, which may be absent. An explicit
// path that does not exist is an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	explicit := path != ""
	if !explicit {
		defaultPath, err := GetDefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	content, err := readConfigFile(path, explicit)
	if err != nil {
		return nil, err
	}
	if content != nil {
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, &InvalidConfigError{
				Path:    path,
				Message: fmt.Sprintf("YAML parse error: %v", err),
				Hint:    "Check indentation and key names against the documented schema",
			}
		}
	}

	// SPEAKEASY_STORE_PATH -> store.path, SPEAKEASY_LOG_LEVEL -> log.level
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, &InvalidConfigError{Path: path, Message: err.Error()}
	}

	return &cfg, nil
}

// envKey maps SPEAKEASY_SECTION_FIELD_NAME to section.field_name.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower
	}
	return parts[0] + "." + parts[1]
}

// readConfigFile returns the file contents, or nil when an implicit default
// file does not exist.
func readConfigFile(path string, explicit bool) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		switch {
		case os.IsNotExist(err):
			if !explicit {
				return nil, nil
			}
			return nil, &ConfigNotFoundError{
				Path: path,
				Hint: "Create the file or omit --config to use defaults",
			}
		case os.IsPermission(err):
			return nil, &PermissionError{
				Path:    path,
				Op:      "read",
				Fix:     getReadPermissionFix(path),
				Details: getPermissionDetails(path),
			}
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.IsDir() {
		return nil, &InvalidConfigError{Path: path, Message: "path is a directory"}
	}
	if info.Size() > maxConfigFileSize {
		return nil, &InvalidConfigError{
			Path:    path,
			Message: fmt.Sprintf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize),
		}
	}

	content, err := io.ReadAll(io.LimitReader(f, maxConfigFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}

// getReadPermissionFix returns platform-specific fix command
func getReadPermissionFix(path string) string {
	switch runtime.GOOS {
	case "windows":
		return fmt.Sprintf("Right-click %s → Properties → Security → Edit permissions", path)
	default: // unix-like
		return fmt.Sprintf("Run: chmod 644 %s", path)
	}
}

// getPermissionDetails checks file ownership and permissions
func getPermissionDetails(path string) string {
	if runtime.GOOS == "windows" {
		return ""
	}

	info, err := os.Stat(path)
	if err != nil {
		return ""
	}

	return fmt.Sprintf("Current permissions: %04o", info.Mode().Perm())
}
