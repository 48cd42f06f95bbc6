package config

import "testing"

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"memory without path", func(c *Config) { c.Store.Backend = "memory"; c.Store.Path = "" }, false},
		{"json without path", func(c *Config) { c.Store.Path = "" }, false},
		{"blank path", func(c *Config) { c.Store.Path = " " }, true},
		{"uppercase backend", func(c *Config) { c.Store.Backend = "BOLT" }, false},
		{"unknown backend", func(c *Config) { c.Store.Backend = "csv" }, true},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, true},
		{"bad level", func(c *Config) { c.Log.Level = "verbose" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStoreOptions(t *testing.T) {
	cfg := NewConfig()
	cfg.Store.Backend = "sqlite"
	cfg.Store.Path = "kb.db"

	opts := cfg.StoreOptions()
	if opts.Backend != "sqlite" || opts.Path != "kb.db" {
		t.Errorf("StoreOptions() = %+v", opts)
	}
}

func TestStorePathDefaultsPerBackend(t *testing.T) {
	tests := map[string]string{
		"json":   "speakeasy_data.json",
		"sqlite": "speakeasy_data.db",
		"bolt":   "speakeasy_data.bolt",
		"memory": ":memory:",
	}
	for backend, want := range tests {
		cfg := NewConfig()
		cfg.Store.Backend = backend
		if got := cfg.StorePath(); got != want {
			t.Errorf("StorePath() for %s = %q, want %q", backend, got, want)
		}
		if got := cfg.StoreOptions().Path; got != want {
			t.Errorf("StoreOptions().Path for %s = %q, want %q", backend, got, want)
		}
	}

	cfg := NewConfig()
	cfg.Store.Backend = "sqlite"
	cfg.Store.Path = "custom.db"
	if got := cfg.StorePath(); got != "custom.db" {
		t.Errorf("StorePath() = %q, want configured path", got)
	}
}
