/*
Package cli implements the speakeasy command-line interface.

Every command resolves configuration the same way: the YAML config file and
SPEAKEASY_* environment variables are loaded first, then the global
--store/--backend/--log-level flags override them.
*/
package cli

import (
	"fmt"

	"github.com/khanglvm/speakeasy/internal/config"
	"github.com/khanglvm/speakeasy/internal/engine"
	"github.com/khanglvm/speakeasy/internal/knowledge"
	"github.com/khanglvm/speakeasy/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// GlobalOptions holds the persistent flags shared by every command.
type GlobalOptions struct {
	ConfigPath string
	StorePath  string
	Backend    string
	LogLevel   string
}

// NewRootCmd creates the speakeasy root command with all subcommands.
func NewRootCmd() *cobra.Command {
	opts := &GlobalOptions{}

	rootCmd := &cobra.Command{
		Use:   "speakeasy",
		Short: "Statistical chat-response engine that learns from scored examples",
		Long: `speakeasy learns scored (prompt, response) examples and replies to new
prompts with the response most likely to succeed.

A reply pools every learned prompt that contains any substring of the input,
scores each candidate response with Laplace smoothing, (score+1)/(trials+2),
and prefers candidates found through longer substrings on ties. With nothing
learned, the prompt is echoed back.`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "Config file (default ~/.config/speakeasy/config.yaml)")
	flags.StringVarP(&opts.StorePath, "store", "s", "", "Knowledge store path (default speakeasy_data.json)")
	flags.StringVarP(&opts.Backend, "backend", "b", "", "Knowledge store backend: json, sqlite, bolt, memory")
	flags.StringVar(&opts.LogLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(NewLearnCmd(opts))
	rootCmd.AddCommand(NewReplyCmd(opts))
	rootCmd.AddCommand(NewChatCmd(opts))
	rootCmd.AddCommand(NewImportCmd(opts))
	rootCmd.AddCommand(NewExportCmd(opts))
	rootCmd.AddCommand(NewStatsCmd(opts))
	rootCmd.AddCommand(NewServeCmd(opts))
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// session bundles everything a command needs to talk to the knowledge store.
type session struct {
	cfg    *config.Config
	logger *zap.Logger
	store  knowledge.Store
	engine *engine.Engine
}

// openSession resolves configuration, builds the logger and opens the store.
func (o *GlobalOptions) openSession() (*session, error) {
	cfg, err := o.resolveConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return nil, err
	}

	storeOpts := cfg.StoreOptions()
	storeOpts.Logger = logger.Named("store")
	store, err := knowledge.Open(storeOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open knowledge store: %w", err)
	}

	logger.Debug("session opened",
		zap.String("backend", cfg.Store.Backend),
		zap.String("path", cfg.StorePath()),
	)

	return &session{
		cfg:    cfg,
		logger: logger,
		store:  store,
		engine: engine.New(store, logger.Named("engine")),
	}, nil
}

// resolveConfig loads config and applies flag overrides.
func (o *GlobalOptions) resolveConfig() (*config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, err
	}

	if o.StorePath != "" {
		cfg.Store.Path = o.StorePath
	}
	if o.Backend != "" {
		cfg.Store.Backend = o.Backend
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.logger.Warn("failed to close knowledge store", zap.Error(err))
	}
	_ = s.logger.Sync()
}
