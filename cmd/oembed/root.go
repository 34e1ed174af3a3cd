package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"oembed/internal/config"
	"oembed/internal/logger"
	"oembed/internal/lookup"
	"oembed/internal/shutdown"
	"oembed/internal/transport"
	"oembed/pkg/oembed"
)

var (
	configPath    string
	providersFile string
	providersURL  string
	fetchLatest   bool
	maxWidth      int
	maxHeight     int
	verbose       bool
	timeout       int
	jsonOutput    bool
)

var rootCmd = &cobra.Command{
	Use:   "oembed [url...]",
	Short: "Look up oEmbed representations of URLs",
	Long: `Look up oEmbed representations of URLs using the provider registry.

Exit status is 0 when every lookup succeeded, 2 when a URL has no provider
and 1 when a provider request failed.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.close()
		return runLookups(a, args)
	},
}

func init() {
	registerFlags(rootCmd)
}

// registerFlags binds the global flags to cmd and resets them to defaults.
func registerFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "config file path")
	pf.StringVar(&providersFile, "providers", "", "provider list file (default: bundled list)")
	pf.StringVar(&providersURL, "providers-url", "", "load the provider list from this URL")
	pf.BoolVar(&fetchLatest, "latest", false, "load the current provider list from oembed.com")
	pf.IntVar(&maxWidth, "maxwidth", 0, "maximum embed width")
	pf.IntVar(&maxHeight, "maxheight", 0, "maximum embed height")
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	pf.IntVar(&timeout, "timeout", 0, "provider request timeout in seconds")
	pf.BoolVar(&jsonOutput, "json", false, "print JSON")
}

// app holds what every subcommand needs.
type app struct {
	cfg    config.Config
	log    *logger.Logger
	client *transport.Client
	svc    *lookup.Service
	sh     *shutdown.Handler
}

func (a *app) close() {
	a.sh.Shutdown()
}

// loadConfig reads the config file and applies command-line overrides.
// Priority: CLI flags > config file > defaults
func loadConfig(cmd *cobra.Command) (config.Config, string, error) {
	path := configPath
	if path == "" {
		path = config.FindConfigFile()
	}
	cfg, err := config.LoadConfigFile(path)
	if err != nil {
		return config.Config{}, "", fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("providers") {
		cfg.ProvidersFile = config.ExpandHome(providersFile)
	}
	if flags.Changed("providers-url") {
		cfg.ProvidersURL = providersURL
	}
	if flags.Changed("latest") {
		cfg.FetchLatest = fetchLatest
	}
	if flags.Changed("maxwidth") {
		cfg.MaxWidth = maxWidth
	}
	if flags.Changed("maxheight") {
		cfg.MaxHeight = maxHeight
	}
	if flags.Changed("verbose") {
		cfg.Verbose = verbose
	}
	if flags.Changed("timeout") {
		cfg.TimeoutSeconds = timeout
	}
	if flags.Changed("json") {
		cfg.Output = "text"
		if jsonOutput {
			cfg.Output = "json"
		}
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, "", fmt.Errorf("configuration error: %w", err)
	}
	return cfg, path, nil
}

func setup(cmd *cobra.Command) (*app, error) {
	cfg, path, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	// stdout carries results only.
	log := logger.NewWithWriters(cfg.Verbose, os.Stderr, os.Stderr)
	sh := shutdown.New(5*time.Second, log)
	sh.AddCleanup("log file", func(ctx context.Context) error { return log.Close() })
	sh.Listen()

	if !cfg.Verbose {
		if logFile, err := log.OpenLogFile(config.GetDefaultLogPath(), "oembed"); err != nil {
			log.Warn("Failed to setup file logging: %v", err)
		} else {
			log.Debug("Logging to file: %s", logFile)
		}
	}
	if path != "" {
		log.Debug("Loaded configuration from: %s", path)
	}

	client := transport.New(cfg.Timeout(), cfg.UserAgent)
	schema, source, err := lookup.LoadSchema(sh.Context(), cfg, client, log)
	if err != nil {
		sh.Shutdown()
		return nil, err
	}
	log.Debug("Loaded %d providers from %s", schema.Len(), source)

	opts := oembed.Options{MaxWidth: cfg.MaxWidth, MaxHeight: cfg.MaxHeight}
	return &app{
		cfg:    cfg,
		log:    log,
		client: client,
		svc:    lookup.New(schema, client, opts, log),
		sh:     sh,
	}, nil
}
