package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"oembed/internal/config"
	"oembed/internal/logger"
	"oembed/internal/lookup"
	"oembed/internal/shutdown"
	"oembed/internal/transport"
	"oembed/internal/web"
	"oembed/pkg/oembed"
)

var (
	configPath string
	port       int
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "oembed-web",
	Short:         "Serve oEmbed lookups over HTTP",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfigFile(configPath)
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		if cmd.Flags().Changed("port") {
			cfg.Port = port
		}
		if cmd.Flags().Changed("verbose") {
			cfg.Verbose = verbose
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
		return serve(cfg)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.Flags().IntVar(&port, "port", 8080, "HTTP server port")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func serve(cfg config.Config) error {
	l := logger.New(cfg.Verbose)
	if logPath, err := l.OpenLogFile(config.GetDefaultLogPath(), "oembed-web"); err != nil {
		l.Warn("Failed to setup file logging: %v", err)
	} else {
		l.Debug("Logging to file: %s", logPath)
	}

	sh := shutdown.New(15*time.Second, l)
	sh.AddCleanup("log file", func(ctx context.Context) error { return l.Close() })
	sh.Listen()

	client := transport.New(cfg.Timeout(), cfg.UserAgent)
	schema, source, err := lookup.LoadSchema(sh.Context(), cfg, client, l)
	if err != nil {
		sh.Shutdown()
		return err
	}
	l.Info("Loaded %d providers from %s", schema.Len(), source)

	svc := lookup.New(schema, client, oembed.Options{MaxWidth: cfg.MaxWidth, MaxHeight: cfg.MaxHeight}, l)

	jobMgr := web.NewJobManager()
	jobMgr.StartCleanup(sh.Context())
	server := web.NewServer(sh.Context(), svc, jobMgr, cfg, l)

	// WriteTimeout stays 0 so WebSocket connections are not cut off.
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	sh.AddCleanup("http server", func(ctx context.Context) error {
		l.Info("Shutting down server...")
		return httpServer.Shutdown(ctx)
	})

	l.Info("Starting web server on port %d", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		sh.Shutdown()
		return fmt.Errorf("server error: %w", err)
	}

	<-sh.Done()
	l.Info("Server stopped")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(1)
	}
}
