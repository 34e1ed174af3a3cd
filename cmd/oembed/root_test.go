package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"oembed/internal/config"
)

const testConfigFile = `providers_file: /etc/oembed/providers.json
max_width: 480
timeout_seconds: 30
verbose: true
output: json
`

func TestLoadConfigPrecedence(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	file := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(file, []byte(testConfigFile), 0600); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, cfg config.Config)
	}{
		{
			name: "defaults",
			args: []string{"--config", missing},
			check: func(t *testing.T, cfg config.Config) {
				want := config.DefaultConfig()
				if cfg.ProvidersFile != "" || cfg.MaxWidth != 0 || cfg.TimeoutSeconds != want.TimeoutSeconds ||
					cfg.Verbose || cfg.Output != "text" {
					t.Errorf("cfg = %+v, want defaults", cfg)
				}
			},
		},
		{
			name: "file beats defaults",
			args: []string{"--config", file},
			check: func(t *testing.T, cfg config.Config) {
				if cfg.ProvidersFile != "/etc/oembed/providers.json" || cfg.MaxWidth != 480 ||
					cfg.TimeoutSeconds != 30 || !cfg.Verbose || cfg.Output != "json" {
					t.Errorf("cfg = %+v, want file values", cfg)
				}
			},
		},
		{
			name: "flags beat file",
			args: []string{"--config", file, "--providers", "/tmp/list.json", "--maxwidth", "320",
				"--timeout", "5", "--verbose=false", "--json=false"},
			check: func(t *testing.T, cfg config.Config) {
				if cfg.ProvidersFile != "/tmp/list.json" || cfg.MaxWidth != 320 ||
					cfg.TimeoutSeconds != 5 || cfg.Verbose || cfg.Output != "text" {
					t.Errorf("cfg = %+v, want flag values", cfg)
				}
			},
		},
		{
			name: "flags beat defaults",
			args: []string{"--config", missing, "--maxheight", "200", "-v", "--json"},
			check: func(t *testing.T, cfg config.Config) {
				if cfg.MaxHeight != 200 || !cfg.Verbose || cfg.Output != "json" {
					t.Errorf("cfg = %+v, want flag values", cfg)
				}
			},
		},
		{
			name: "unset flags keep file values",
			args: []string{"--config", file, "--maxheight", "90"},
			check: func(t *testing.T, cfg config.Config) {
				if cfg.MaxHeight != 90 || cfg.MaxWidth != 480 || cfg.Output != "json" {
					t.Errorf("cfg = %+v", cfg)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{Use: "oembed"}
			registerFlags(cmd)
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatalf("ParseFlags() error: %v", err)
			}

			cfg, _, err := loadConfig(cmd)
			if err != nil {
				t.Fatalf("loadConfig() error: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestLoadConfigRejectsInvalidFlags(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cmd := &cobra.Command{Use: "oembed"}
	registerFlags(cmd)
	args := []string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "--timeout", "0"}
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags() error: %v", err)
	}
	if _, _, err := loadConfig(cmd); err == nil {
		t.Error("loadConfig() accepted a zero timeout")
	}
}
