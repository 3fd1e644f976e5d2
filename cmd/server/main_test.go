package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdc-tracking/backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, edit func(*config.AppConfig)) string {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Server.BindAddress = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Storage.DataDirectory = filepath.Join(dir, "data")
	cfg.Storage.ExportsDirectory = filepath.Join(dir, "data", "exports")
	cfg.Advanced.LogFile = filepath.Join(dir, "server.log")
	cfg.Advanced.EnableRequestLogging = false
	if edit != nil {
		edit(cfg)
	}

	path := filepath.Join(dir, "PDCTracking.config")
	require.NoError(t, cfg.Save(path))
	return path
}

func TestRun_StartupErrors(t *testing.T) {
	tests := []struct {
		name string
		edit func(*config.AppConfig)
		want string
	}{
		{"bad rollup engine", func(c *config.AppConfig) { c.Processing.RollupEngine = "spark" }, "unknown rollup engine"},
		{"bad status scheme", func(c *config.AppConfig) { c.Fleet.StatusScheme = "seven" }, "load status table"},
		{"missing roster", func(c *config.AppConfig) { c.Storage.RosterFile = "/nonexistent/roster.yaml" }, "load roster"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.edit)

			err := run(context.Background(), path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)

			// the log file was opened before the failure and is left on disk
			_, statErr := os.Stat(filepath.Join(filepath.Dir(path), "server.log"))
			assert.NoError(t, statErr)
		})
	}
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	path := writeConfig(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, run(ctx, path))

	_, err := os.Stat(filepath.Join(filepath.Dir(path), "data", "exports"))
	assert.NoError(t, err)
}

func TestSplitOrigins(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"*", []string{"*"}},
		{"http://a.example, http://b.example ,", []string{"http://a.example", "http://b.example"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, splitOrigins(tt.in), tt.in)
	}
}
