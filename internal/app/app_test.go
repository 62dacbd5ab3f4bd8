package app

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajith05/url-shortener/internal/config"
)

func TestNewLogger_Level(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"warn", false, false},
		{"bogus", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := NewLogger(&bytes.Buffer{}, tt.level)
			ctx := context.Background()

			assert.Equal(t, tt.wantDebug, logger.Enabled(ctx, slog.LevelDebug))
			assert.Equal(t, tt.wantInfo, logger.Enabled(ctx, slog.LevelInfo))
		})
	}
}

func TestOpenRepository_SQLite(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "info")

	cfg := &config.Config{
		Database:  config.DatabaseConfig{Driver: config.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "links.db")},
		Shortener: config.ShortenerConfig{Strategy: "hashed", MaxAttempts: 3},
	}

	ctx := context.Background()
	repo, closeStore, err := OpenRepository(ctx, cfg, logger)
	require.NoError(t, err)
	defer closeStore()

	require.NoError(t, repo.InitSchema(ctx))

	svc := NewService(cfg, repo, logger)
	first, err := svc.Create(ctx, "https://example.com/a?x=1")
	require.NoError(t, err)
	second, err := svc.Create(ctx, "https://example.com/a?x=1")
	require.NoError(t, err)

	assert.Equal(t, first.Link.Code, second.Link.Code)
	assert.True(t, second.Existing)

	target, err := svc.Resolve(ctx, first.Link.Code)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a?x=1", target)

	assert.True(t, strings.Contains(buf.String(), "opening sqlite store"))
}

func TestOpenRepository_BadPostgresURL(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseConfig{Driver: config.DriverPostgres, URL: "://not a url", MaxConns: 1},
	}

	_, _, err := OpenRepository(context.Background(), cfg, NewLogger(&bytes.Buffer{}, "error"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse database config")
}
