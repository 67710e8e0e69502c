package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Totarae/shortlinks/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(mode string) *config.Config {
	return &config.Config{
		ServerAddress:  "localhost:0",
		BaseURL:        "http://localhost:8080",
		Mode:           mode,
		RequestTimeout: time.Second,
		CodeLength:     8,
	}
}

func TestNewApp_Modes(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		cfg  func() *config.Config
	}{
		{"memory", func() *config.Config { return testConfig(config.ModeMemory) }},
		{"file", func() *config.Config {
			cfg := testConfig(config.ModeFile)
			cfg.FileStoragePath = filepath.Join(dir, "links.json")
			return cfg
		}},
		{"sqlite", func() *config.Config {
			cfg := testConfig(config.ModeSQLite)
			cfg.SQLitePath = filepath.Join(dir, "links.db")
			return cfg
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := newApp(context.Background(), tt.cfg(), zap.NewNop())
			require.NoError(t, err)
			defer a.Close()

			req := httptest.NewRequest(http.MethodPost, "/api/links", strings.NewReader(`{"longUrl":"https://example.com","code":"main01"}`))
			rec := httptest.NewRecorder()
			a.Router.ServeHTTP(rec, req)
			require.Equal(t, http.StatusCreated, rec.Code)

			req = httptest.NewRequest(http.MethodGet, "/main01", nil)
			rec = httptest.NewRecorder()
			a.Router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, "https://example.com", rec.Header().Get("Location"))

			req = httptest.NewRequest(http.MethodGet, "/ping", nil)
			rec = httptest.NewRecorder()
			a.Router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestNewApp_FileJournalSurvivesRestart(t *testing.T) {
	cfg := testConfig(config.ModeFile)
	cfg.FileStoragePath = filepath.Join(t.TempDir(), "links.json")

	a, err := newApp(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	_, err = a.Links.Create(context.Background(), "https://example.com/kept", "kept01")
	require.NoError(t, err)
	a.Close()

	a, err = newApp(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	link, err := a.Links.Get(context.Background(), "kept01")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/kept", link.LongURL)
}

func TestNewApp_FileStorageError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json\n"), 0o644))

	cfg := testConfig(config.ModeFile)
	cfg.FileStoragePath = path

	_, err := newApp(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := testConfig(config.ModeMemory)
	cfg.ServerAddress = "127.0.0.1:0"
	cfg.GRPCAddress = "127.0.0.1:0"

	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg, zap.NewNop()) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}
