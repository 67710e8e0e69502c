package handlers_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Totarae/shortlinks/internal/handlers"
	"github.com/Totarae/shortlinks/internal/router"
	"github.com/Totarae/shortlinks/internal/service"
	"github.com/Totarae/shortlinks/internal/storage"
	"github.com/Totarae/shortlinks/internal/util"
	"go.uber.org/zap"
)

func setupBenchRouter(b *testing.B) (http.Handler, *service.LinkService) {
	b.Helper()
	logger := zap.NewNop()
	svc := service.NewLinkService(storage.NewMemoryStore(), util.NewCodeGenerator(8), logger, time.Second)
	h := handlers.NewHandler(svc, "http://localhost:8080", "", logger)
	return router.NewRouter(h, logger), svc
}

func BenchmarkCreateLink(b *testing.B) {
	r, _ := setupBenchRouter(b)
	body := `{"longUrl": "https://example.com/benchmark"}`

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/links", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
	}
}

func BenchmarkRedirect(b *testing.B) {
	r, svc := setupBenchRouter(b)
	if _, err := svc.Create(context.Background(), "https://example.com", "bench1"); err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bench1", nil))
		if rec.Code != http.StatusFound {
			b.Fatalf("unexpected status %d", rec.Code)
		}
	}
}

func BenchmarkListLinks(b *testing.B) {
	r, svc := setupBenchRouter(b)
	for i := 0; i < 100; i++ {
		if _, err := svc.Create(context.Background(), fmt.Sprintf("https://example.com/%d", i), ""); err != nil {
			b.Fatal(err)
		}
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/links", nil))
	}
}
