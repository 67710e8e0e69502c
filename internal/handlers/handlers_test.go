package handlers_test

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Totarae/shortlinks/internal/handlers"
	"github.com/Totarae/shortlinks/internal/model"
	"github.com/Totarae/shortlinks/internal/router"
	"github.com/Totarae/shortlinks/internal/service"
	"github.com/Totarae/shortlinks/internal/storage"
	"github.com/Totarae/shortlinks/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testBaseURL     = "http://localhost:8080"
	testFrontendURL = "http://localhost:5173"
)

func newTestServer(t testing.TB) *httptest.Server {
	t.Helper()
	logger := zap.NewNop()
	svc := service.NewLinkService(storage.NewMemoryStore(), util.NewCodeGenerator(8), logger, time.Second)
	h := handlers.NewHandler(svc, testBaseURL, testFrontendURL, logger)
	srv := httptest.NewServer(router.NewRouter(h, logger))
	t.Cleanup(srv.Close)
	return srv
}

func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}
}

func createLink(t *testing.T, srv *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+"/api/links", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestCreateLink_CustomCode(t *testing.T) {
	srv := newTestServer(t)

	resp := createLink(t, srv, `{"longUrl":"https://example.com","code":"abc123"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var created model.CreateLinkResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, "abc123", created.Code)
	assert.Equal(t, "https://example.com", created.LongURL)
	assert.Equal(t, testBaseURL+"/abc123", created.ShortURL)

	var got map[string]any
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/links/abc123", &got))
	assert.EqualValues(t, 0, got["clicks"])
	assert.Nil(t, got["last_clicked"])
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`, got["created_at"])
}

func TestCreateLink_GeneratedCode(t *testing.T) {
	srv := newTestServer(t)

	resp := createLink(t, srv, `{"longUrl":"http://example.com/some/long/path"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created model.CreateLinkResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Regexp(t, `^[A-Za-z0-9]{8}$`, created.Code)
}

func TestCreateLink_BadRequests(t *testing.T) {
	srv := newTestServer(t)

	tests := map[string]string{
		"ftp scheme":      `{"longUrl":"ftp://bad"}`,
		"no scheme":       `{"longUrl":"example.com"}`,
		"missing url":     `{}`,
		"short code":      `{"longUrl":"https://example.com","code":"ab1"}`,
		"long code":       `{"longUrl":"https://example.com","code":"abcdefghi"}`,
		"symbol in code":  `{"longUrl":"https://example.com","code":"abc-12"}`,
		"malformed json":  `{"longUrl":`,
		"wrong json type": `{"longUrl": 42}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			resp := createLink(t, srv, body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var e model.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
			assert.NotEmpty(t, e.Error)
		})
	}

	var links []model.LinkResponse
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/links", &links))
	assert.Empty(t, links, "rejected requests must not persist anything")
}

func TestCreateLink_Conflict(t *testing.T) {
	srv := newTestServer(t)

	first := createLink(t, srv, `{"longUrl":"https://example.com","code":"abc123"}`)
	require.Equal(t, http.StatusCreated, first.StatusCode)

	second := createLink(t, srv, `{"longUrl":"https://example.org","code":"abc123"}`)
	assert.Equal(t, http.StatusConflict, second.StatusCode)

	var links []model.LinkResponse
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/links", &links))
	require.Len(t, links, 1)
	assert.Equal(t, "https://example.com", links[0].LongURL)
}

func TestCreateLink_ConcurrentSameCode(t *testing.T) {
	srv := newTestServer(t)

	const n = 10
	statuses := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := http.Post(srv.URL+"/api/links", "application/json",
				strings.NewReader(`{"longUrl":"https://example.com","code":"same01"}`))
			if err != nil {
				statuses <- 0
				return
			}
			resp.Body.Close()
			statuses <- resp.StatusCode
		}()
	}
	wg.Wait()
	close(statuses)

	counts := map[int]int{}
	for s := range statuses {
		counts[s]++
	}
	assert.Equal(t, 1, counts[http.StatusCreated])
	assert.Equal(t, n-1, counts[http.StatusConflict])
}

func TestListLinks_NewestFirst(t *testing.T) {
	srv := newTestServer(t)

	for _, code := range []string{"first1", "second", "third3"} {
		resp := createLink(t, srv, fmt.Sprintf(`{"longUrl":"https://example.com/%s","code":%q}`, code, code))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	var links []model.LinkResponse
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/links", &links))
	require.Len(t, links, 3)
	assert.Equal(t, "third3", links[0].Code)
	assert.Equal(t, "first1", links[2].Code)
	assert.Equal(t, testBaseURL+"/third3", links[0].ShortURL)
}

func TestListLinks_EmptyIsArray(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/links")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(body))
}

func TestRedirect_CountsClicks(t *testing.T) {
	srv := newTestServer(t)
	client := noRedirectClient()

	resp := createLink(t, srv, `{"longUrl":"https://example.com","code":"abc123"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	redirect, err := client.Get(srv.URL + "/abc123")
	require.NoError(t, err)
	redirect.Body.Close()
	assert.Equal(t, http.StatusFound, redirect.StatusCode)
	assert.Equal(t, "https://example.com", redirect.Header.Get("Location"))

	var got model.LinkResponse
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/links/abc123", &got))
	assert.EqualValues(t, 1, got.Clicks)
	require.NotNil(t, got.LastClicked)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`, *got.LastClicked)
}

func TestRedirect_ConcurrentClicks(t *testing.T) {
	srv := newTestServer(t)
	client := noRedirectClient()

	resp := createLink(t, srv, `{"longUrl":"https://example.com","code":"hot123"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := client.Get(srv.URL + "/hot123")
			if assert.NoError(t, err) {
				r.Body.Close()
				assert.Equal(t, http.StatusFound, r.StatusCode)
			}
		}()
	}
	wg.Wait()

	var got model.LinkResponse
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/links/hot123", &got))
	assert.EqualValues(t, n, got.Clicks)
}

func TestRedirect_UnknownCodeRendersHTML(t *testing.T) {
	srv := newTestServer(t)

	resp, err := noRedirectClient().Get(srv.URL + "/nope1234")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Page Not Found")
	assert.Contains(t, string(body), testFrontendURL)
}

func TestDeleteLink(t *testing.T) {
	srv := newTestServer(t)
	resp := createLink(t, srv, `{"longUrl":"https://example.com","code":"abc123"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	del := func() int {
		req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/links/abc123", nil)
		require.NoError(t, err)
		r, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer r.Body.Close()
		body, _ := io.ReadAll(r.Body)
		if r.StatusCode == http.StatusNoContent {
			assert.Empty(t, body)
		}
		return r.StatusCode
	}

	assert.Equal(t, http.StatusNoContent, del())
	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/api/links/abc123", nil))
	assert.Equal(t, http.StatusNotFound, del())

	redirect, err := noRedirectClient().Get(srv.URL + "/abc123")
	require.NoError(t, err)
	redirect.Body.Close()
	assert.Equal(t, http.StatusNotFound, redirect.StatusCode)
}

func TestGetLink_NotFoundIsJSON(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/links/nope1234")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var e model.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	assert.Equal(t, "Link not found", e.Error)
}

func TestHealthzAndPing(t *testing.T) {
	srv := newTestServer(t)

	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/healthz", nil))
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/ping", nil))
}

func TestCreateLink_GzipRequest(t *testing.T) {
	srv := newTestServer(t)

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, _ = zw.Write([]byte(`{"longUrl":"https://example.com","code":"gzip01"}`))
	require.NoError(t, zw.Close())

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/links", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Encoding", "gzip")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

// failingService имитирует недоступное хранилище.
type failingService struct{}

func (failingService) Create(context.Context, string, string) (*model.Link, error) {
	return nil, fmt.Errorf("%w: insert: connection refused", service.ErrStorage)
}
func (failingService) List(context.Context) ([]*model.Link, error) {
	return nil, fmt.Errorf("%w: list: connection refused", service.ErrStorage)
}
func (failingService) Get(context.Context, string) (*model.Link, error) {
	return nil, fmt.Errorf("%w: get: connection refused", service.ErrStorage)
}
func (failingService) Delete(context.Context, string) (*model.Link, error) {
	return nil, fmt.Errorf("%w: delete: connection refused", service.ErrStorage)
}
func (failingService) Redirect(context.Context, string) (string, error) {
	return "", fmt.Errorf("%w: redirect lookup: connection refused", service.ErrStorage)
}
func (failingService) Ping(context.Context) error {
	return errors.New("connection refused")
}

func TestStorageErrorsAreHidden(t *testing.T) {
	logger := zap.NewNop()
	h := handlers.NewHandler(failingService{}, testBaseURL, testFrontendURL, logger)
	srv := httptest.NewServer(router.NewRouter(h, logger))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/links")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.NotContains(t, string(body), "connection refused")

	redirect, err := noRedirectClient().Get(srv.URL + "/abc123")
	require.NoError(t, err)
	redirect.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, redirect.StatusCode)

	assert.Equal(t, http.StatusInternalServerError, getJSON(t, srv.URL+"/ping", nil))
}
