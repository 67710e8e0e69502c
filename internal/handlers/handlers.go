package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Totarae/shortlinks/internal/model"
	"github.com/Totarae/shortlinks/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxBodySize ограничение на размер тела запроса создания ссылки.
const maxBodySize = 1 << 20

// LinkService операции над ссылками, которые обслуживают обработчики.
type LinkService interface {
	Create(ctx context.Context, longURL, code string) (*model.Link, error)
	List(ctx context.Context) ([]*model.Link, error)
	Get(ctx context.Context, code string) (*model.Link, error)
	Delete(ctx context.Context, code string) (*model.Link, error)
	Redirect(ctx context.Context, code string) (string, error)
	Ping(ctx context.Context) error
}

// Handler HTTP-обработчики API ссылок и перехода по коду.
type Handler struct {
	Links       LinkService
	Logger      *zap.Logger
	BaseURL     string
	FrontendURL string
}

// NewHandler создаёт обработчики.
func NewHandler(links LinkService, baseURL, frontendURL string, logger *zap.Logger) *Handler {
	return &Handler{
		Links:       links,
		Logger:      logger,
		BaseURL:     strings.TrimSuffix(baseURL, "/"),
		FrontendURL: frontendURL,
	}
}

// CreateLink обрабатывает POST /api/links.
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	var req model.CreateLinkRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "invalid request body"})
		return
	}

	link, err := h.Links.Create(r.Context(), req.LongURL, req.Code)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, model.CreateLinkResponse{
		Code:     link.Code,
		LongURL:  link.LongURL,
		ShortURL: h.BaseURL + "/" + link.Code,
	})
}

// ListLinks обрабатывает GET /api/links.
func (h *Handler) ListLinks(w http.ResponseWriter, r *http.Request) {
	links, err := h.Links.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := make([]model.LinkResponse, 0, len(links))
	for _, l := range links {
		resp = append(resp, model.NewLinkResponse(l, h.BaseURL))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// GetLink обрабатывает GET /api/links/{code}.
func (h *Handler) GetLink(w http.ResponseWriter, r *http.Request) {
	link, err := h.Links.Get(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, model.NewLinkResponse(link, h.BaseURL))
}

// DeleteLink обрабатывает DELETE /api/links/{code}.
func (h *Handler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	if _, err := h.Links.Delete(r.Context(), chi.URLParam(r, "code")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Redirect обрабатывает GET /{code}: учитывает переход и отвечает 302.
// Неизвестный код получает HTML-страницу 404.
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	longURL, err := h.Links.Redirect(r.Context(), code)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.renderNotFound(w)
			return
		}
		h.Logger.Error("Redirect failed", zap.String("code", code), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Location", longURL)
	w.WriteHeader(http.StatusFound)
}

// Healthz обрабатывает GET /healthz (liveness).
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ping обрабатывает GET /ping: проверяет доступность хранилища.
func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	if err := h.Links.Ping(r.Context()); err != nil {
		h.Logger.Error("Storage ping failed", zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: "storage unavailable"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeError переводит ошибку сервиса в HTTP-ответ. Подробности ошибок
// хранилища клиенту не отдаются.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		h.writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrConflict):
		h.writeJSON(w, http.StatusConflict, model.ErrorResponse{Error: "Code already exists"})
	case errors.Is(err, service.ErrNotFound):
		h.writeJSON(w, http.StatusNotFound, model.ErrorResponse{Error: "Link not found"})
	default:
		h.Logger.Error("Request failed", zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: "Something went wrong!"})
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Logger.Warn("Failed to write response", zap.Error(err))
	}
}
