package v1

import (
	"github.com/Totarae/shortlinks/internal/model"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// CreateLinkRequest запрос на создание ссылки.
type CreateLinkRequest struct {
	LongURL string `json:"long_url"`
	Code    string `json:"code,omitempty"`
}

// CodeRequest запрос с кодом ссылки.
type CodeRequest struct {
	Code string `json:"code"`
}

// ListLinksRequest запрос списка ссылок.
type ListLinksRequest struct{}

// ListLinksResponse список ссылок, новые первыми.
type ListLinksResponse struct {
	Links []*Link `json:"links"`
}

// ResolveResponse адрес назначения для перехода.
type ResolveResponse struct {
	LongURL string `json:"long_url"`
}

// Link ссылка в ответах gRPC. Время передаётся без смещения зоны.
type Link struct {
	CreatedAt   *timestamppb.Timestamp `json:"created_at"`
	LastClicked *timestamppb.Timestamp `json:"last_clicked,omitempty"`
	Code        string                 `json:"code"`
	LongURL     string                 `json:"long_url"`
	ShortURL    string                 `json:"short_url"`
	Clicks      int64                  `json:"clicks"`
}

func toLink(l *model.Link, baseURL string) *Link {
	out := &Link{
		Code:      l.Code,
		LongURL:   l.LongURL,
		ShortURL:  baseURL + "/" + l.Code,
		Clicks:    l.Clicks,
		CreatedAt: timestamppb.New(l.CreatedAt),
	}
	if l.LastClicked != nil {
		out.LastClicked = timestamppb.New(*l.LastClicked)
	}
	return out
}
