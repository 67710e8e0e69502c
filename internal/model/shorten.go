package model

// CreateLinkRequest представляет тело запроса POST /api/links.
type CreateLinkRequest struct {
	LongURL string `json:"longUrl"`
	Code    string `json:"code,omitempty"`
}

// CreateLinkResponse представляет ответ на создание ссылки.
type CreateLinkResponse struct {
	Code     string `json:"code"`
	LongURL  string `json:"long_url"`
	ShortURL string `json:"short_url"`
}

// LinkResponse представляет запись ссылки в ответах API.
type LinkResponse struct {
	LastClicked *string `json:"last_clicked"`
	Code        string  `json:"code"`
	LongURL     string  `json:"long_url"`
	ShortURL    string  `json:"short_url"`
	CreatedAt   string  `json:"created_at"`
	Clicks      int64   `json:"clicks"`
}

// ErrorResponse представляет тело ответа с ошибкой.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewLinkResponse преобразует запись в представление API.
func NewLinkResponse(l *Link, baseURL string) LinkResponse {
	resp := LinkResponse{
		Code:      l.Code,
		LongURL:   l.LongURL,
		ShortURL:  baseURL + "/" + l.Code,
		CreatedAt: FormatTimestamp(l.CreatedAt),
		Clicks:    l.Clicks,
	}
	if l.LastClicked != nil {
		s := FormatTimestamp(*l.LastClicked)
		resp.LastClicked = &s
	}
	return resp
}
