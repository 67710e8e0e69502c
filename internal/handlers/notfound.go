package handlers

import (
	"html/template"
	"net/http"

	"go.uber.org/zap"
)

var notFoundPage = template.Must(template.New("notfound").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>404 - Page Not Found</title>
</head>
<body>
  <main style="min-height:100vh;display:flex;align-items:center;justify-content:center;font-family:sans-serif">
    <div style="text-align:center;max-width:28rem">
      <h1 style="font-size:6rem;margin:0">404</h1>
      <h2>Page Not Found</h2>
      <p>The link you are looking for doesn't exist or has been deleted.</p>
      <a href="{{.HomeURL}}">Go Back Home</a>
    </div>
  </main>
</body>
</html>
`))

func (h *Handler) renderNotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	data := struct{ HomeURL string }{HomeURL: h.FrontendURL}
	if data.HomeURL == "" {
		data.HomeURL = "/"
	}
	if err := notFoundPage.Execute(w, data); err != nil {
		h.Logger.Warn("Failed to render not found page", zap.Error(err))
	}
}
