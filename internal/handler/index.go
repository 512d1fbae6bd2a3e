// Package handler contains the HTTP handlers of the bloglist server.
//
// HANDLER RESPONSIBILITIES:
//  1. Decode the request (URL params, JSON body via render.Bind)
//  2. Call the service layer
//  3. Write the response (status code + JSON, or the HTML shell page)
//
// Handlers hold no business rules; those live in internal/service.
package handler

import (
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
)

// IndexHandler renders the single page that hosts the frontend app.
// Templates are parsed once at startup.
type IndexHandler struct {
	templates *template.Template
	logger    *slog.Logger
}

// NewIndexHandler parses base.html and index.html from templateDir.
// base.html defines the page skeleton with a {{template "content" .}}
// placeholder; index.html fills it in.
func NewIndexHandler(templateDir string, logger *slog.Logger) (*IndexHandler, error) {
	tmpl, err := template.ParseFiles(
		filepath.Join(templateDir, "base.html"),
		filepath.Join(templateDir, "index.html"),
	)
	if err != nil {
		return nil, err
	}

	return &IndexHandler{
		templates: tmpl,
		logger:    logger,
	}, nil
}

func (h *IndexHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"Title": "Bloglist",
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, "base", data); err != nil {
		h.logger.Error("failed to render template", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
