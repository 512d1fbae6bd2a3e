package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/bloglist/internal/apperror"
	"github.com/sakif/bloglist/internal/auth"
	"github.com/sakif/bloglist/internal/model"
	"github.com/sakif/bloglist/internal/service"
)

// BlogService is what BlogHandler needs from the service layer.
type BlogService interface {
	List(ctx context.Context) ([]model.Blog, error)
	Get(ctx context.Context, id string) (*model.Blog, error)
	Create(ctx context.Context, caller auth.Identity, in service.CreateBlogInput) (*model.Blog, error)
	Update(ctx context.Context, id string, in service.UpdateBlogInput) (*model.Blog, error)
	Delete(ctx context.Context, caller auth.Identity, id string) error
}

// BlogHandler serves /api/blogs.
//
// ROUTES:
//
//	GET    /api/blogs       → list (public)
//	GET    /api/blogs/{id}  → one blog (public)
//	POST   /api/blogs       → create (token required)
//	PUT    /api/blogs/{id}  → partial update, e.g. likes (public)
//	DELETE /api/blogs/{id}  → delete (token required, creator only)
type BlogHandler struct {
	blogs  BlogService
	logger *slog.Logger
}

func NewBlogHandler(blogs BlogService, logger *slog.Logger) *BlogHandler {
	return &BlogHandler{blogs: blogs, logger: logger}
}

// createBlogRequest is the POST body. Likes is a pointer so "absent" and
// "0" are told apart, though both store 0.
type createBlogRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
	Likes  *int   `json:"likes"`
}

func (req *createBlogRequest) input() service.CreateBlogInput {
	return service.CreateBlogInput{Title: req.Title, Author: req.Author, URL: req.URL, Likes: req.Likes}
}

// Bind implements render.Binder; render.Bind calls it after decoding.
func (req *createBlogRequest) Bind(r *http.Request) error {
	return service.ValidateNewBlog(req.input())
}

// updateBlogRequest is the PUT body. Only the fields present are changed.
type updateBlogRequest struct {
	Title  *string `json:"title"`
	Author *string `json:"author"`
	URL    *string `json:"url"`
	Likes  *int    `json:"likes"`
}

func (req *updateBlogRequest) input() service.UpdateBlogInput {
	return service.UpdateBlogInput{Title: req.Title, Author: req.Author, URL: req.URL, Likes: req.Likes}
}

func (req *updateBlogRequest) Bind(r *http.Request) error {
	return service.ValidateBlogPatch(req.input())
}

func (h *BlogHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.blogs.List(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, blogs)
}

func (h *BlogHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	blog, err := h.blogs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, blog)
}

// HandleCreate expects auth.RequireAuth in front of it.
func (h *BlogHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, h.logger, apperror.Unauthorized("token missing"))
		return
	}

	var req createBlogRequest
	if err := bind(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	blog, err := h.blogs.Create(r.Context(), caller, req.input())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, blog)
}

func (h *BlogHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateBlogRequest
	if err := bind(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	blog, err := h.blogs.Update(r.Context(), chi.URLParam(r, "id"), req.input())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, blog)
}

// HandleDelete expects auth.RequireAuth in front of it.
func (h *BlogHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, h.logger, apperror.Unauthorized("token missing"))
		return
	}

	if err := h.blogs.Delete(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
