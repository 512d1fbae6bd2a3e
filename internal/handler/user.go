package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/bloglist/internal/model"
	"github.com/sakif/bloglist/internal/service"
)

type UserService interface {
	Register(ctx context.Context, in service.RegisterInput) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
}

// UserHandler serves POST and GET /api/users.
type UserHandler struct {
	users  UserService
	logger *slog.Logger
}

func NewUserHandler(users UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

type registerRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (req *registerRequest) input() service.RegisterInput {
	return service.RegisterInput{Username: req.Username, Name: req.Name, Password: req.Password}
}

func (req *registerRequest) Bind(r *http.Request) error {
	return service.ValidateRegistration(req.input())
}

func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := bind(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	user, err := h.users.Register(r.Context(), req.input())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, user)
}

func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, users)
}
