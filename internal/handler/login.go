package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/bloglist/internal/service"
)

type Authenticator interface {
	Login(ctx context.Context, username, password string) (*service.LoginResult, error)
}

// LoginHandler serves POST /api/login.
type LoginHandler struct {
	auth   Authenticator
	logger *slog.Logger
}

func NewLoginHandler(auth Authenticator, logger *slog.Logger) *LoginHandler {
	return &LoginHandler{auth: auth, logger: logger}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Bind does no validation: an empty username or password is a failed login
// (401), not a malformed request.
func (req *loginRequest) Bind(r *http.Request) error { return nil }

// HandleLogin responds with {token, username, name}. The frontend stores that
// object as-is under loggedBloglistUser.
func (h *LoginHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := bind(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	res, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}
