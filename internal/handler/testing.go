package handler

import (
	"context"
	"log/slog"
	"net/http"
)

type Resetter interface {
	Reset(ctx context.Context) error
}

// TestingHandler serves POST /api/testing/reset. The router mounts it only
// when running with -env test; end-to-end suites call it between cases.
type TestingHandler struct {
	store   Resetter
	onReset func()
	logger  *slog.Logger
}

// NewTestingHandler wires the store to wipe. onReset, if non-nil, runs after
// a successful reset (the server drops the blog list cache there).
func NewTestingHandler(store Resetter, onReset func(), logger *slog.Logger) *TestingHandler {
	return &TestingHandler{store: store, onReset: onReset, logger: logger}
}

func (h *TestingHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Reset(r.Context()); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if h.onReset != nil {
		h.onReset()
	}
	h.logger.Warn("database reset via testing API")
	w.WriteHeader(http.StatusNoContent)
}
