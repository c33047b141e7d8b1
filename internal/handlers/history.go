package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ulemsee/internal/models"
)

const defaultHistoryLimit = 50

type historyService interface {
	List(ctx context.Context, limit int) ([]*models.HistoryEntry, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) (int, error)
}

type HistoryHandler struct {
	history historyService
	info    *ServerInfo
}

func NewHistoryHandler(history historyService, info *ServerInfo) *HistoryHandler {
	return &HistoryHandler{history: history, info: info}
}

func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultHistoryLimit
	}

	items, err := h.history.List(r.Context(), limit)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []*models.HistoryEntry{}
	}

	writeJSON(w, http.StatusOK, items)
}

func (h *HistoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.history.Delete(r.Context(), id); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.info.Status("History item deleted successfully"))
}

func (h *HistoryHandler) Clear(w http.ResponseWriter, r *http.Request) {
	n, err := h.history.Clear(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.info.Status(fmt.Sprintf("Ule Msee's history cleared successfully (%d items removed)", n)))
}
