package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"ulemsee/internal/models"
)

// Room for a 2000-character question even when every rune is JSON-escaped.
const maxQuestionBodyBytes = 64 << 10

type answerer interface {
	Answer(ctx context.Context, question string) (*models.QuestionResponse, error)
}

type QuestionHandler struct {
	answers answerer
}

func NewQuestionHandler(answers answerer) *QuestionHandler {
	return &QuestionHandler{answers: answers}
}

func (h *QuestionHandler) Ask(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxQuestionBodyBytes)

	var req models.QuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("REQUEST_TOO_LARGE", "Request body is too large", r))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	resp, err := h.answers.Answer(r.Context(), req.Question)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
