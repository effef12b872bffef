package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

const diaryErrorLabel = "Error generating diary entry"

// DiaryGenerator writes a diary entry for a date.
type DiaryGenerator interface {
	Generate(ctx context.Context, date string) (string, error)
}

type DiaryRequest struct {
	Date string `json:"date"`
}

type DiaryResponse struct {
	DiaryEntry string `json:"diaryEntry"`
}

type DiaryHandler struct {
	diary DiaryGenerator
}

func NewDiaryHandler(d DiaryGenerator) *DiaryHandler {
	return &DiaryHandler{diary: d}
}

// Create handles POST /api/diary. The date is free-form and never validated;
// an empty or missing body falls back to today's date.
func (h *DiaryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req DiaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	h.respond(w, r, req.Date)
}

// Today handles GET /api/diary using the current date.
func (h *DiaryHandler) Today(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "")
}

func (h *DiaryHandler) respond(w http.ResponseWriter, r *http.Request, date string) {
	entry, err := h.diary.Generate(r.Context(), date)
	if err != nil {
		writeError(w, r, diaryErrorLabel, err)
		return
	}
	writeJSON(w, http.StatusOK, DiaryResponse{DiaryEntry: entry})
}
