package handlers

import (
	"log/slog"
	"net/http"

	"github.com/nikhilbhutani/astronautdiary/internal/apperr"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeError labels err for the route and maps its kind to a status.
// Input errors keep their static message and are not labelled.
func writeError(w http.ResponseWriter, r *http.Request, label string, err error) {
	status := apperr.Status(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		labelled := apperr.WithLabel(label, err)
		msg = labelled.Error()
		slog.Error(label, "path", r.URL.Path, "kind", labelled.Kind.String(), "error", err)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}
