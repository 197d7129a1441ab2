package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"profiled/internal/core/domain"
	"profiled/internal/infrastructure/metrics"
	"profiled/internal/logs"
)

// Problem is an RFC 7807 error response body.
type Problem struct {
	Title     string                  `json:"title"`
	Status    int                     `json:"status"`
	Detail    string                  `json:"detail,omitempty"`
	RequestID string                  `json:"request_id,omitempty"`
	Errors    domain.ValidationErrors `json:"errors,omitempty"`
}

// WriteProblem encodes an error response as application/problem+json.
func WriteProblem(w http.ResponseWriter, r *http.Request, status int, title, detail string) {
	writeProblemBody(w, r, Problem{Title: title, Status: status, Detail: detail})
}

func writeProblemBody(w http.ResponseWriter, r *http.Request, p Problem) {
	p.RequestID = GetRequestID(r)
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		logs.Logger.Errorf("failed to encode problem response: %v", err)
	}
}

// writeServiceError maps domain errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if verrs, ok := domain.AsValidationErrors(err); ok {
		writeProblemBody(w, r, Problem{
			Title:  "Unprocessable Entity",
			Status: http.StatusUnprocessableEntity,
			Detail: "profile validation failed",
			Errors: verrs,
		})
		return
	}

	var conflict *domain.ConflictError
	if errors.As(err, &conflict) {
		WriteProblem(w, r, http.StatusConflict, "Conflict", conflict.Error())
		return
	}

	var stale *domain.VersionConflictError
	if errors.As(err, &stale) {
		metrics.VersionConflicts.Inc()
		WriteProblem(w, r, http.StatusPreconditionFailed, "Precondition Failed", stale.Error())
		return
	}

	if errors.Is(err, domain.ErrNotFound) {
		WriteProblem(w, r, http.StatusNotFound, "Not Found", "resource not found")
		return
	}

	logs.Logger.Errorf("reqid=%s internal error: %v", GetRequestID(r), err)
	WriteProblem(w, r, http.StatusInternalServerError, "Internal Server Error", "unexpected server error")
}

// WriteJSON encodes v as an application/json response.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logs.Logger.Errorf("failed to encode response: %v", err)
	}
}
