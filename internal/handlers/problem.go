package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"revisit-backend/internal/middleware"
	"revisit-backend/internal/models"
	"revisit-backend/internal/services"
)

type ProblemHandler struct {
	svc *services.ProblemService
}

func NewProblemHandler(svc *services.ProblemService) *ProblemHandler {
	return &ProblemHandler{svc: svc}
}

func (h *ProblemHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	problems, err := h.svc.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, problems)
}

func (h *ProblemHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req models.CreateProblemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	problem, err := h.svc.Create(r.Context(), userID, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, problem)
}

func (h *ProblemHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	detail, err := h.svc.Detail(r.Context(), userID, id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

func (h *ProblemHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req models.UpdateProblemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if err := h.svc.Update(r.Context(), userID, id, req); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *ProblemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), userID, id); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Revisit records today's revisit. A repeat on the same calendar day gets a
// 409 so the client can show "already done" instead of an error.
func (h *ProblemHandler) Revisit(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req models.RevisitRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req) // notes are optional, body may be empty
	}

	entry, err := h.svc.RecordRevisit(r.Context(), userID, id, req.Notes)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"status": "revisited",
		"entry":  entry,
	})
}

func (h *ProblemHandler) Retire(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Retire(r.Context(), userID, id); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "retired"})
}

func (h *ProblemHandler) Today(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	focus, err := h.svc.Today(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, focus)
}

func (h *ProblemHandler) Weights(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	weights, err := h.svc.Weights(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, weights)
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid problem ID", r))
		return uuid.Nil, false
	}
	return id, true
}
