package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"literacylead/internal/roster"
	"literacylead/internal/service"
)

// RosterHandler serves the student roster endpoints. Edits never trigger
// analysis on their own; the teacher runs it explicitly when the grid is in
// a state worth analyzing.
type RosterHandler struct {
	rosterService *service.RosterService
}

// NewRosterHandler creates a new roster handler.
func NewRosterHandler(rosterService *service.RosterService) *RosterHandler {
	return &RosterHandler{rosterService: rosterService}
}

// List handles GET /api/students.
func (h *RosterHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"students": h.rosterService.Students(),
	})
}

// Create handles POST /api/students. New rows start blank; scores stay
// unknown until the teacher types them in.
func (h *RosterHandler) Create(w http.ResponseWriter, r *http.Request) {
	student := h.rosterService.AddStudent()
	respondJSON(w, http.StatusCreated, student)
}

// Get handles GET /api/students/{id} and returns the student profile with
// formative history newest first.
func (h *RosterHandler) Get(w http.ResponseWriter, r *http.Request) {
	student, ok := h.rosterService.Profile(r.PathValue("id"))
	if !ok {
		respondError(w, http.StatusNotFound, "Student not found", nil)
		return
	}
	respondJSON(w, http.StatusOK, student)
}

type updateFieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Update handles PATCH /api/students/{id}. The value arrives as the raw
// text the teacher typed; score fields go through coercion, so an emptied
// cell becomes unknown rather than zero.
func (h *RosterHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Field) == "" {
		respondError(w, http.StatusBadRequest, "Field is required", nil)
		return
	}

	id := r.PathValue("id")
	if err := h.rosterService.UpdateField(id, req.Field, req.Value); err != nil {
		switch {
		case errors.Is(err, roster.ErrStudentNotFound):
			respondError(w, http.StatusNotFound, "Student not found", nil)
		case errors.Is(err, roster.ErrUnknownField):
			respondError(w, http.StatusBadRequest, "Unknown field", nil)
		default:
			respondError(w, http.StatusInternalServerError, "Failed to update student", err)
		}
		return
	}

	student, ok := h.rosterService.Profile(id)
	if !ok {
		respondError(w, http.StatusNotFound, "Student not found", nil)
		return
	}
	respondJSON(w, http.StatusOK, student)
}

// Delete handles DELETE /api/students/{id}.
func (h *RosterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.rosterService.RemoveStudent(r.PathValue("id")); err != nil {
		respondError(w, http.StatusNotFound, "Student not found", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
