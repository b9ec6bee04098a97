package tablero

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/tablerohq/tablero/pkg/models"
	"github.com/tablerohq/tablero/pkg/repository"
)

// handleHealth reports liveness and the server's current time.
//
//	GET /health
//	Response: {"status":"ok","time":"2026-08-31T12:00:00Z"}
func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleListStatuses returns the fixed ordered status set. Clients build
// board columns from this rather than hardcoding the labels.
func (a *App) handleListStatuses(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.Statuses())
}

// Task handlers. Each mutating handler is a thin shell: decode, call the
// repository (which owns validation and the load→mutate→save cycle), map
// the error to a status code.

func (a *App) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := a.repo.ListTasks(r.Context())
	if err != nil {
		respondRepoError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tasks)
}

func (a *App) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseTaskID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusNotFound, "task not found")
		return
	}
	task, err := a.repo.GetTask(r.Context(), id)
	if err != nil {
		respondRepoError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

func (a *App) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var in repository.CreateTaskInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	task, err := a.repo.CreateTask(r.Context(), in)
	if err != nil {
		respondRepoError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, task)
}

func (a *App) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseTaskID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusNotFound, "task not found")
		return
	}
	var patch models.TaskPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	task, err := a.repo.UpdateTask(r.Context(), id, patch)
	if err != nil {
		respondRepoError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

func (a *App) handleSetTaskStatus(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseTaskID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusNotFound, "task not found")
		return
	}
	var body struct {
		Status models.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	// A missing status decodes as the empty string, which fails the
	// membership check in the repository.
	task, err := a.repo.SetTaskStatus(r.Context(), id, body.Status)
	if err != nil {
		respondRepoError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

func (a *App) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseTaskID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusNotFound, "task not found")
		return
	}
	if err := a.repo.DeleteTask(r.Context(), id); err != nil {
		respondRepoError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// Responsible handlers.

func (a *App) handleListResponsibles(w http.ResponseWriter, r *http.Request) {
	responsibles, err := a.repo.ListResponsibles(r.Context())
	if err != nil {
		respondRepoError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, responsibles)
}

func (a *App) handleCreateResponsible(w http.ResponseWriter, r *http.Request) {
	var in repository.CreateResponsibleInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	resp, err := a.repo.CreateResponsible(r.Context(), in)
	if err != nil {
		respondRepoError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, resp)
}

func (a *App) handleUpdateResponsible(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseResponsibleID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusNotFound, "responsible not found")
		return
	}
	var patch models.ResponsiblePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	resp, err := a.repo.UpdateResponsible(r.Context(), id, patch)
	if err != nil {
		respondRepoError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (a *App) handleDeleteResponsible(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseResponsibleID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusNotFound, "responsible not found")
		return
	}
	if err := a.repo.DeleteResponsible(r.Context(), id); err != nil {
		respondRepoError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// respondRepoError maps repository errors to HTTP status codes. Validation
// errors and NotFound are client errors; anything else is a storage failure
// the caller cannot fix.
func respondRepoError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrMissingField), errors.Is(err, repository.ErrInvalidStatus):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, payload any) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_, _ = w.Write(response)
	}
}

// respondError sends a standardized JSON error response.
//
// Response format:
//
//	{"error": "error message here"}
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
