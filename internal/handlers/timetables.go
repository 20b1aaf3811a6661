package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ska-sa/obssched/internal/driver"
	"github.com/ska-sa/obssched/internal/ingest"
	"github.com/ska-sa/obssched/internal/proposal"
)

// scheduleEntry is one (proposal, start_datetime) pair in the response
// body (spec §6). A binding left UNSCHEDULED is omitted.
type scheduleEntry struct {
	Proposal      int64  `json:"proposal"`
	StartDatetime string `json:"start_datetime"`
}

// timetableResponse is the full response body for submission and
// retrieval.
type timetableResponse struct {
	ID        int64           `json:"id,omitempty"`
	StartDate string          `json:"start_date"`
	EndDate   string          `json:"end_date"`
	Schedules []scheduleEntry `json:"schedules"`
}

func toResponse(id int64, h proposal.Horizon, result *driver.Result) timetableResponse {
	resp := timetableResponse{
		ID:        id,
		StartDate: h.Start.Format("2006-01-02"),
		EndDate:   h.End.Format("2006-01-02"),
	}
	if result.Schedule == nil {
		return resp
	}
	for _, b := range result.Schedule.Bindings {
		if b.Unscheduled {
			continue
		}
		resp.Schedules = append(resp.Schedules, scheduleEntry{
			Proposal:      b.ProposalID,
			StartDatetime: b.Start.Format("2006-01-02T15:04:05"),
		})
	}
	return resp
}

// CreateTimetable handles POST /api/v1/timetables: parses the submission,
// runs the optimizer (deduplicating identical concurrent submissions and
// consulting the run cache), and stores the result under a fresh id.
func (h *Handlers) CreateTimetable(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 10<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	horizon, proposals, err := ingest.ParseTimetableRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.runCached(r.Context(), horizon, proposals)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	entry := h.store.Create(horizon, result)

	w.Header().Set("Location", "/api/v1/timetables/"+strconv.FormatInt(entry.ID, 10))
	writeJSON(w, http.StatusCreated, toResponse(entry.ID, horizon, result))
}

// GetTimetable handles GET /api/v1/timetables/{id}.
func (h *Handlers) GetTimetable(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	t, ok := h.store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "timetable not found")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(t.ID, t.Horizon, t.Result))
}

// UpdateTimetable handles PUT /api/v1/timetables/{id}: re-runs the
// optimizer against a new submission body and replaces the stored result.
func (h *Handlers) UpdateTimetable(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if _, ok := h.store.Get(id); !ok {
		writeError(w, http.StatusNotFound, "timetable not found")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 10<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	horizon, proposals, err := ingest.ParseTimetableRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.runCached(r.Context(), horizon, proposals)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	h.store.Update(id, horizon, result)
	writeJSON(w, http.StatusOK, toResponse(id, horizon, result))
}

// DeleteTimetable handles DELETE /api/v1/timetables/{id}.
func (h *Handlers) DeleteTimetable(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if !h.store.Delete(id) {
		writeError(w, http.StatusNotFound, "timetable not found")
		return
	}
	if h.cleanup != nil {
		h.cleanup.TriggerDebounced()
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
