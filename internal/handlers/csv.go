package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ska-sa/obssched/internal/ingest"
	"github.com/ska-sa/obssched/internal/proposal"
)

// UploadCSV handles POST /api/v1/timetables/csv: an alternative
// submission format for batches already living in the CSV layout (spec
// §6). The horizon comes from query parameters since CSV rows carry no
// date range of their own.
func (h *Handlers) UploadCSV(w http.ResponseWriter, r *http.Request) {
	startStr := r.URL.Query().Get("start_date")
	endStr := r.URL.Query().Get("end_date")

	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid or missing start_date")
		return
	}
	end, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid or missing end_date")
		return
	}
	horizon, err := proposal.NewHorizon(start, end)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	proposals, err := ingest.ParseCSV(io.LimitReader(r.Body, 10<<20), slog.Default())
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
