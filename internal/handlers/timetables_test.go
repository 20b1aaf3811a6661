package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ska-sa/obssched/internal/config"
)

func testHandlers(t *testing.T) *Handlers {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.DefaultPopulationSize = 8
	cfg.DefaultGenerations = 3
	return New(cfg, nil, nil)
}

func router(h *Handlers) http.Handler {
	r := chi.NewRouter()
	r.Post("/api/v1/timetables", h.CreateTimetable)
	r.Get("/api/v1/timetables/{id}", h.GetTimetable)
	r.Put("/api/v1/timetables/{id}", h.UpdateTimetable)
	r.Delete("/api/v1/timetables/{id}", h.DeleteTimetable)
	r.Get("/health", h.HealthCheck)
	return r
}

const validSubmission = `{
	"start_date": "2024-01-01",
	"end_date": "2024-01-08",
	"proposals": [
		{"id": 1, "owner_email": "a@example.org", "lst_start_time": "00:00:00",
		 "lst_start_end_time": "23:00:00", "simulated_duration": 600,
		 "night_obs": false, "avoid_sunrise_sunset": false, "minimum_antennas": 4}
	]
}`

func TestCreateTimetable_ReturnsCreatedWithLocation(t *testing.T) {
	h := testHandlers(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/timetables", strings.NewReader(validSubmission))
	rec := httptest.NewRecorder()

	router(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "/api/v1/timetables/")
	assert.Contains(t, rec.Body.String(), `"start_date":"2024-01-01"`)
}

func TestCreateTimetable_RejectsMalformedBody(t *testing.T) {
	h := testHandlers(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/timetables", strings.NewReader("not json"))
	rec := httptest.NewRecorder()

	router(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTimetable_RoundTripsAfterCreate(t *testing.T) {
	h := testHandlers(t)
	createReq := httptest.NewRequest(http.MethodPost, "/api/v1/timetables", strings.NewReader(validSubmission))
	createRec := httptest.NewRecorder()
	router(h).ServeHTTP(createRec, createReq)
	require.Equal(t, http.StatusCreated, createRec.Code)

	location := createRec.Header().Get("Location")

	getReq := httptest.NewRequest(http.MethodGet, location, nil)
	getRec := httptest.NewRecorder()
	router(h).ServeHTTP(getRec, getReq)

	assert.Equal(t, http.StatusOK, getRec.Code)
}

func TestGetTimetable_MissingIDReturnsNotFound(t *testing.T) {
	h := testHandlers(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/timetables/999", nil)
	rec := httptest.NewRecorder()

	router(h).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteTimetable_RemovesEntry(t *testing.T) {
	h := testHandlers(t)
	createReq := httptest.NewRequest(http.MethodPost, "/api/v1/timetables", strings.NewReader(validSubmission))
	createRec := httptest.NewRecorder()
	router(h).ServeHTTP(createRec, createReq)
	location := createRec.Header().Get("Location")

	delReq := httptest.NewRequest(http.MethodDelete, location, nil)
	delRec := httptest.NewRecorder()
	router(h).ServeHTTP(delRec, delReq)
	assert.Equal(t, http.StatusNoContent, delRec.Code)

	getReq := httptest.NewRequest(http.MethodGet, location, nil)
	getRec := httptest.NewRecorder()
	router(h).ServeHTTP(getRec, getReq)
	assert.Equal(t, http.StatusNotFound, getRec.Code)
}

func TestCreateTimetable_IdenticalSubmissionsStoreSeparateEntries(t *testing.T) {
	h := testHandlers(t)

	first := httptest.NewRecorder()
	router(h).ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/api/v1/timetables", strings.NewReader(validSubmission)))
	require.Equal(t, http.StatusCreated, first.Code)

	second := httptest.NewRecorder()
	router(h).ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/api/v1/timetables", strings.NewReader(validSubmission)))
	require.Equal(t, http.StatusCreated, second.Code)

	assert.Equal(t, 2, h.store.Len())
}

func TestHealthCheck_ReportsStoreSize(t *testing.T) {
	h := testHandlers(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	router(h).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Contains(t, rec.Body.String(), `"stored_timetables":0`)
}
