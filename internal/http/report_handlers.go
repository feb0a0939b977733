package http

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"log-analyzer/internal/models"
	"log-analyzer/internal/shared/loggers"
	"log-analyzer/internal/stores"
)

type AppHttpHandler interface {
	Handle(w http.ResponseWriter, r *http.Request) error
}

// ListReportsResponse is the body of GET /reports.
type ListReportsResponse struct {
	Reports []models.ReportInfo `json:"reports"`
}

// HealthResponse is the body of GET /healthz. LastRunAt is empty until a run has succeeded.
type HealthResponse struct {
	Status    string `json:"status"`
	LastRunAt string `json:"lastRunAt,omitempty"`
}

type listReportsHandler struct {
	reportStore stores.ReportStore
}

func NewListReportsHandler(reportStore stores.ReportStore) AppHttpHandler {
	return &listReportsHandler{reportStore: reportStore}
}

// Handle processes GET /reports requests.
func (h *listReportsHandler) Handle(w http.ResponseWriter, r *http.Request) error {
	reports, err := h.reportStore.List(r.Context())
	if err != nil {
		return errInternalReportStoreFailed(err)
	}
	writeJSONResponse(w, http.StatusOK, ListReportsResponse{Reports: reports})
	return nil
}

type getReportHandler struct {
	reportStore stores.ReportStore
}

func NewGetReportHandler(reportStore stores.ReportStore) AppHttpHandler {
	return &getReportHandler{reportStore: reportStore}
}

// Handle processes GET /reports/{date} requests, date being formatted as 2017.06.30.
func (h *getReportHandler) Handle(w http.ResponseWriter, r *http.Request) error {
	dateParam := chi.URLParam(r, "date")
	date, err := models.ParseReportDate(dateParam)
	if err != nil {
		return errInvalidReportDate(dateParam, err)
	}

	readCloser, err := h.reportStore.Get(r.Context(), date)
	if err != nil {
		if errors.Is(err, stores.ErrReportNotFound) {
			return errReportNotFound(err)
		}
		return errInternalReportStoreFailed(err)
	}
	defer readCloser.Close()

	w.Header().Set(headerContentType, contentTypeHTML)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, readCloser); err != nil {
		// headers are already sent, the client sees a truncated body
		loggers.Ctx(r.Context()).Warn().Err(err).Msg("failed to stream report")
	}
	return nil
}

type healthHandler struct {
	timestampStore stores.TimestampStore
}

func NewHealthHandler(timestampStore stores.TimestampStore) AppHttpHandler {
	return &healthHandler{timestampStore: timestampStore}
}

// Handle processes GET /healthz requests.
func (h *healthHandler) Handle(w http.ResponseWriter, r *http.Request) error {
	response := HealthResponse{Status: "ok"}

	lastRunAt, err := h.timestampStore.Get(r.Context())
	switch {
	case err == nil:
		response.LastRunAt = lastRunAt.UTC().Format(time.RFC3339)
	case !errors.Is(err, stores.ErrTimestampNotFound):
		return errInternalTimestampStoreFailed(err)
	}

	writeJSONResponse(w, http.StatusOK, response)
	return nil
}
