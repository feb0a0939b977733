package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"log-analyzer/internal/models"
	"log-analyzer/internal/shared/loggers"
	"log-analyzer/internal/stores"
	storemocks "log-analyzer/internal/stores/mocks"
)

var reportDate = time.Date(2017, 6, 30, 0, 0, 0, 0, time.UTC)

func newTestRouter(t *testing.T) (http.Handler, *storemocks.MockReportStore, *storemocks.MockTimestampStore) {
	t.Helper()

	ctrl := gomock.NewController(t)
	reportStore := storemocks.NewMockReportStore(ctrl)
	timestampStore := storemocks.NewMockTimestampStore(ctrl)
	logger, err := loggers.New("info", io.Discard)
	require.NoError(t, err)

	return NewRouter(reportStore, timestampStore, logger), reportStore, timestampStore
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var errorResponse ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &errorResponse))
	return errorResponse
}

func TestListReports(t *testing.T) {
	t.Parallel()

	router, reportStore, _ := newTestRouter(t)
	reportStore.EXPECT().List(gomock.Any()).Return([]models.ReportInfo{
		models.NewReportInfo(reportDate),
		models.NewReportInfo(reportDate.AddDate(0, 0, -1)),
	}, nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/reports", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"reports":[
		{"date":"2017.06.30","name":"report-2017.06.30.html"},
		{"date":"2017.06.29","name":"report-2017.06.29.html"}
	]}`, rr.Body.String())
}

func TestListReports_StoreError(t *testing.T) {
	t.Parallel()

	router, reportStore, _ := newTestRouter(t)
	reportStore.EXPECT().List(gomock.Any()).Return(nil, errors.New("permission denied"))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/reports", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	errorResponse := decodeError(t, rr)
	assert.Equal(t, "HTTP_9000", errorResponse.ErrorCode)
	assert.NotEmpty(t, errorResponse.RequestID)
}

func TestGetReport(t *testing.T) {
	t.Parallel()

	router, reportStore, _ := newTestRouter(t)
	reportStore.EXPECT().Get(gomock.Any(), reportDate).
		Return(io.NopCloser(strings.NewReader("<html>report</html>")), nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/reports/2017.06.30", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Equal(t, "<html>report</html>", rr.Body.String())
}

func TestGetReport_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		path             string
		setup            func(reportStore *storemocks.MockReportStore)
		expectedStatus   int
		expectedCategory string
		expectedCode     string
	}{
		{
			name:             "malformed date",
			path:             "/reports/2017-06-30",
			setup:            func(reportStore *storemocks.MockReportStore) {},
			expectedStatus:   http.StatusBadRequest,
			expectedCategory: "invalid_argument",
			expectedCode:     "HTTP_1000",
		},
		{
			name: "report missing",
			path: "/reports/2017.06.30",
			setup: func(reportStore *storemocks.MockReportStore) {
				reportStore.EXPECT().Get(gomock.Any(), reportDate).Return(nil, stores.ErrReportNotFound)
			},
			expectedStatus:   http.StatusNotFound,
			expectedCategory: "not_found",
			expectedCode:     "HTTP_1001",
		},
		{
			name: "store failure",
			path: "/reports/2017.06.30",
			setup: func(reportStore *storemocks.MockReportStore) {
				reportStore.EXPECT().Get(gomock.Any(), reportDate).Return(nil, errors.New("io error"))
			},
			expectedStatus:   http.StatusInternalServerError,
			expectedCategory: "internal",
			expectedCode:     "HTTP_9000",
		},
	}

	for _, tt := range tests {

		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router, reportStore, _ := newTestRouter(t)
			tt.setup(reportStore)

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.expectedStatus, rr.Code)
			errorResponse := decodeError(t, rr)
			assert.Equal(t, tt.expectedCategory, errorResponse.ErrorCategory)
			assert.Equal(t, tt.expectedCode, errorResponse.ErrorCode)
		})
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		lastRunAt      time.Time
		storeErr       error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "after a successful run",
			lastRunAt:      time.Date(2017, 7, 1, 3, 0, 0, 0, time.UTC),
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"ok","lastRunAt":"2017-07-01T03:00:00Z"}`,
		},
		{
			name:           "before the first run",
			storeErr:       stores.ErrTimestampNotFound,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"ok"}`,
		},
	}

	for _, tt := range tests {

		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router, _, timestampStore := newTestRouter(t)
			timestampStore.EXPECT().Get(gomock.Any()).Return(tt.lastRunAt, tt.storeErr)

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.JSONEq(t, tt.expectedBody, rr.Body.String())
		})
	}
}

func TestHealth_StoreError(t *testing.T) {
	t.Parallel()

	router, _, timestampStore := newTestRouter(t)
	timestampStore.EXPECT().Get(gomock.Any()).Return(time.Time{}, errors.New("corrupt timestamp"))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "HTTP_9001", decodeError(t, rr).ErrorCode)
}

func TestRouter_Metrics(t *testing.T) {
	t.Parallel()

	router, _, _ := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "# TYPE")
}

func TestRouter_UnknownRoute(t *testing.T) {
	t.Parallel()

	router, _, _ := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/logs", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
