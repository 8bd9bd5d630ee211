package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hemicycle/internal/authtoken"
	"hemicycle/internal/ledger/report"
	dErrors "hemicycle/pkg/domain-errors"
	"hemicycle/pkg/platform/middleware/auth"
)

type stubService struct {
	runReport *report.Report
	runErr    error
	reports   map[string]*report.Report
}

func (s *stubService) Run(context.Context) (*report.Report, error) {
	return s.runReport, s.runErr
}

func (s *stubService) Get(_ context.Context, runID string) (*report.Report, error) {
	if r, ok := s.reports[runID]; ok {
		return r, nil
	}
	return nil, dErrors.New(dErrors.CodeNotFound, "report not found")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRouter(svc Service, validator *authtoken.Service) http.Handler {
	r := chi.NewRouter()
	// A typed nil pointer would defeat the nil-validator check inside the
	// middleware, so only assign when a validator is really configured.
	var tv auth.TokenValidator
	if validator != nil {
		tv = validator
	}
	New(svc, testLogger(), tv).Register(r)
	return r
}

func TestHandleRun(t *testing.T) {
	rep := &report.Report{RunID: "run-1", StartedAt: time.Now()}
	router := newRouter(&stubService{runReport: rep}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/runs", nil))

	require.Equal(t, http.StatusCreated, w.Code)
	var body RunResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "run-1", body.RunID)
	assert.True(t, body.Pass)
}

func TestHandleRunLoadFailure(t *testing.T) {
	svc := &stubService{runErr: dErrors.New(dErrors.CodeUnavailable, "required table chairs.csv not readable")}
	router := newRouter(svc, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/runs", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHandleGet(t *testing.T) {
	rep := &report.Report{RunID: "run-2"}
	router := newRouter(&stubService{reports: map[string]*report.Report{"run-2": rep}}, nil)

	t.Run("found", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/runs/run-2", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var body RunResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "run-2", body.RunID)
	})

	t.Run("unknown id", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/runs/ghost", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandleRunAuthGuard(t *testing.T) {
	validator := authtoken.New("test-key", "hemicycle", "hemicycle-api")
	rep := &report.Report{RunID: "run-3"}
	router := newRouter(&stubService{runReport: rep}, validator)

	t.Run("missing token rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/runs", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token accepted", func(t *testing.T) {
		token, err := validator.Generate("ops", time.Minute)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/runs", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("reads stay open", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/runs/ghost", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
