package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/tasks-api/internal/api/middleware"
	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceMiddleware(t *testing.T) {
	log, buf := logger.GetTestLogger(t)

	var traceID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
		logger.FromContext(r.Context()).Info("handling")
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	middleware.NewTraceMiddleware(log)(next).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasks", nil))

	require.NotEmpty(t, traceID)
	assert.Equal(t, traceID, rec.Header().Get(shared.TraceIDHeader))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	logger.AssertLogContains(t, buf, traceID)
	logger.AssertLogContains(t, buf, "request completed")
}
