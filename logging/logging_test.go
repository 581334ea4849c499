package logging

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewTeesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pos.log")
	logger, closeFn, err := New(false, path)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("sale completed", zap.String("invoice", "INV-1"))
	closeFn()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"invoice":"INV-1"`)
	assert.NotContains(t, string(raw), "hidden")
}

func TestNewWithoutFile(t *testing.T) {
	logger, closeFn, err := New(true, "")
	require.NoError(t, err)
	defer closeFn()
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestMiddleware(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := Middleware(zap.New(core), http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "/health", fields["path"])
	assert.EqualValues(t, http.StatusTeapot, fields["status"])
}
