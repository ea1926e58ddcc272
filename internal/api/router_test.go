package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rewards-system/internal/repository/memstore"
	"rewards-system/internal/service"
)

type testEnv struct {
	router *gin.Engine
}

func newTestEnv(t *testing.T, mode string, milestones map[int64]string) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memstore.New()
	vouchers := service.NewVoucherService(store.Vouchers, store.Campaigns, mode)
	router := NewRouter(Deps{
		Vouchers:  vouchers,
		Campaigns: service.NewCampaignService(store.Campaigns),
		Referrals: service.NewReferralService(store.Referrals, store.Rewards, milestones),
		Wheel:     service.NewWheelService(store.Wheel, vouchers),
		Store:     store,
	})
	return &testEnv{router: router}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t, service.ModeStrict, nil)

	w := env.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func TestDBHealthEndpoint(t *testing.T) {
	t.Run("reachable store", func(t *testing.T) {
		env := newTestEnv(t, service.ModeStrict, nil)
		w := env.do(t, http.MethodGet, "/health/db", nil)
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unreachable store", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		router := NewRouter(Deps{Store: failingPinger{}})
		req := httptest.NewRequest(http.MethodGet, "/health/db", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.JSONEq(t, `{"status":"unavailable"}`, w.Body.String())
	})
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, service.ModeStrict, nil)

	w := env.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "# HELP")
}
