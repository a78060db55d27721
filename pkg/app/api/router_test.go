package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chainsafe/revenue-middleware/pkg/auth"
	"github.com/chainsafe/revenue-middleware/pkg/config"
	"github.com/chainsafe/revenue-middleware/pkg/revenue"
	"github.com/chainsafe/revenue-middleware/pkg/revenue/controller"
	"github.com/chainsafe/revenue-middleware/pkg/revenue/service/mocks"
)

type fakeReadiness struct{ closed bool }

func (f *fakeReadiness) Closed() bool { return f.closed }

func get(h http.Handler, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter(t *testing.T) {
	validator := auth.NewJWTValidator([]byte("router-test-secret"), "revenue-middleware", 0)
	svc := mocks.NewService(t)
	ready := &fakeReadiness{}
	h := newRouter(svc, validator, ready, true, zap.NewNop())

	t.Run("health", func(t *testing.T) {
		rec := get(h, "/health", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "OK", rec.Body.String())
	})

	t.Run("ready", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, get(h, "/ready", "").Code)
		ready.closed = true
		defer func() { ready.closed = false }()
		assert.Equal(t, http.StatusServiceUnavailable, get(h, "/ready", "").Code)
	})

	t.Run("api requires token", func(t *testing.T) {
		rec := get(h, "/v1/entities/1/withdrawal", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = get(h, "/v1/entities/1/withdrawal", "garbage")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token account reaches service", func(t *testing.T) {
		token, err := validator.Issue(revenue.AccountID(31), time.Hour)
		require.NoError(t, err)

		svc.EXPECT().CheckWithdrawal(mock.Anything, revenue.AccountID(31), revenue.EntityID(1)).
			Return(&controller.WithdrawalCheck{Allowed: true}, nil).Once()

		rec := get(h, "/v1/entities/1/withdrawal", token)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"allowed":true}`, rec.Body.String())
	})

	t.Run("metrics", func(t *testing.T) {
		rec := get(h, "/metrics", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "revenue_http_requests_total")
	})
}

func TestRouter_MetricsDisabled(t *testing.T) {
	validator := auth.NewJWTValidator([]byte("router-test-secret"), "", 0)
	h := newRouter(mocks.NewService(t), validator, &fakeReadiness{}, false, zap.NewNop())
	assert.Equal(t, http.StatusNotFound, get(h, "/metrics", "").Code)
}

func TestGatewayConfig(t *testing.T) {
	out := gatewayConfig(&config.GatewayConfig{URL: "dns:///revenue:443", MaxMessageSize: 1024})
	assert.Equal(t, "dns:///revenue:443", out.URL)
	assert.Equal(t, 1024, out.MaxMessageSize)
	assert.Nil(t, out.TLS)
	assert.Nil(t, out.Auth)

	out = gatewayConfig(&config.GatewayConfig{
		URL: "revenue:443",
		TLS: &config.GatewayTLSConfig{Enabled: true, CAFile: "ca.pem"},
		OAuth: &config.OAuthConfig{
			ClientID:     "id",
			ClientSecret: "secret",
			TokenURL:     "https://auth.example.com/token",
			ExpiryLeeway: time.Minute,
		},
	})
	require.NotNil(t, out.TLS)
	assert.True(t, out.TLS.Enabled)
	assert.Equal(t, "ca.pem", out.TLS.CAFile)
	require.NotNil(t, out.Auth)
	assert.Equal(t, "id", out.Auth.ClientID)
	assert.Equal(t, time.Minute, out.Auth.ExpiryLeeway)
}
