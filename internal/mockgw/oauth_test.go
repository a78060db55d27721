package mockgw

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postToken(t *testing.T, srv *Server, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/oauth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.TokenHandler().ServeHTTP(rec, req)
	return rec
}

func TestIssueToken(t *testing.T) {
	srv := New(Config{Secret: []byte(testSecret), Issuer: "mock", ClientSecret: "s3cret", TokenTTL: 10 * time.Minute}, nil)

	rec := postToken(t, srv, url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {"middleware"},
		"client_secret": {"s3cret"},
		"audience":      {"revenue"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var body tokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Bearer", body.TokenType)
	assert.Equal(t, 600, body.ExpiresIn)

	claims, err := srv.parseToken(body.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "middleware", claims.Subject)
	assert.Equal(t, "mock", claims.Issuer)
}

func TestIssueToken_Rejects(t *testing.T) {
	srv := New(Config{Secret: []byte(testSecret), ClientSecret: "s3cret"}, nil)

	tests := []struct {
		name string
		form url.Values
		code int
	}{
		{"wrong grant", url.Values{"grant_type": {"password"}, "client_id": {"a"}}, http.StatusBadRequest},
		{"missing client", url.Values{"grant_type": {"client_credentials"}}, http.StatusUnauthorized},
		{"wrong secret", url.Values{"grant_type": {"client_credentials"}, "client_id": {"a"}, "client_secret": {"x"}},
			http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, postToken(t, srv, tt.form).Code)
		})
	}
}

func TestParseToken_Expired(t *testing.T) {
	srv := New(Config{Secret: []byte(testSecret), TokenTTL: time.Minute}, nil)
	rec := postToken(t, srv, url.Values{"grant_type": {"client_credentials"}, "client_id": {"a"}})
	require.Equal(t, http.StatusOK, rec.Code)

	var body tokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	srv.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err := srv.parseToken(body.AccessToken)
	assert.Error(t, err)
}
