package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainsafe/revenue-middleware/pkg/revenue"
)

var secret = []byte("0123456789abcdef0123456789abcdef")

func TestJWTValidator_IssueAndValidate(t *testing.T) {
	v := NewJWTValidator(secret, "revenue-middleware", 0)

	token, err := v.Issue(42, time.Hour)
	require.NoError(t, err)

	claims, err := v.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.Account)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "revenue-middleware", claims.Issuer)
}

func TestJWTValidator_Rejects(t *testing.T) {
	v := NewJWTValidator(secret, "revenue-middleware", 0)
	now := time.Now()

	sign := func(key any, method jwt.SigningMethod, claims *Claims) string {
		tok, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return tok
	}
	valid := func() *Claims {
		return &Claims{Account: 1, RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "revenue-middleware",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}}
	}

	expired := valid()
	expired.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))
	noExpiry := valid()
	noExpiry.ExpiresAt = nil
	wrongIssuer := valid()
	wrongIssuer.Issuer = "someone-else"
	noAccount := valid()
	noAccount.Account = 0

	tests := []struct {
		name  string
		token string
	}{
		{"wrong secret", sign([]byte("other-secret"), jwt.SigningMethodHS256, valid())},
		{"expired", sign(secret, jwt.SigningMethodHS256, expired)},
		{"no expiry", sign(secret, jwt.SigningMethodHS256, noExpiry)},
		{"wrong issuer", sign(secret, jwt.SigningMethodHS256, wrongIssuer)},
		{"no account", sign(secret, jwt.SigningMethodHS256, noAccount)},
		{"unsigned", sign(jwt.UnsafeAllowNoneSignatureType, jwt.SigningMethodNone, valid())},
		{"garbage", "not.a.token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.ValidateToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	_, err := v.ValidateToken("")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestJWTValidator_Leeway(t *testing.T) {
	v := NewJWTValidator(secret, "", 30*time.Second)
	token, err := v.Issue(7, time.Minute)
	require.NoError(t, err)

	v.now = func() time.Time { return time.Now().Add(80 * time.Second) }
	_, err = v.ValidateToken(token)
	require.NoError(t, err)

	v.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = v.ValidateToken(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestJWTValidator_IssueRejectsBadAccount(t *testing.T) {
	_, err := NewJWTValidator(secret, "", 0).Issue(0, time.Hour)
	assert.Error(t, err)
}

func TestAccountContext(t *testing.T) {
	_, ok := AccountFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithAccount(context.Background(), 9)
	account, ok := AccountFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, revenue.AccountID(9), account)
}

func TestBearerToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/v1/events", nil)
	assert.Empty(t, BearerToken(r))

	r.Header.Set("Authorization", "Bearer abc.def")
	assert.Equal(t, "abc.def", BearerToken(r))

	r.Header.Set("Authorization", "Basic dXNlcg==")
	assert.Empty(t, BearerToken(r))

	r = httptest.NewRequest(http.MethodGet, "/v1/events?access_token=xyz", nil)
	assert.Equal(t, "xyz", BearerToken(r))
}

func TestMiddleware(t *testing.T) {
	v := NewJWTValidator(secret, "revenue-middleware", 0)
	var seen revenue.AccountID
	h := Middleware(v)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = AccountFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/events", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"invalid or missing token","code":401}`, rec.Body.String())

	token, err := v.Issue(5, time.Minute)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/v1/events", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, revenue.AccountID(5), seen)
}
