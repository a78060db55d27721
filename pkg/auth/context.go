package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/chainsafe/revenue-middleware/pkg/revenue"
)

type contextKey string

// ContextKeyAccount is the context key for the authenticated account
const ContextKeyAccount contextKey = "account"

// WithAccount adds the authenticated account to the context
func WithAccount(ctx context.Context, account revenue.AccountID) context.Context {
	return context.WithValue(ctx, ContextKeyAccount, account)
}

// AccountFromContext retrieves the authenticated account from the context
func AccountFromContext(ctx context.Context) (revenue.AccountID, bool) {
	account, ok := ctx.Value(ContextKeyAccount).(revenue.AccountID)
	return account, ok
}

// BearerToken extracts the token from an "Authorization: Bearer" header. SSE
// clients that cannot set headers may pass it as the access_token query parameter.
func BearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.URL.Query().Get("access_token")
}
