package auth

import (
	"net/http"

	apperrors "github.com/chainsafe/revenue-middleware/pkg/app/errors"
	apphttp "github.com/chainsafe/revenue-middleware/pkg/app/http"
	"github.com/chainsafe/revenue-middleware/pkg/revenue"
)

// Middleware rejects requests without a valid bearer token and stores the
// token's account in the request context.
func Middleware(v *JWTValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := v.ValidateToken(BearerToken(r))
			if err != nil {
				apphttp.DefaultErrorHandler(w, apperrors.UnAuthorizedError(err, "invalid or missing token"))
				return
			}
			ctx := WithAccount(r.Context(), revenue.AccountID(claims.Account))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
