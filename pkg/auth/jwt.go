// Package auth validates API bearer tokens and carries the authenticated account in request contexts.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/chainsafe/revenue-middleware/pkg/revenue"
)

var (
	// ErrMissingToken is returned when a request carries no bearer token.
	ErrMissingToken = errors.New("missing bearer token")
	// ErrInvalidToken is returned for tokens that fail signature or claim checks.
	ErrInvalidToken = errors.New("invalid token")
)

// Claims are the JWT claims accepted by the API. Account identifies the
// signed-in account whose controller the request reads.
type Claims struct {
	Account int64 `json:"account"`
	jwt.RegisteredClaims
}

// JWTValidator validates HMAC-signed tokens.
type JWTValidator struct {
	secret []byte
	issuer string
	leeway time.Duration
	now    func() time.Time
}

// NewJWTValidator creates a validator. An empty issuer accepts any issuer.
func NewJWTValidator(secret []byte, issuer string, leeway time.Duration) *JWTValidator {
	return &JWTValidator{secret: secret, issuer: issuer, leeway: leeway, now: time.Now}
}

// ValidateToken checks the signature, expiry and issuer and returns the claims.
func (v *JWTValidator) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Account <= 0 {
		return nil, fmt.Errorf("%w: account claim missing", ErrInvalidToken)
	}
	return claims, nil
}

// Issue signs a token for account that expires after ttl.
func (v *JWTValidator) Issue(account revenue.AccountID, ttl time.Duration) (string, error) {
	if account <= 0 {
		return "", fmt.Errorf("invalid account %d", account)
	}
	now := v.now()
	claims := &Claims{
		Account: int64(account),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    v.issuer,
			Subject:   account.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
