package mockgw

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/revenue-middleware/pkg/app/errors"
	apphttp "github.com/chainsafe/revenue-middleware/pkg/app/http"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// TokenHandler serves POST /oauth/token (client credentials grant) and GET /health.
func (s *Server) TokenHandler() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Post("/oauth/token", apphttp.HandleError(s.issueToken))
	return r
}

func (s *Server) issueToken(w http.ResponseWriter, r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		return apperrors.BadRequestError(err, "invalid form")
	}
	if grant := r.PostForm.Get("grant_type"); grant != "client_credentials" {
		return apperrors.BadRequestError(nil, "unsupported_grant_type")
	}
	clientID := r.PostForm.Get("client_id")
	if clientID == "" {
		return apperrors.UnAuthorizedError(nil, "invalid_client")
	}
	if s.cfg.ClientSecret != "" && r.PostForm.Get("client_secret") != s.cfg.ClientSecret {
		return apperrors.UnAuthorizedError(nil, "invalid_client")
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:    s.cfg.Issuer,
		Subject:   clientID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
	}
	if aud := r.PostForm.Get("audience"); aud != "" {
		claims.Audience = jwt.ClaimStrings{aud}
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.Secret)
	if err != nil {
		return apperrors.GeneralError(err)
	}

	s.logger.Info("issued token", zap.String("client_id", clientID))
	apphttp.WriteJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.cfg.TokenTTL / time.Second),
	})
	return nil
}
