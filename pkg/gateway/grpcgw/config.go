package grpcgw

import (
	"errors"
	"time"
)

// Config contains the settings required to reach the revenue service.
type Config struct {
	URL            string
	MaxMessageSize int

	TLS  *TLSConfig
	Auth *AuthConfig
}

// TLSConfig defines transport security settings for the gRPC connection.
type TLSConfig struct {
	Enabled            bool
	CertFile           string
	KeyFile            string
	CAFile             string
	InsecureSkipVerify bool
}

// AuthConfig defines OAuth2 client credentials used to obtain bearer tokens.
// A nil AuthConfig disables authentication.
type AuthConfig struct {
	ClientID     string
	ClientSecret string //nolint:gosec // standard OAuth2 config field name
	Audience     string
	TokenURL     string

	// ExpiryLeeway is how long before expiry a token is refreshed. Zero applies a default.
	ExpiryLeeway time.Duration
}

func (cfg *AuthConfig) validate() error {
	if cfg == nil {
		return errors.New("nil auth config")
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.TokenURL == "" {
		return errors.New("incomplete auth config: client id, secret and token url are required")
	}
	return nil
}
