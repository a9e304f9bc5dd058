package jwtkeys

import (
	"github.com/richxcame/seatshare/pkg/config"
)

// NewProviderFromConfig builds the KeyProvider for the shared JWT configuration
func NewProviderFromConfig(cfg config.JWTConfig) KeyProvider {
	return NewStaticProvider(cfg.Secret)
}
