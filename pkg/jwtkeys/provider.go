package jwtkeys

import (
	"errors"
)

// ErrKeyNotFound is returned when no key matches the token's kid
var ErrKeyNotFound = errors.New("jwtkeys: signing key not found")

// KeyProvider resolves HMAC keys for signing and verifying tokens
type KeyProvider interface {
	// ResolveKey returns the verification key for kid
	ResolveKey(kid string) ([]byte, error)
	// SigningKey returns the key id and secret new tokens are signed with
	SigningKey() (string, []byte, error)
	// LegacyKey returns the key for tokens issued without a kid
	LegacyKey() []byte
}

// StaticProvider serves a single shared secret and ignores kids
type StaticProvider struct {
	secret []byte
}

// NewStaticProvider creates a provider backed by one secret
func NewStaticProvider(secret string) *StaticProvider {
	return &StaticProvider{secret: []byte(secret)}
}

func (p *StaticProvider) ResolveKey(string) ([]byte, error) {
	if len(p.secret) == 0 {
		return nil, ErrKeyNotFound
	}
	return p.secret, nil
}

func (p *StaticProvider) SigningKey() (string, []byte, error) {
	if len(p.secret) == 0 {
		return "", nil, ErrKeyNotFound
	}
	return "", p.secret, nil
}

func (p *StaticProvider) LegacyKey() []byte {
	return p.secret
}
