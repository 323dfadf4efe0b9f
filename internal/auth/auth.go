// Package auth resolves the credential a subscriber presents at websocket
// handshake time into an Identity.
package auth

import (
	"context"
	"errors"
	"net/http"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrSessionExpired = errors.New("session expired")
	ErrResolve        = errors.New("identity resolution failed")
)

// Resolver maps an opaque credential to an Identity.
type Resolver interface {
	Resolve(ctx context.Context, credential string) (Identity, error)
}

// Extractor pulls the credential out of a handshake request.
type Extractor interface {
	Credential(r *http.Request) (string, error)
}

type Config struct {
	Extractor Extractor
	Resolver  Resolver
}

type Authenticator struct {
	extractor Extractor
	resolver  Resolver
}

func New(cfg Config) *Authenticator {
	return &Authenticator{
		extractor: cfg.Extractor,
		resolver:  cfg.Resolver,
	}
}

// Authenticate resolves the identity behind r. Rejections satisfy
// IsRejected; any other error is an internal failure.
func (a *Authenticator) Authenticate(r *http.Request) (Identity, error) {
	credential, err := a.extractor.Credential(r)
	if err != nil {
		return Identity{}, err
	}
	return a.resolver.Resolve(r.Context(), credential)
}

// IsRejected reports whether err means the credential itself was bad, as
// opposed to the resolver failing.
func IsRejected(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrSessionExpired)
}
