package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const DefaultCookieName = "connect.sid"

// CookieCredential reads a session id from a cookie. Signed values look like
// "s:<sid>.<signature>"; the signature is checked only when Secret is set.
type CookieCredential struct {
	Name   string
	Secret string
}

func (c CookieCredential) Credential(r *http.Request) (string, error) {
	const fn = "CookieCredential:Credential"

	name := c.Name
	if name == "" {
		name = DefaultCookieName
	}
	cookie, err := r.Cookie(name)
	if err != nil || cookie.Value == "" {
		return "", fmt.Errorf("%s:%w: missing %s cookie", fn, ErrUnauthorized, name)
	}

	value, err := url.PathUnescape(cookie.Value)
	if err != nil {
		return "", fmt.Errorf("%s:%w:%w", fn, ErrUnauthorized, err)
	}
	sid, err := Unsign(value, c.Secret)
	if err != nil {
		return "", fmt.Errorf("%s:%w", fn, err)
	}
	return sid, nil
}

// Unsign strips the "s:" signing envelope from a session cookie value.
// Unsigned values are returned as-is.
func Unsign(value, secret string) (string, error) {
	if !strings.HasPrefix(value, "s:") {
		return value, nil
	}
	signed := strings.TrimPrefix(value, "s:")
	dot := strings.LastIndex(signed, ".")
	if dot < 0 {
		if secret != "" {
			return "", fmt.Errorf("%w: unsigned session cookie", ErrUnauthorized)
		}
		return signed, nil
	}
	sid, sig := signed[:dot], signed[dot+1:]
	if secret != "" && !hmac.Equal([]byte(sig), []byte(Sign(sid, secret))) {
		return "", fmt.Errorf("%w: bad cookie signature", ErrUnauthorized)
	}
	return sid, nil
}

// Sign returns the signature express-style session cookies carry for sid.
func Sign(sid, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(sid))
	return strings.TrimRight(base64.StdEncoding.EncodeToString(mac.Sum(nil)), "=")
}

// BearerCredential reads a token from the Authorization header, falling back
// to the token query parameter for browser websocket clients.
type BearerCredential struct{}

func (BearerCredential) Credential(r *http.Request) (string, error) {
	const fn = "BearerCredential:Credential"

	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			return "", fmt.Errorf("%s:%w: invalid authorization format", fn, ErrUnauthorized)
		}
		return token, nil
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return token, nil
	}
	return "", fmt.Errorf("%s:%w: missing token", fn, ErrUnauthorized)
}
