package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"
)

// SessionCookie is the cookie carrying the signed session token.
const SessionCookie = "access_token"

// ErrBadCookieSignature is returned when a cookie value fails its MAC check.
var ErrBadCookieSignature = errors.New("invalid cookie signature")

// CookieSigner adds a second tamper-protection layer around the session
// token: the cookie value is `<token>.<mac>` with an HMAC-SHA256 over the
// token keyed by a secret distinct from the token-signing secret.
type CookieSigner struct {
	secret []byte
}

func NewCookieSigner(secret string) *CookieSigner {
	return &CookieSigner{secret: []byte(secret)}
}

func (s *CookieSigner) mac(value string) string {
	m := hmac.New(sha256.New, s.secret)
	m.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString(m.Sum(nil))
}

// Sign returns the cookie value for a token.
func (s *CookieSigner) Sign(token string) string {
	return token + "." + s.mac(token)
}

// Verify checks the MAC and returns the wrapped token. The MAC is the
// part after the last dot; the token itself contains dots.
func (s *CookieSigner) Verify(value string) (string, error) {
	i := strings.LastIndex(value, ".")
	if i < 0 {
		return "", ErrBadCookieSignature
	}
	token, sig := value[:i], value[i+1:]
	got, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return "", ErrBadCookieSignature
	}
	m := hmac.New(sha256.New, s.secret)
	m.Write([]byte(token))
	if !hmac.Equal(m.Sum(nil), got) {
		return "", ErrBadCookieSignature
	}
	return token, nil
}

// SetSession writes the signed session cookie.
func SetSession(w http.ResponseWriter, signer *CookieSigner, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    signer.Sign(token),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl / time.Second),
	})
}

// ClearSession expires the session cookie.
func ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
