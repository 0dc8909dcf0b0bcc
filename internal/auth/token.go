package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidToken is returned for any token that fails verification:
// malformed, tampered, or expired. Callers treat all of these as "no
// session" rather than distinguishing them.
var ErrInvalidToken = errors.New("invalid session token")

// Session is the signed claim set carried by a session token. ID and
// Provider are stamped once at issuance and pass through unchanged on
// every later request; they are never re-derived from a fresh assertion.
type Session struct {
	ID       string
	Provider string
	JTI      uuid.UUID
	Expires  time.Time
}

type tokenPayload struct {
	ID       string    `json:"id"`
	Provider string    `json:"provider"`
	JTI      uuid.UUID `json:"jti"`
	Expires  int64     `json:"exp"`
}

// TokenSigner mints and verifies HMAC-SHA256 signed session tokens.
type TokenSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenSigner builds a signer with the given secret and session TTL.
func NewTokenSigner(secret string, ttl time.Duration) *TokenSigner {
	if ttl == 0 {
		ttl = 12 * time.Hour
	}
	return &TokenSigner{secret: []byte(secret), ttl: ttl}
}

// TTL returns the configured session lifetime.
func (s *TokenSigner) TTL() time.Duration {
	return s.ttl
}

// Issue stamps a new token with the resolved identity.
func (s *TokenSigner) Issue(id, provider string) (string, Session, error) {
	session := Session{
		ID:       id,
		Provider: provider,
		JTI:      uuid.New(),
		Expires:  time.Now().Add(s.ttl).Truncate(time.Second),
	}

	raw, err := json.Marshal(tokenPayload{
		ID:       session.ID,
		Provider: session.Provider,
		JTI:      session.JTI,
		Expires:  session.Expires.Unix(),
	})
	if err != nil {
		return "", Session{}, err
	}

	encoded := base64.RawURLEncoding.EncodeToString(raw)
	return encoded + "." + s.sign(encoded), session, nil
}

// Verify checks the signature and expiry and returns the embedded session.
func (s *TokenSigner) Verify(token string) (Session, error) {
	encoded, signature, ok := strings.Cut(token, ".")
	if !ok {
		return Session{}, ErrInvalidToken
	}
	if !hmac.Equal([]byte(signature), []byte(s.sign(encoded))) {
		return Session{}, ErrInvalidToken
	}

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return Session{}, ErrInvalidToken
	}

	var payload tokenPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Session{}, ErrInvalidToken
	}

	expires := time.Unix(payload.Expires, 0)
	if payload.ID == "" || time.Now().After(expires) {
		return Session{}, ErrInvalidToken
	}

	return Session{
		ID:       payload.ID,
		Provider: payload.Provider,
		JTI:      payload.JTI,
		Expires:  expires,
	}, nil
}

func (s *TokenSigner) sign(encoded string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(encoded))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
