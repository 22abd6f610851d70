package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	SessionTTL   = 7 * 24 * time.Hour
	MagicLinkTTL = 15 * time.Minute

	purposeSession   = "session"
	purposeMagicLink = "magic_link"
)

// ErrInvalidSession is the only error callers see for a token that cannot be
// trusted, whatever the underlying cause.
var ErrInvalidSession = errors.New("invalid session")

type sessionClaims struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

type SessionStore struct {
	secretKey []byte
	now       func() time.Time
}

func NewSessionStore(secretKey []byte) (*SessionStore, error) {
	if len(secretKey) == 0 {
		return nil, errors.New("session secret key is required")
	}
	return &SessionStore{secretKey: secretKey, now: time.Now}, nil
}

func (store *SessionStore) Issue(email string) (string, error) {
	return store.sign(email, purposeSession, SessionTTL)
}

func (store *SessionStore) Validate(token string) (string, error) {
	return store.parse(token, purposeSession)
}

func (store *SessionStore) IssueMagicLink(email string) (string, error) {
	return store.sign(email, purposeMagicLink, MagicLinkTTL)
}

func (store *SessionStore) ValidateMagicLink(token string) (string, error) {
	return store.parse(token, purposeMagicLink)
}

func (store *SessionStore) sign(email string, purpose string, ttl time.Duration) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", errors.New("email is required")
	}
	now := store.now()

	claims := sessionClaims{
		Email:   normalized,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   normalized,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(store.secretKey)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", purpose, err)
	}
	return signed, nil
}

func (store *SessionStore) parse(rawToken string, purpose string) (string, error) {
	tokenValue := strings.TrimSpace(rawToken)
	if tokenValue == "" {
		return "", ErrInvalidSession
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenValue, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return store.secretKey, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(store.now))
	if err != nil || !token.Valid {
		return "", ErrInvalidSession
	}
	if claims.Purpose != purpose || strings.TrimSpace(claims.Email) == "" {
		return "", ErrInvalidSession
	}

	return claims.Email, nil
}
