package token

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/leafy-market/leafy-backend/internal/domain/user"
)

var ErrInvalidToken = errors.New("token: invalid or expired")

// Manager signs and verifies HS256 bearer tokens carrying the username and
// role. It implements the auth token issuer port.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// NewManager builds a manager from the configured secret. An empty secret gets
// a random one: fine for development, sessions won't survive a restart.
func NewManager(secret string, ttl time.Duration) *Manager {
	key := []byte(secret)
	if len(key) == 0 {
		key = randomKey(32)
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{secret: key, ttl: ttl}
}

func (m *Manager) Issue(username string, role user.Role) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	})
	signed, err := t.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

func (m *Manager) Verify(raw string) (string, user.Role, error) {
	var c claims
	t, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !t.Valid {
		return "", "", ErrInvalidToken
	}

	role := user.Role(c.Role)
	if !role.Valid() || c.Subject == "" {
		return "", "", ErrInvalidToken
	}
	return c.Subject, role, nil
}

func randomKey(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Errorf("token: generate key: %w", err))
	}
	return b
}
