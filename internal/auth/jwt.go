package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken covers every validation failure: bad signature, bad
// shape, expiry. Callers get one error kind; the wrapped cause stays
// available for logging.
var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// Manager signs and validates access tokens with a single process-wide
// secret and one fixed HMAC algorithm. Tokens signed before a key change
// simply stop validating; there is no grace list.
type Manager struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
}

func NewManager(secret, algorithm string, ttl time.Duration) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}

	method := jwt.GetSigningMethod(algorithm)

	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm %q", algorithm)
	}

	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("signing algorithm %q is not an HMAC method", algorithm)
	}

	return &Manager{
		secret: []byte(secret),
		method: method,
		ttl:    ttl,
	}, nil
}

func (m *Manager) GenerateAccessToken(userID int64) (string, error) {
	now := time.Now().UTC()

	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(m.method, claims)

	return token.SignedString(m.secret)
}

// ParseAndValidate checks signature and expiry and returns the subject
// user id.
func (m *Manager) ParseAndValidate(tokenStr string) (int64, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// enforce the configured method; never trust the token header
		if t.Method.Alg() != m.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return m.secret, nil
	})

	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)

	if !ok || !token.Valid {
		return 0, ErrInvalidToken
	}

	if claims.UserID == 0 {
		return 0, fmt.Errorf("%w: missing user_id claim", ErrInvalidToken)
	}

	return claims.UserID, nil
}
