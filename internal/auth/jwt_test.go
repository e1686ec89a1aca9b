package auth

import (
	"errors"
	"testing"
	"time"
)

func newTestManager(t *testing.T, ttl time.Duration) *Manager {
	t.Helper()

	m, err := NewManager("test-secret-key", "HS256", ttl)

	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	return m
}

func TestNewManager(t *testing.T) {
	tests := []struct {
		name      string
		secret    string
		algorithm string
		wantErr   bool
	}{
		{"hs256", "secret", "HS256", false},
		{"hs512", "secret", "HS512", false},
		{"empty_secret", "", "HS256", true},
		{"unknown_algorithm", "secret", "XX999", true},
		{"non_hmac_algorithm", "secret", "RS256", true},
		{"none_algorithm", "secret", "none", true},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			_, err := NewManager(tt.secret, tt.algorithm, time.Minute)

			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}

func TestTokenRoundTrip(t *testing.T) {
	m := newTestManager(t, time.Hour)

	token, err := m.GenerateAccessToken(42)

	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	got, err := m.ParseAndValidate(token)

	if err != nil {
		t.Fatalf("ParseAndValidate: %v", err)
	}

	if got != 42 {
		t.Fatalf("user id = %d, want 42", got)
	}
}

func TestTokenExpired(t *testing.T) {
	// ttl=0 means the token is already at its expiry when validated
	m := newTestManager(t, 0)

	token, err := m.GenerateAccessToken(7)

	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	// make sure we are past the exp instant even on a fast clock
	time.Sleep(1100 * time.Millisecond)

	_, err = m.ParseAndValidate(token)

	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("got %v, want ErrInvalidToken", err)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	issuer := newTestManager(t, time.Hour)

	verifier, err := NewManager("a-different-secret", "HS256", time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	token, err := issuer.GenerateAccessToken(9)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	if _, err := verifier.ParseAndValidate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("got %v, want ErrInvalidToken", err)
	}
}

func TestTokenMalformed(t *testing.T) {
	m := newTestManager(t, time.Hour)

	for _, raw := range []string{"", "garbage", "a.b.c"} {
		if _, err := m.ParseAndValidate(raw); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("ParseAndValidate(%q) = %v, want ErrInvalidToken", raw, err)
		}
	}
}

func TestTokenAlgorithmMismatch(t *testing.T) {
	hs256 := newTestManager(t, time.Hour)

	hs512, err := NewManager("test-secret-key", "HS512", time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	token, err := hs512.GenerateAccessToken(3)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	// same secret, different method: must still be rejected
	if _, err := hs256.ParseAndValidate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("got %v, want ErrInvalidToken", err)
	}
}
