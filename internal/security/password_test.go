package security

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")

	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	if hash == "s3cret" {
		t.Fatalf("hash must never equal the plaintext")
	}

	if err := CheckPassword(hash, "s3cret"); err != nil {
		t.Fatalf("CheckPassword rejected the original password: %v", err)
	}

	if err := CheckPassword(hash, "wrong"); err == nil {
		t.Fatalf("CheckPassword accepted a wrong password")
	}
}

func TestHashPassword_Empty(t *testing.T) {
	_, err := HashPassword("")

	if err != ErrEmptyPassword {
		t.Fatalf("got %v, want ErrEmptyPassword", err)
	}
}

func TestHashPassword_Salted(t *testing.T) {
	h1, err := HashPassword("same-input")
	if err != nil {
		t.Fatalf("hash 1: %v", err)
	}

	h2, err := HashPassword("same-input")
	if err != nil {
		t.Fatalf("hash 2: %v", err)
	}

	if h1 == h2 {
		t.Fatalf("equal plaintexts produced identical hashes; salting is broken")
	}
}

func TestVerifyAndUpgrade(t *testing.T) {
	current, err := HashPassword("pass123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	legacy, err := bcrypt.GenerateFromPassword([]byte("pass123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("legacy hash: %v", err)
	}

	tests := []struct {
		name        string
		plain       string
		stored      string
		wantOK      bool
		wantUpgrade bool
	}{
		{"match_current_cost", "pass123", current, true, false},
		{"match_legacy_cost", "pass123", string(legacy), true, true},
		{"mismatch", "nope", current, false, false},
		{"mismatch_legacy", "nope", string(legacy), false, false},
		{"malformed_hash", "pass123", "not-a-bcrypt-hash", false, false},
		{"empty_hash", "pass123", "", false, false},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			ok, newHash := VerifyAndUpgrade(tt.plain, tt.stored)

			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}

			if tt.wantUpgrade && newHash == "" {
				t.Fatalf("expected an upgraded hash, got none")
			}

			if !tt.wantUpgrade && newHash != "" {
				t.Fatalf("expected no upgrade, got %q", newHash)
			}

			if newHash != "" {
				if err := CheckPassword(newHash, tt.plain); err != nil {
					t.Fatalf("upgraded hash does not verify: %v", err)
				}

				cost, err := bcrypt.Cost([]byte(newHash))
				if err != nil {
					t.Fatalf("cost of upgraded hash: %v", err)
				}
				if cost < bcrypt.DefaultCost {
					t.Fatalf("upgraded hash cost %d below current cost", cost)
				}
			}
		})
	}
}
