package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// hashCost is the current work factor. Hashes stored with a lower cost
// are transparently re-hashed on the next successful login.
const hashCost = bcrypt.DefaultCost

var ErrEmptyPassword = errors.New("password must not be empty")

// HashPassword hashes a plain text password with bcrypt.
func HashPassword(plain string) (string, error) {
	if plain == "" {
		return "", ErrEmptyPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plain), hashCost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// CheckPassword compares a bcrypt hash with a plaintext password.
func CheckPassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}

// VerifyAndUpgrade reports whether plain matches the stored hash. When it
// does and the hash was produced with a weaker cost, a replacement hash at
// the current cost is returned so the caller can persist it.
//
// A malformed stored hash is reported the same way as a mismatch; callers
// must not be able to tell the two apart.
func VerifyAndUpgrade(plain, storedHash string) (ok bool, newHash string) {
	if err := CheckPassword(storedHash, plain); err != nil {
		return false, ""
	}

	cost, err := bcrypt.Cost([]byte(storedHash))

	if err != nil || cost >= hashCost {
		return true, ""
	}

	upgraded, err := HashPassword(plain)

	if err != nil {
		// keep the old hash; the password still verified
		return true, ""
	}

	return true, upgraded
}
