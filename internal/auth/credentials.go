package auth

import "golang.org/x/crypto/bcrypt"

// DefaultBcryptCost matches the work factor used for seeded accounts.
const DefaultBcryptCost = 12

// HashPassword returns the bcrypt hash of plain. Plaintext is never stored
// or logged; a hashing failure is fatal to registration.
func HashPassword(plain string, cost int) (string, error) {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether plain matches hash. A mismatch is an
// authentication failure, not a system error.
func CheckPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
