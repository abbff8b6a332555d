// Package credentials wraps secret hashing and verification so callers
// never touch the hash format directly.
package credentials

import "golang.org/x/crypto/bcrypt"

// Verifier hashes secrets and checks presented secrets against stored
// hashes. It reports pass/fail only; callers decide what failure means.
type Verifier interface {
	Hash(secret string) (string, error)
	Verify(hash, secret string) bool
}

type bcryptVerifier struct {
	cost int
}

// NewBcryptVerifier returns a bcrypt-backed Verifier. A cost of 0 selects
// the library default.
func NewBcryptVerifier(cost int) Verifier {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &bcryptVerifier{cost: cost}
}

func (v *bcryptVerifier) Hash(secret string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), v.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (v *bcryptVerifier) Verify(hash, secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}
