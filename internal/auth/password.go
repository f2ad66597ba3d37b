package auth

import "golang.org/x/crypto/bcrypt"

const bcryptCost = 12

// HashPassword produces a salted bcrypt digest. The salt is random, so two
// hashes of the same password never match byte-for-byte.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the password matches the digest. Malformed
// digests fail closed.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
