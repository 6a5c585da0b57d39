package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes a plaintext password with a random per-call
// salt. Callers hash at the write boundary, and only when the
// password field actually changed.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

// CheckPassword reports whether the plaintext matches the stored
// hash.
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
