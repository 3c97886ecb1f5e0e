package services

import "golang.org/x/crypto/bcrypt"

// HashPassword produces a salted adaptive digest. bcrypt salts per call, so
// hashing the same plaintext twice yields different digests that both verify.
func HashPassword(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// CheckPassword reports whether plaintext matches digest. Malformed digests
// verify false; no error path is exposed so mismatch and corruption are
// indistinguishable to callers.
func CheckPassword(plaintext string, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
