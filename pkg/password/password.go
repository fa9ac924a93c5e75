package password

import "golang.org/x/crypto/bcrypt"

// Hash derives a salted one-way hash of the plaintext. The returned string
// is self-describing: algorithm, cost and salt are embedded, so Verify
// needs nothing beyond the stored value.
func Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches the stored hash. The comparison
// is constant time. Malformed hashes yield false, never a panic or error.
func Verify(hash, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
