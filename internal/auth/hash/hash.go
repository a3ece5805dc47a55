package hash

import "golang.org/x/crypto/bcrypt"

// Hash returns a bcrypt hash of password. Each call salts independently,
// so two hashes of the same password never match each other.
func Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether password matches hashed. Malformed hash strings
// verify as false.
func Verify(password, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}
