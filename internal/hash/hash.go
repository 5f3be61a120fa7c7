package hash

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// UnusablePassword marks accounts created without a password; no bcrypt hash
// ever starts with "!".
const UnusablePassword = "!"

func HashPassword(password string) (string, error) {
	if password == "" {
		return UnusablePassword, nil
	}
	hashbytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashbytes), nil
}

func CheckPassword(hash, password string) bool {
	if hash == "" || hash == UnusablePassword || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
