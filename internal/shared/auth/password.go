package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// Cost is the bcrypt work factor used by HashPassword
var Cost = bcrypt.DefaultCost

// HashPassword hashes a plain text password using bcrypt. Passwords longer
// than 72 bytes are rejected with bcrypt.ErrPasswordTooLong.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), Cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword checks if a plain text password matches the hashed password
func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
