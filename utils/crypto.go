package utils

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a password (or any secret) with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the bcrypt hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// NormalizeSecret lowercases and trims a security answer before hashing, so
// "Paris " and "paris" match.
func NormalizeSecret(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ============================================================================
// TRIP CODES
// ============================================================================

const (
	TripCodeLength   = 6
	tripCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GenerateTripCode returns a random code of uppercase letters and digits.
func GenerateTripCode() (string, error) {
	max := big.NewInt(int64(len(tripCodeAlphabet)))
	code := make([]byte, TripCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", errors.New("failed to generate trip code")
		}
		code[i] = tripCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

// NormalizeTripCode uppercases user input.
func NormalizeTripCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
