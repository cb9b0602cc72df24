// internal/utils/crypto.go
package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"math/big"
)

func GenerateRandomString(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)

	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		b[i] = charset[n.Int64()]
	}

	return string(b), nil
}

// GenerateReferenceCode produces the human-shareable reference assigned to a
// collaboration at creation.
func GenerateReferenceCode() (string, error) {
	code, err := GenerateRandomString(12)
	if err != nil {
		return "", err
	}
	return "uv_" + code, nil
}

// SecureCompare compares two secrets in constant time.
func SecureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
