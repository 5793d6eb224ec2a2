package internal

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
)

const (
	// SignupSecretSize is the byte length of the opaque token secret.
	SignupSecretSize = 32

	recordIDSize       = 16
	signupTokenRawSize = recordIDSize + SignupSecretSize
)

// NewSignupSecret returns a fresh random secret for an opaque confirmation
// token. Only its SHA-256 hash is stored at rest.
func NewSignupSecret() ([SignupSecretSize]byte, error) {
	var secret [SignupSecretSize]byte
	_, err := rand.Read(secret[:])
	return secret, err
}

func HashSignupSecret(secret [SignupSecretSize]byte) [32]byte {
	return sha256.Sum256(secret[:])
}

// HashFingerprint hashes a client fingerprint before it is persisted or
// handed to notification collaborators. Empty in, empty out.
func HashFingerprint(fingerprint string) string {
	if fingerprint == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(fingerprint))
	return hex.EncodeToString(sum[:])
}

// EncodeSignupToken packs a record ID and secret into one opaque string.
func EncodeSignupToken(recordID [recordIDSize]byte, secret [SignupSecretSize]byte) string {
	var raw [signupTokenRawSize]byte
	copy(raw[:recordIDSize], recordID[:])
	copy(raw[recordIDSize:], secret[:])

	return base64.RawURLEncoding.EncodeToString(raw[:])
}

func DecodeSignupToken(token string) ([recordIDSize]byte, [SignupSecretSize]byte, error) {
	var (
		recordID [recordIDSize]byte
		secret   [SignupSecretSize]byte
	)

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return recordID, secret, err
	}
	if len(raw) != signupTokenRawSize {
		return recordID, secret, errors.New("invalid signup token size")
	}

	copy(recordID[:], raw[:recordIDSize])
	copy(secret[:], raw[recordIDSize:])

	return recordID, secret, nil
}
