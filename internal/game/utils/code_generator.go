package utils

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

const (
	// CodeLength is the length of generated room codes
	CodeLength = 6

	// CodeCharset defines the characters used in room codes
	// Excluding similar-looking characters like 0, O, 1, I, etc.
	CodeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	maxCodeAttempts = 32
)

// ErrNoFreeCode is returned when every attempt produced a taken code
var ErrNoFreeCode = errors.New("no free room code")

// GenerateRoomCode creates a random alphanumeric code for game rooms
func GenerateRoomCode() (string, error) {
	charsetLength := big.NewInt(int64(len(CodeCharset)))
	codeBuilder := strings.Builder{}
	codeBuilder.Grow(CodeLength)

	for i := 0; i < CodeLength; i++ {
		randomIndex, err := rand.Int(rand.Reader, charsetLength)
		if err != nil {
			return "", err
		}
		codeBuilder.WriteByte(CodeCharset[randomIndex.Int64()])
	}

	return codeBuilder.String(), nil
}

// GenerateUniqueRoomCode draws codes until taken reports a free one
func GenerateUniqueRoomCode(taken func(code string) bool) (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code, err := GenerateRoomCode()
		if err != nil {
			return "", err
		}
		if !taken(code) {
			return code, nil
		}
	}
	return "", ErrNoFreeCode
}

// NormalizeRoomCode uppercases and trims user input
func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsValidRoomCode checks if a room code is valid
func IsValidRoomCode(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for _, char := range code {
		if !strings.ContainsRune(CodeCharset, char) {
			return false
		}
	}
	return true
}
