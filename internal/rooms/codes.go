package rooms

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// Alphabet excludes ambiguous characters: 0, O, 1, I, L
const alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const (
	MinCodeLength = 4
	MaxCodeLength = 6
)

func GenerateCode(length int) (string, error) {
	if length < MinCodeLength || length > MaxCodeLength {
		return "", fmt.Errorf("code length %d outside %d..%d", length, MinCodeLength, MaxCodeLength)
	}
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			return "", err
		}
		code[i] = alphabet[n.Int64()]
	}
	return string(code), nil
}

// NormalizeCode upper-cases user input so "abcd" finds room "ABCD".
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
