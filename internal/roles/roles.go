// Package roles picks the impostor for a game.
package roles

import (
	"crypto/rand"
	"errors"
	"math/big"
)

var ErrNoCandidates = errors.New("no eligible players")

// Picker returns a uniformly distributed index in [0, n).
type Picker func(n int) (int, error)

// CryptoPicker draws from crypto/rand, the same source room codes use.
func CryptoPicker(n int) (int, error) {
	if n <= 0 {
		return 0, ErrNoCandidates
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}

// PickImpostor selects exactly one id from eligible. Join order carries no
// weight: every candidate has probability 1/len(eligible).
func PickImpostor(eligible []string, pick Picker) (string, error) {
	if len(eligible) == 0 {
		return "", ErrNoCandidates
	}
	if pick == nil {
		pick = CryptoPicker
	}
	i, err := pick(len(eligible))
	if err != nil {
		return "", err
	}
	if i < 0 || i >= len(eligible) {
		return "", errors.New("picker returned index out of range")
	}
	return eligible[i], nil
}

// Fixed returns a Picker that always answers i modulo n. Useful when a
// deterministic choice is wanted.
func Fixed(i int) Picker {
	return func(n int) (int, error) {
		if n <= 0 {
			return 0, ErrNoCandidates
		}
		return i % n, nil
	}
}
