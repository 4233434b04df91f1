package random

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

var ErrInvalidBound = errors.New("random: bound must be positive")

// Int returns a cryptographically secure integer in [0, max).
func Int(max int) (int, error) {
	if max <= 0 {
		return 0, ErrInvalidBound
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, fmt.Errorf("failed to generate random number: %w", err)
	}
	return int(n.Int64()), nil
}
