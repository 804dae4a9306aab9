// Package generator produces opaque random identifiers.
package generator

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// SessionIDLength gives ~190 bits of entropy over the 62-symbol alphabet.
const SessionIDLength = 32

var errNegativeLength = errors.New("generator: negative length")

// RandomID returns n symbols drawn uniformly from [0-9A-Za-z].
func RandomID(n int) (string, error) {
	if n < 0 {
		return "", errNegativeLength
	}
	size := big.NewInt(int64(len(alphabet)))

	var b strings.Builder
	b.Grow(n)
	for b.Len() < n {
		idx, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", err
		}
		b.WriteByte(alphabet[idx.Int64()])
	}
	return b.String(), nil
}

func SessionID() (string, error) {
	return RandomID(SessionIDLength)
}
