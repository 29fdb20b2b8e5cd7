package uniuri

import (
	"crypto/rand"
	"errors"
	"fmt"
)

const (
	// StdLen gives ~95 bits of entropy with StdChars.
	StdLen = 16
	// TokenLen gives ~190 bits of entropy with StdChars.
	TokenLen = 32
	// TokenPrefix marks API tokens so they are recognisable in logs and secret scanners.
	TokenPrefix = "spt_"

	// chunkLen is how many random bytes are read per round.
	chunkLen  = 64
	byteRange = 256
)

// StdChars is the default alphabet.
var StdChars = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789") //nolint:gochecknoglobals

// ErrCharsetLength is returned for an alphabet shorter than 2 or longer than 256 characters.
var ErrCharsetLength = errors.New("uniuri: charset must have between 2 and 256 characters")

// New returns a random string of StdLen characters from StdChars.
func New() (string, error) {
	return NewLenChars(StdLen, StdChars)
}

// NewLen returns a random string of the given length from StdChars.
func NewLen(length int) (string, error) {
	return NewLenChars(length, StdChars)
}

// Token returns a new API token: TokenPrefix followed by TokenLen random characters.
func Token() (string, error) {
	s, err := NewLen(TokenLen)
	if err != nil {
		return "", err
	}

	return TokenPrefix + s, nil
}

// NewLenChars returns a random string of the given length using chars as alphabet.
// Bytes that would bias the modulo are dropped and replaced by fresh ones.
func NewLenChars(length int, chars []byte) (string, error) {
	clen := len(chars)
	if clen < 2 || clen > byteRange {
		return "", ErrCharsetLength
	}

	if length <= 0 {
		return "", nil
	}

	// largest byte value that still maps uniformly onto the alphabet
	limit := byteRange - byteRange%clen

	out := make([]byte, 0, length)
	buf := make([]byte, chunkLen)

	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("uniuri: read random bytes: %w", err)
		}

		for _, b := range buf {
			if int(b) >= limit {
				continue
			}

			out = append(out, chars[int(b)%clen])
			if len(out) == length {
				break
			}
		}
	}

	return string(out), nil
}
