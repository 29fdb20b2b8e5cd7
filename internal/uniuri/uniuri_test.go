package uniuri

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLenChars(t *testing.T) {
	testCases := []struct {
		name          string
		length        int
		chars         []byte
		expectedError error
	}{
		{name: "standard", length: StdLen, chars: StdChars},
		{name: "long", length: 1000, chars: StdChars},
		{name: "binary alphabet", length: 64, chars: []byte("01")},
		{name: "zero length", length: 0, chars: StdChars},
		{name: "alphabet too short", length: 8, chars: []byte("a"), expectedError: ErrCharsetLength},
		{name: "alphabet too long", length: 8, chars: make([]byte, 257), expectedError: ErrCharsetLength},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := NewLenChars(tc.length, tc.chars)

			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				return
			}

			require.NoError(t, err)
			assert.Len(t, s, tc.length)

			for _, c := range []byte(s) {
				assert.Contains(t, string(tc.chars), string(c))
			}
		})
	}
}

func TestToken(t *testing.T) {
	a, err := Token()
	require.NoError(t, err)

	b, err := Token()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(a, TokenPrefix))
	assert.Len(t, a, len(TokenPrefix)+TokenLen)
	assert.NotEqual(t, a, b)
}
