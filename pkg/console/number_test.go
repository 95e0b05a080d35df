package console

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDecimal(t *testing.T) {
	testCases := []struct {
		in     string
		strict int
		ok     bool
		atoi   int
	}{
		{"0", 0, true, 0},
		{"13", 13, true, 13},
		{"+7", 7, true, 7},
		{"-5", -5, true, -5},
		{"0042", 42, true, 42},
		{"", 0, false, 0},
		{"-", 0, false, 0},
		{"abc", 0, false, 0},
		{"12abc", 0, false, 12},
		{"2147483647", 2147483647, true, 2147483647},
		{"2147483648", 0, false, 2147483647},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			n, ok := ParseDecimal(tc.in)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.strict, n)
			require.Equal(t, tc.atoi, Atoi(tc.in))
		})
	}
}
