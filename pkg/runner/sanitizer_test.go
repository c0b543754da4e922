package runner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeInput_SizeLimit(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{"under limit", DefaultMaxInputSize - 1, false},
		{"exact limit", DefaultMaxInputSize, false},
		{"over limit", DefaultMaxInputSize + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SanitizeInput(strings.Repeat("1", tt.size))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInputTooLarge)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSanitizeInput_ControlChars(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"guess list", "1.0, 2.5", "1.0, 2.5"},
		{"safe controls", "1.0\t2.0\r\n", "1.0\t2.0\r\n"},
		{"ansi escape", "\x1b[31m1.5\x1b[0m", "[31m1.5[0m"},
		{"null byte", "1\x00.5", "1.5"},
		{"bell", "y\x07", "y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeInput(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeInput_EnvOverride(t *testing.T) {
	t.Setenv(EnvMaxInputSize, "10")
	assert.Equal(t, 10, MaxInputSize())

	_, err := SanitizeInput("1.0,2.0,3.0")
	assert.ErrorIs(t, err, ErrInputTooLarge)

	_, err = SanitizeInput("1.0,2.0")
	assert.NoError(t, err)

	t.Setenv(EnvMaxInputSize, "garbage")
	assert.Equal(t, DefaultMaxInputSize, MaxInputSize())
}

func TestSanitizeInput_InvalidUTF8(t *testing.T) {
	_, err := SanitizeInput("\xbd\xb2\x3d\xbc\x20\xe2\x8c\x98")
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}
