package compat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionKeyOrdering(t *testing.T) {
	tests := []struct {
		older string
		newer string
	}{
		{"1.9.0", "1.10.0"},
		{"1.9.0", "1.9.1"},
		{"0.9.9", "1.0.0"},
		{"1.9.9", "2.0.0"},
		{"1.10.0", "1.100.0"},
	}

	for _, tt := range tests {
		t.Run(tt.older+"<"+tt.newer, func(t *testing.T) {
			older, err := VersionKey(tt.older)
			require.NoError(t, err)
			newer, err := VersionKey(tt.newer)
			require.NoError(t, err)
			assert.Less(t, older, newer)
		})
	}
}

func TestVersionKeyShortForms(t *testing.T) {
	full, err := VersionKey("1.9.0")
	require.NoError(t, err)
	short, err := VersionKey("1.9")
	require.NoError(t, err)
	assert.Equal(t, full, short)
}

func TestVersionKeyInvalid(t *testing.T) {
	for _, v := range []string{"", "abc", "1.x.0", "1..0", "1.9.0.1", "-1.0.0"} {
		t.Run(v, func(t *testing.T) {
			_, err := VersionKey(v)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidVersionFormat)
		})
	}
}

func TestOlderThan(t *testing.T) {
	older, err := OlderThan("1.8.5", "1.9.0")
	require.NoError(t, err)
	assert.True(t, older)

	older, err = OlderThan("1.9.0", "1.9.0")
	require.NoError(t, err)
	assert.False(t, older)
}

func TestExtensionOKForVersion(t *testing.T) {
	tests := []struct {
		extension string
		version   string
		ok        bool
	}{
		{"modoboa-radicale", "1.9.0", true},
		{"modoboa-radicale", "1.6.2", true},
		{"modoboa-radicale", "1.6.1", false},
		{"modoboa-contacts", "1.8.0", false},
		// No recorded minimum means always installable.
		{"modoboa-webmail", "1.0.0", true},
	}

	for _, tt := range tests {
		t.Run(tt.extension+"@"+tt.version, func(t *testing.T) {
			ok, err := ExtensionOKForVersion(tt.extension, tt.version)
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestConstraintString(t *testing.T) {
	c := Constraint{Op: "<=", Version: "1.1.6"}
	assert.Equal(t, "<=1.1.6", c.String())
}
