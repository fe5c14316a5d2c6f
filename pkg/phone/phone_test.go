package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizer_E164(t *testing.T) {
	tests := []struct {
		name   string
		region string
		phone  string
		want   string
	}{
		{"US with country code", "US", "+1 (202) 456-1111", "+12024561111"},
		{"US without country code", "US", "(202) 456-1111", "+12024561111"},
		{"US plain digits", "", "2024561111", "+12024561111"},
		{"UK mobile", "GB", "07911 123456", "+447911123456"},
		{"international overrides region", "GB", "+1 202 456 1111", "+12024561111"},
		{"too short", "US", "12345", ""},
		{"not a number", "US", "call me", ""},
		{"empty", "US", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewNormalizer(tt.region).E164(tt.phone))
		})
	}
}

func TestNormalizer_Describe(t *testing.T) {
	n := NewNormalizer("us")
	assert.Equal(t, "US", n.Region)

	d, err := n.Describe("+44 7911 123456")
	require.NoError(t, err)
	assert.True(t, d.Valid)
	assert.Equal(t, "+447911123456", d.E164)
	assert.Equal(t, "GB", d.Region)
	assert.Equal(t, "MOBILE", d.Type)

	_, err = n.Describe("")
	assert.ErrorIs(t, err, ErrEmpty)
}
