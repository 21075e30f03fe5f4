package bitcoin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	t.Run("should classify valid mainnet addresses", func(t *testing.T) {
		tests := []struct {
			name     string
			address  string
			expected AddressType
		}{
			{
				name:     "legacy P2PKH",
				address:  "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa",
				expected: AddressTypeLegacy,
			},
			{
				name:     "P2SH",
				address:  "3J98t1WpEZ73CNmQviecrnyiWrnqRhWNLy",
				expected: AddressTypeScriptHash,
			},
			{
				name:     "native segwit",
				address:  "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4",
				expected: AddressTypeBech32,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				addrType, err := ParseAddress(tt.address)

				require.NoError(t, err)
				assert.Equal(t, tt.expected, addrType)
			})
		}
	})

	t.Run("should reject invalid addresses", func(t *testing.T) {
		tests := []struct {
			name    string
			address string
		}{
			{name: "empty string", address: ""},
			{name: "random text", address: "not-an-address"},
			{name: "corrupted checksum", address: "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNb"},
			{name: "corrupted bech32", address: "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t5"},
			{name: "testnet address", address: "tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := ParseAddress(tt.address)

				assert.ErrorIs(t, err, ErrInvalidAddress)
			})
		}
	})
}

func TestIsValidAddress(t *testing.T) {
	t.Run("should report validity without exposing the error", func(t *testing.T) {
		assert.True(t, IsValidAddress("1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"))
		assert.False(t, IsValidAddress("garbage"))
	})
}
