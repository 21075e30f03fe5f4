// Package bitcoin validates Bitcoin addresses and classifies them by
// encoding, using btcd's btcutil against mainnet parameters.
package bitcoin

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
)

// ErrInvalidAddress indicates that a string is not a valid mainnet
// Bitcoin address.
var ErrInvalidAddress = errors.New("invalid bitcoin address")

// AddressType identifies the encoding family of a Bitcoin address.
type AddressType string

const (
	// AddressTypeLegacy is a base58 pay-to-pubkey-hash address (prefix 1).
	AddressTypeLegacy AddressType = "legacy"
	// AddressTypeScriptHash is a base58 pay-to-script-hash address (prefix 3).
	AddressTypeScriptHash AddressType = "script-hash"
	// AddressTypeBech32 is a native segwit address (prefix bc1).
	AddressTypeBech32 AddressType = "bech32"
)

// ParseAddress decodes addr against mainnet parameters and returns its
// encoding family. It returns ErrInvalidAddress when the string does not
// decode, fails its checksum, or belongs to another network.
func ParseAddress(addr string) (AddressType, error) {
	decoded, err := btcutil.DecodeAddress(addr, &chaincfg.MainNetParams)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidAddress, addr)
	}
	if !decoded.IsForNet(&chaincfg.MainNetParams) {
		return "", fmt.Errorf("%w: %s", ErrInvalidAddress, addr)
	}

	switch decoded.(type) {
	case *btcutil.AddressPubKeyHash, *btcutil.AddressPubKey:
		return AddressTypeLegacy, nil
	case *btcutil.AddressScriptHash:
		return AddressTypeScriptHash, nil
	case *btcutil.AddressWitnessPubKeyHash, *btcutil.AddressWitnessScriptHash, *btcutil.AddressTaproot:
		return AddressTypeBech32, nil
	default:
		return "", fmt.Errorf("%w: unsupported encoding: %s", ErrInvalidAddress, addr)
	}
}

// IsValidAddress reports whether addr is a valid mainnet Bitcoin address.
func IsValidAddress(addr string) bool {
	_, err := ParseAddress(addr)
	return err == nil
}
