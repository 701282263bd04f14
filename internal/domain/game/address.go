package game

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

const AddressLength = 32

var ErrInvalidAddress = errors.New("invalid address")

// Address is a Solana public key. It prints and marshals as base58.
type Address = solana.PublicKey

var SystemProgramID = solana.SystemProgramID

func ParseAddress(s string) (Address, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, s, err)
	}
	if len(raw) != AddressLength {
		return Address{}, fmt.Errorf("%w: %q decodes to %d bytes", ErrInvalidAddress, s, len(raw))
	}
	return solana.PublicKeyFromBytes(raw), nil
}

func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

func AddressFromBytes(b []byte) (Address, error) {
	if len(b) != AddressLength {
		return Address{}, fmt.Errorf("%w: got %d bytes", ErrInvalidAddress, len(b))
	}
	return solana.PublicKeyFromBytes(b), nil
}
