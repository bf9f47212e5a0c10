package model

import (
	"fmt"
	"unicode/utf8"

	"github.com/Veraticus/hntax/internal/common"
)

// AddressLength is the length of a wallet address in the account's address scheme.
const AddressLength = 51

// Address identifies the account whose earnings are computed.
type Address string

// Validate rejects addresses that could never be accepted by the backend.
func (a Address) Validate() error {
	if a == "" {
		return fmt.Errorf("%w: address is required", common.ErrInvalidAddress)
	}
	if n := utf8.RuneCountInString(string(a)); n != AddressLength {
		return fmt.Errorf("%w: expected %d characters, got %d", common.ErrInvalidAddress, AddressLength, n)
	}
	return nil
}

// String implements fmt.Stringer.
func (a Address) String() string {
	return string(a)
}

// Short abbreviates the address for headers and logs.
func (a Address) Short() string {
	r := []rune(string(a))
	if len(r) <= 12 {
		return string(a)
	}
	return string(r[:6]) + "…" + string(r[len(r)-6:])
}
