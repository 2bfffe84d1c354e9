package domain

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/xerrors"
)

// Address identifies an account or a collection contract, always stored in lower case
type Address string

const EmptyAddress = Address("0x0000000000000000000000000000000000000000")

// ParseAddress validates a hex address and returns its lower case form
func ParseAddress(s string) (Address, error) {
	if !common.IsHexAddress(s) {
		return "", xerrors.Errorf("invalid address %q: %w", s, ErrInvalidAddress)
	}
	return Address(strings.ToLower(common.HexToAddress(s).Hex())), nil
}

func (a Address) ToLower() Address {
	return Address(strings.ToLower(string(a)))
}

func (a Address) ToLowerStr() string {
	return strings.ToLower(string(a))
}

// IsEmpty reports the zero identity, an unset value counts as zero too
func (a Address) IsEmpty() bool {
	return len(a) == 0 || a.Equals(EmptyAddress)
}

func (a Address) Equals(b Address) bool {
	return a.ToLowerStr() == b.ToLowerStr()
}

// Checksum returns the EIP-55 form
func (a Address) Checksum() string {
	return common.HexToAddress(string(a)).Hex()
}

// TokenId is the decimal id of an item within its collection
type TokenId string

func (i TokenId) String() string {
	return string(i)
}

// ParseTokenId accepts a non negative decimal integer and returns its canonical form
func ParseTokenId(s string) (TokenId, error) {
	id, ok := new(big.Int).SetString(s, 10)
	if !ok || id.Sign() < 0 || id.BitLen() > 256 {
		return "", xerrors.Errorf("invalid token id %q: %w", s, ErrBadParamInput)
	}
	return TokenId(id.String()), nil
}

// BigInt returns the id as a number, nil if it is malformed
func (i TokenId) BigInt() *big.Int {
	id, ok := new(big.Int).SetString(i.String(), 10)
	if !ok {
		return nil
	}
	return id
}
