package domain

import (
	"github.com/holiman/uint256"
	"golang.org/x/xerrors"
)

// Amounts are unsigned 256-bit integers in the smallest currency unit (wei)

// Zero returns a fresh zero amount
func Zero() *uint256.Int {
	return new(uint256.Int)
}

// ParseAmount accepts a decimal string
func ParseAmount(s string) (*uint256.Int, error) {
	if s == "" {
		return Zero(), nil
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, xerrors.Errorf("invalid amount %q: %w", s, ErrBadParamInput)
	}
	return v, nil
}

// MustParseAmount panics on malformed input, meant for constants and tests
func MustParseAmount(s string) *uint256.Int {
	v, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return v
}

// IsZeroAmount treats nil as zero
func IsZeroAmount(v *uint256.Int) bool {
	return v == nil || v.IsZero()
}

// AmountOrZero never returns nil
func AmountOrZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return Zero()
	}
	return v
}

// AmountString formats nil as "0"
func AmountString(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.Dec()
}

// AddAmount returns a+b or an Overflow error
func AddAmount(a, b *uint256.Int) (*uint256.Int, error) {
	sum, overflow := new(uint256.Int).AddOverflow(AmountOrZero(a), AmountOrZero(b))
	if overflow {
		return nil, NewError(CodeOverflow)
	}
	return sum, nil
}
