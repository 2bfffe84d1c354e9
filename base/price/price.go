// Package price converts wei amounts to and from their ether display form
package price

import (
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
	"golang.org/x/xerrors"

	"github.com/x-xyz/marketledger/domain"
)

// Decimals of the native currency
const Decimals = 18

// ToEther formats a wei amount, e.g. 1500000000000000000 -> 1.5
func ToEther(wei *uint256.Int) decimal.Decimal {
	return decimal.NewFromBigInt(domain.AmountOrZero(wei).ToBig(), -Decimals)
}

// FromEther parses a decimal ether amount into wei. Amounts finer than one
// wei or negative amounts are rejected.
func FromEther(s string) (*uint256.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, xerrors.Errorf("invalid ether amount %q: %w", s, domain.ErrBadParamInput)
	}
	if d.IsNegative() {
		return nil, xerrors.Errorf("negative ether amount %q: %w", s, domain.ErrBadParamInput)
	}
	wei := d.Shift(Decimals)
	if !wei.Equal(wei.Truncate(0)) {
		return nil, xerrors.Errorf("ether amount %q below one wei: %w", s, domain.ErrBadParamInput)
	}
	v, overflow := uint256.FromBig(wei.BigInt())
	if overflow {
		return nil, domain.NewError(domain.CodeOverflow)
	}
	return v, nil
}
