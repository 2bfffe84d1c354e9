package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/holiman/uint256"
)

var (
	// ErrInternalServerError will throw if any the Internal Server Error happen
	ErrInternalServerError = errors.New("Internal Server Error")
	// ErrBadParamInput will throw if the given request-body or params is not valid
	ErrBadParamInput  = errors.New("Given Param is not valid")
	ErrInvalidAddress = errors.New("Invalid address")

	// failure kinds of ledger operations, every *Error unwraps to one of them
	ErrAuthorization = errors.New("unauthorized")
	ErrState         = errors.New("invalid state")
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("Your requested Item is not found")
	ErrConflict      = errors.New("Your Item already exist")
	ErrTiming        = errors.New("too early")
	ErrOverflow      = errors.New("arithmetic overflow")

	// ErrUnrecognized is a failure without a reason: unknown call, malformed
	// arguments or value sent to an operation which does not accept it
	ErrUnrecognized = errors.New("execution reverted")
)

// Code names a validated failure
type Code string

const (
	CodeNotOwner            Code = "NotOwner"
	CodeNotApprovedOperator Code = "NotApprovedOperator"
	CodeAlreadyListed       Code = "AlreadyListed"
	CodePriceNotPositive    Code = "PriceNotPositive"
	CodeNotListed           Code = "NotListed"
	CodePurchaseForbidden   Code = "PurchaseForbidden"
	CodePriceMismatched     Code = "PriceMismatched"
	CodeInvalidListingFee   Code = "InvalidListingFee"
	CodeWithdrawalForbidden Code = "WithdrawalForbidden"
	CodeWithdrawalTooEarly  Code = "WithdrawalTooEarly"
	CodePaused              Code = "Paused"
	CodeNotPaused           Code = "NotPaused"
	CodeCallerNotOwner      Code = "CallerNotOwner"
	CodeZeroAddressOwner    Code = "ZeroAddressOwner"
	CodeReentrantCall       Code = "ReentrantCall"
	CodeOverflow            Code = "Overflow"
)

var codeKinds = map[Code]error{
	CodeNotOwner:            ErrAuthorization,
	CodeNotApprovedOperator: ErrAuthorization,
	CodeAlreadyListed:       ErrConflict,
	CodePriceNotPositive:    ErrValidation,
	CodeNotListed:           ErrNotFound,
	CodePurchaseForbidden:   ErrAuthorization,
	CodePriceMismatched:     ErrValidation,
	CodeInvalidListingFee:   ErrValidation,
	CodeWithdrawalForbidden: ErrAuthorization,
	CodeWithdrawalTooEarly:  ErrTiming,
	CodePaused:              ErrState,
	CodeNotPaused:           ErrState,
	CodeCallerNotOwner:      ErrAuthorization,
	CodeZeroAddressOwner:    ErrValidation,
	CodeReentrantCall:       ErrState,
	CodeOverflow:            ErrOverflow,
}

// Error is a validated failure carrying enough context to rebuild the failing call
type Error struct {
	Code       Code
	Collection Address
	TokenId    TokenId
	Account    Address
	Value      *uint256.Int
	Now        time.Time
	UnlockAt   time.Time
}

// NewError returns an *Error of the given code
func NewError(code Code) *Error {
	return &Error{Code: code}
}

func (e *Error) WithKey(collection Address, tokenId TokenId) *Error {
	e.Collection = collection
	e.TokenId = tokenId
	return e
}

func (e *Error) WithAccount(account Address) *Error {
	e.Account = account
	return e
}

func (e *Error) WithValue(value *uint256.Int) *Error {
	if value != nil {
		e.Value = new(uint256.Int).Set(value)
	}
	return e
}

func (e *Error) WithTimes(now, unlockAt time.Time) *Error {
	e.Now = now
	e.UnlockAt = unlockAt
	return e
}

// Kind returns the failure kind of the code
func (e *Error) Kind() error {
	if kind, ok := codeKinds[e.Code]; ok {
		return kind
	}
	return ErrInternalServerError
}

func (e *Error) Unwrap() error {
	return e.Kind()
}

func (e *Error) Error() string {
	args := []string{}
	if e.Account != "" {
		args = append(args, "account="+string(e.Account))
	}
	if e.Collection != "" {
		args = append(args, "collection="+string(e.Collection))
	}
	if e.TokenId != "" {
		args = append(args, "tokenId="+string(e.TokenId))
	}
	if e.Value != nil {
		args = append(args, "value="+e.Value.Dec())
	}
	if !e.UnlockAt.IsZero() {
		args = append(args, fmt.Sprintf("now=%d", e.Now.Unix()), fmt.Sprintf("unlockAt=%d", e.UnlockAt.Unix()))
	}
	return fmt.Sprintf("%s(%s)", e.Code, strings.Join(args, ", "))
}

type errorJSON struct {
	Code       Code    `json:"code"`
	Collection Address `json:"collection,omitempty"`
	TokenId    TokenId `json:"tokenId,omitempty"`
	Account    Address `json:"account,omitempty"`
	Value      string  `json:"value,omitempty"`
	Now        int64   `json:"now,omitempty"`
	UnlockAt   int64   `json:"unlockAt,omitempty"`
}

// MarshalJSON renders amounts in decimal and times in unix seconds
func (e *Error) MarshalJSON() ([]byte, error) {
	out := errorJSON{
		Code:       e.Code,
		Collection: e.Collection,
		TokenId:    e.TokenId,
		Account:    e.Account,
	}
	if e.Value != nil {
		out.Value = e.Value.Dec()
	}
	if !e.UnlockAt.IsZero() {
		out.Now = e.Now.Unix()
		out.UnlockAt = e.UnlockAt.Unix()
	}
	return json.Marshal(out)
}

// IsCode reports whether err is an *Error of the given code
func IsCode(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
