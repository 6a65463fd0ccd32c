package types

import (
	"errors"
	"fmt"

	sdkmath "cosmossdk.io/math"
)

// RateIncreaseRejectedError is returned when a global rate update would
// raise the rate. The global rate only moves downward.
type RateIncreaseRejectedError struct {
	Current  sdkmath.Int
	Proposed sdkmath.Int
}

func (e *RateIncreaseRejectedError) Error() string {
	return fmt.Sprintf("global rate can only decrease: current %s, proposed %s", e.Current, e.Proposed)
}

func IsRateIncreaseRejectedError(err error) bool {
	var target *RateIncreaseRejectedError
	return errors.As(err, &target)
}

// InsufficientBalanceError is returned when a burn or transfer exceeds the
// holder's settled balance.
type InsufficientBalanceError struct {
	Holder    Address
	Requested sdkmath.Int
	Available sdkmath.Int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("holder %s has %s, requested %s", e.Holder, e.Available, e.Requested)
}

func IsInsufficientBalanceError(err error) bool {
	var target *InsufficientBalanceError
	return errors.As(err, &target)
}

// UnauthorizedError is returned when the caller lacks the role a mutator
// requires.
type UnauthorizedError struct {
	Caller Address
	Role   string
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("caller %s lacks role %q", e.Caller, e.Role)
}

func IsUnauthorizedError(err error) bool {
	var target *UnauthorizedError
	return errors.As(err, &target)
}

// InvalidAmountError is returned for amounts that are nil, negative or zero
// where a positive amount is required.
type InvalidAmountError struct {
	Amount sdkmath.Int
}

func (e *InvalidAmountError) Error() string {
	if e.Amount.IsNil() {
		return "amount is nil"
	}
	return fmt.Sprintf("invalid amount %s", e.Amount)
}

func IsInvalidAmountError(err error) bool {
	var target *InvalidAmountError
	return errors.As(err, &target)
}

// RedeemPayoutFailedError is returned when the native-value payout of a
// redeem is rejected. The staged burn is discarded alongside it.
type RedeemPayoutFailedError struct {
	Recipient Address
	Err       error
}

func (e *RedeemPayoutFailedError) Error() string {
	return fmt.Sprintf("native payout to %s rejected: %v", e.Recipient, e.Err)
}

func (e *RedeemPayoutFailedError) Unwrap() error {
	return e.Err
}

func IsRedeemPayoutFailedError(err error) bool {
	var target *RedeemPayoutFailedError
	return errors.As(err, &target)
}

// PoolDataDecodeError is returned on the destination leg when the source
// pool data cannot be decoded to an interest rate. The mint must not proceed.
type PoolDataDecodeError struct {
	Len int
}

func (e *PoolDataDecodeError) Error() string {
	return fmt.Sprintf("pool data is %d bytes, want a 32-byte rate word", e.Len)
}

func IsPoolDataDecodeError(err error) bool {
	var target *PoolDataDecodeError
	return errors.As(err, &target)
}

// UnknownRemoteChainError is returned when a transfer names a chain selector
// the pool has no remote configured for.
type UnknownRemoteChainError struct {
	Selector ChainSelector
}

func (e *UnknownRemoteChainError) Error() string {
	return fmt.Sprintf("no remote chain configured for selector %d", e.Selector)
}

func IsUnknownRemoteChainError(err error) bool {
	var target *UnknownRemoteChainError
	return errors.As(err, &target)
}
