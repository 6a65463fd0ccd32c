package types

import (
	"math/big"

	sdkmath "cosmossdk.io/math"
)

// PrecisionFactor is the fixed-point denominator (1e18) shared by all
// interest-rate arithmetic. A pinned rate of 5e10 means the holder accrues
// 5e10/1e18 of its principal per second.
func PrecisionFactor() sdkmath.Int {
	return sdkmath.NewIntWithDecimal(1, 18)
}

var maxUint256 = sdkmath.NewIntFromBigInt(
	new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1)),
)

// MaxSentinel is the designated "my whole balance" amount. Callers passing it
// to redeem or transfer get their full settled balance substituted.
func MaxSentinel() sdkmath.Int {
	return maxUint256
}

func IsMaxSentinel(amount sdkmath.Int) bool {
	return !amount.IsNil() && amount.Equal(maxUint256)
}
