package ledger

import (
	sdkmath "cosmossdk.io/math"

	"github.com/rebaselabs/rebase-bridge/internal/types"
)

// linearInterest returns the fixed-point growth factor accumulated over
// elapsedSeconds at rate: rate*elapsed + 1e18. Simple interest, deliberately
// not compound; the factor grows without bound as time passes.
func linearInterest(rate sdkmath.Int, elapsedSeconds int64) sdkmath.Int {
	return rate.MulRaw(elapsedSeconds).Add(types.PrecisionFactor())
}

// accruedBalance projects the holder's balance at nowUnix. Zero principal
// short-circuits to zero so rounding can never conjure a nonzero balance.
func accruedBalance(h *Holder, nowUnix int64) sdkmath.Int {
	if h.Principal.IsZero() {
		return sdkmath.ZeroInt()
	}
	elapsed := nowUnix - h.LastAccrualAt
	if elapsed < 0 {
		elapsed = 0
	}
	return h.Principal.Mul(linearInterest(h.PinnedRate, elapsed)).Quo(types.PrecisionFactor())
}
