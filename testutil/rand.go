package testutil

import (
	sdkmath "cosmossdk.io/math"
	"github.com/brianvoe/gofakeit/v7"

	"github.com/rebaselabs/rebase-bridge/internal/types"
)

const hexChars = "0123456789abcdef"

// RandomAddress generates a random canonical holder address
func RandomAddress() types.Address {
	b := make([]byte, 40)
	for i := range b {
		b[i] = hexChars[gofakeit.Number(0, 15)]
	}
	return types.Address("0x" + string(b))
}

// RandomAmount generates a random positive amount
func RandomAmount() sdkmath.Int {
	return sdkmath.NewInt(int64(gofakeit.Number(1, 1_000_000)))
}

// RandomRate generates a random per-second interest rate below 1e12
func RandomRate() sdkmath.Int {
	return sdkmath.NewInt(int64(gofakeit.Number(1, 1_000_000_000_000)))
}
