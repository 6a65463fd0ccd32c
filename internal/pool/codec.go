package pool

import (
	"fmt"
	"math/big"

	sdkmath "cosmossdk.io/math"

	"github.com/rebaselabs/rebase-bridge/internal/types"
)

// rateWordSize is the width of the encoded rate: one big-endian uint256 word,
// the only payload a paired pool on another chain needs to reconstruct an
// equivalent accrual trajectory.
const rateWordSize = 32

// EncodeRate packs a pinned interest rate into the pool data word.
func EncodeRate(rate sdkmath.Int) ([]byte, error) {
	if rate.IsNil() || rate.IsNegative() {
		return nil, fmt.Errorf("rate %s is not encodable", rate)
	}
	buf := make([]byte, rateWordSize)
	rate.BigInt().FillBytes(buf)
	return buf, nil
}

// DecodeRate unpacks a pool data word back into a rate. Anything but a
// 32-byte word is rejected; a mint must never proceed with a garbage rate.
func DecodeRate(data []byte) (sdkmath.Int, error) {
	if len(data) != rateWordSize {
		return sdkmath.ZeroInt(), &types.PoolDataDecodeError{Len: len(data)}
	}
	return sdkmath.NewIntFromBigInt(new(big.Int).SetBytes(data)), nil
}
