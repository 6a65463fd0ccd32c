package vault

import (
	"context"
	"sync"

	sdkmath "cosmossdk.io/math"

	"github.com/rebaselabs/rebase-bridge/internal/types"
)

// Bank is an in-process native-value book: one balance per address. It stands
// in for the execution environment's value transfer when the ledger runs as a
// standalone service.
type Bank struct {
	mu       sync.Mutex
	balances map[types.Address]sdkmath.Int
}

func NewBank() *Bank {
	return &Bank{balances: make(map[types.Address]sdkmath.Int)}
}

// Credit adds native value to an address.
func (b *Bank) Credit(addr types.Address, amount sdkmath.Int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[addr] = b.balance(addr).Add(amount)
}

// Pay implements Payer.
func (b *Bank) Pay(ctx context.Context, to types.Address, amount sdkmath.Int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[to] = b.balance(to).Add(amount)
	return nil
}

// BalanceOf returns the native balance of an address.
func (b *Bank) BalanceOf(addr types.Address) sdkmath.Int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balance(addr)
}

func (b *Bank) balance(addr types.Address) sdkmath.Int {
	if bal, ok := b.balances[addr]; ok {
		return bal
	}
	return sdkmath.ZeroInt()
}
