package vault

import (
	"context"
	"sync"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/rebaselabs/rebase-bridge/internal/ledger"
	"github.com/rebaselabs/rebase-bridge/internal/types"
)

// Payer transfers native value out of the vault's reserve. A rejected payout
// (a recipient refusing value) aborts the redeem it belongs to.
type Payer interface {
	Pay(ctx context.Context, to types.Address, amount sdkmath.Int) error
}

// Vault swaps native value for ledger units 1:1 at the current global rate.
// The native reserve it holds is the backing for interest payouts: deposits
// and unsolicited top-ups grow it, redeems draw it down.
type Vault struct {
	mu     sync.Mutex
	ledger *ledger.RebaseLedger
	payer  Payer
	addr   types.Address // holds the mint-and-burn role
	token  types.Address

	reserve sdkmath.Int
}

func New(l *ledger.RebaseLedger, payer Payer, addr, token types.Address) *Vault {
	return &Vault{
		ledger:  l,
		payer:   payer,
		addr:    addr,
		token:   token,
		reserve: sdkmath.ZeroInt(),
	}
}

// Deposit accepts amount of native value from from and mints the same number
// of ledger units, pinned to the global rate at call time.
func (v *Vault) Deposit(ctx context.Context, from types.Address, amount sdkmath.Int) error {
	if amount.IsNil() || !amount.IsPositive() {
		return &types.InvalidAmountError{Amount: amount}
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	err := v.ledger.Atomic(func(tx *ledger.Txn) error {
		return v.ledger.MintTx(tx, v.addr, from, amount, tx.GlobalRate())
	})
	if err != nil {
		return err
	}
	v.reserve = v.reserve.Add(amount)
	log.Info().
		Str("user", from.String()).
		Str("amount", amount.String()).
		Msg("deposited")
	return nil
}

// Redeem burns amount of from's ledger units and pays out the same amount of
// native value. The max sentinel substitutes from's full settled balance.
// Burn and payout are one unit of work: a rejected payout discards the burn.
// Returns the amount paid out.
func (v *Vault) Redeem(ctx context.Context, from types.Address, amount sdkmath.Int) (sdkmath.Int, error) {
	if amount.IsNil() || amount.IsNegative() {
		return sdkmath.ZeroInt(), &types.InvalidAmountError{Amount: amount}
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	paid := sdkmath.ZeroInt()
	err := v.ledger.Atomic(func(tx *ledger.Txn) error {
		if types.IsMaxSentinel(amount) {
			amount = v.ledger.SettleTx(tx, from)
		}
		if err := v.ledger.BurnTx(tx, v.addr, from, amount); err != nil {
			return err
		}
		if v.reserve.LT(amount) {
			return &types.RedeemPayoutFailedError{
				Recipient: from,
				Err:       &types.InsufficientBalanceError{Holder: v.addr, Requested: amount, Available: v.reserve},
			}
		}
		if err := v.payer.Pay(ctx, from, amount); err != nil {
			return &types.RedeemPayoutFailedError{Recipient: from, Err: err}
		}
		paid = amount
		return nil
	})
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	v.reserve = v.reserve.Sub(paid)
	log.Info().
		Str("user", from.String()).
		Str("amount", paid.String()).
		Msg("redeemed")
	return paid, nil
}

// Fund accepts an unsolicited native top-up with no associated mint. This is
// how the yield reserve backing interest payouts is replenished.
func (v *Vault) Fund(amount sdkmath.Int) error {
	if amount.IsNil() || !amount.IsPositive() {
		return &types.InvalidAmountError{Amount: amount}
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.reserve = v.reserve.Add(amount)
	return nil
}

// Reserve returns the vault's current native backing.
func (v *Vault) Reserve() sdkmath.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.reserve
}

// LedgerTokenAddress returns the address of the token the vault backs.
func (v *Vault) LedgerTokenAddress() types.Address {
	return v.token
}
