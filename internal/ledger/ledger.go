package ledger

import (
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/rebaselabs/rebase-bridge/internal/types"
)

// RebaseLedger owns per-holder principal, per-holder pinned interest rate and
// the global rate. Balances are computed on demand; the only place time
// becomes state is settle, which every mutator runs before acting.
type RebaseLedger struct {
	store  *Store
	policy *AccessPolicy
	now    func() time.Time
}

type Option func(*RebaseLedger)

// WithClock overrides the ledger's time source.
func WithClock(now func() time.Time) Option {
	return func(l *RebaseLedger) {
		l.now = now
	}
}

func New(store *Store, policy *AccessPolicy, opts ...Option) *RebaseLedger {
	l := &RebaseLedger{
		store:  store,
		policy: policy,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Policy exposes the access policy for role grants.
func (l *RebaseLedger) Policy() *AccessPolicy {
	return l.policy
}

// GrantMintAndBurnRoleAccess grants addr the mint-and-burn capability. Only
// the policy admin may call it.
func (l *RebaseLedger) GrantMintAndBurnRoleAccess(caller, addr types.Address) error {
	return l.policy.Grant(caller, RoleMintAndBurn, addr)
}

// Atomic runs fn as one unit of work: all staged mutations are discarded if
// fn returns an error. Composite operations (redeem's burn-then-payout) use
// it to stay all-or-nothing.
func (l *RebaseLedger) Atomic(fn func(tx *Txn) error) error {
	return l.store.Update(fn)
}

// SetGlobalRate lowers the rate future mints are pinned to. It never touches
// existing holders. Fails unless the caller holds the rate-operator role and
// newRate is strictly below the current rate.
func (l *RebaseLedger) SetGlobalRate(caller types.Address, newRate sdkmath.Int) error {
	if err := l.policy.Require(caller, RoleRateOperator); err != nil {
		return err
	}
	if newRate.IsNil() || newRate.IsNegative() {
		return &types.InvalidAmountError{Amount: newRate}
	}
	err := l.store.Update(func(tx *Txn) error {
		current := tx.GlobalRate()
		if newRate.GTE(current) {
			return &types.RateIncreaseRejectedError{Current: current, Proposed: newRate}
		}
		tx.SetGlobalRate(newRate)
		return nil
	})
	if err != nil {
		return err
	}
	log.Info().
		Str("caller", caller.String()).
		Str("new_rate", newRate.String()).
		Msg("global interest rate changed")
	return nil
}

// Mint settles to, pins the rate if to's settled principal was zero, then
// credits amount. The rate argument lets the vault pass the current global
// rate and the pool pass the rate carried over from a source chain.
func (l *RebaseLedger) Mint(caller, to types.Address, amount, rate sdkmath.Int) error {
	return l.store.Update(func(tx *Txn) error {
		return l.MintTx(tx, caller, to, amount, rate)
	})
}

// MintTx is Mint against an open unit of work.
func (l *RebaseLedger) MintTx(tx *Txn, caller, to types.Address, amount, rate sdkmath.Int) error {
	if err := l.policy.Require(caller, RoleMintAndBurn); err != nil {
		return err
	}
	if amount.IsNil() || amount.IsNegative() {
		return &types.InvalidAmountError{Amount: amount}
	}
	if rate.IsNil() || rate.IsNegative() {
		return &types.InvalidAmountError{Amount: rate}
	}
	h := l.settle(tx, to)
	// A funded holder keeps its pinned rate on top-ups; only a holder whose
	// settled principal is zero gets (re-)pinned.
	if h.Principal.IsZero() {
		h.PinnedRate = rate
	}
	h.Principal = h.Principal.Add(amount)
	return nil
}

// Burn settles from, then debits amount from its principal.
func (l *RebaseLedger) Burn(caller, from types.Address, amount sdkmath.Int) error {
	return l.store.Update(func(tx *Txn) error {
		return l.BurnTx(tx, caller, from, amount)
	})
}

// BurnTx is Burn against an open unit of work.
func (l *RebaseLedger) BurnTx(tx *Txn, caller, from types.Address, amount sdkmath.Int) error {
	if err := l.policy.Require(caller, RoleMintAndBurn); err != nil {
		return err
	}
	if amount.IsNil() || amount.IsNegative() {
		return &types.InvalidAmountError{Amount: amount}
	}
	h := l.settle(tx, from)
	if h.Principal.LT(amount) {
		return &types.InsufficientBalanceError{Holder: from, Requested: amount, Available: h.Principal}
	}
	h.Principal = h.Principal.Sub(amount)
	return nil
}

// SettleTx folds from's accrued interest into principal and returns the
// settled principal. Composite operations use it to resolve the max sentinel.
func (l *RebaseLedger) SettleTx(tx *Txn, user types.Address) sdkmath.Int {
	return l.settle(tx, user).Principal
}

// UserRateTx reads user's pinned rate inside an open unit of work.
func (l *RebaseLedger) UserRateTx(tx *Txn, user types.Address) sdkmath.Int {
	return tx.Holder(user).PinnedRate
}

// Transfer moves amount from from to to. The max sentinel substitutes from's
// full settled balance. A receiver with zero settled balance inherits the
// sender's pinned rate.
func (l *RebaseLedger) Transfer(from, to types.Address, amount sdkmath.Int) error {
	return l.store.Update(func(tx *Txn) error {
		return l.transferTx(tx, from, to, amount)
	})
}

// TransferFrom moves amount from from to to on behalf of spender. Allowance
// bookkeeping is out of scope here; the token-standard surface enforcing it
// sits in front of this ledger.
func (l *RebaseLedger) TransferFrom(spender, from, to types.Address, amount sdkmath.Int) error {
	return l.store.Update(func(tx *Txn) error {
		return l.transferTx(tx, from, to, amount)
	})
}

func (l *RebaseLedger) transferTx(tx *Txn, from, to types.Address, amount sdkmath.Int) error {
	if amount.IsNil() || amount.IsNegative() {
		return &types.InvalidAmountError{Amount: amount}
	}
	src := l.settle(tx, from)
	if types.IsMaxSentinel(amount) {
		amount = src.Principal
	}
	if src.Principal.LT(amount) {
		return &types.InsufficientBalanceError{Holder: from, Requested: amount, Available: src.Principal}
	}
	dst := l.settle(tx, to)
	// Re-pin happens post-settlement, pre-increment: a receiver whose settled
	// balance is exactly zero starts fresh at the sender's rate.
	if dst.Principal.IsZero() {
		dst.PinnedRate = src.PinnedRate
	}
	src.Principal = src.Principal.Sub(amount)
	dst.Principal = dst.Principal.Add(amount)
	return nil
}

// BalanceOf is a pure view: settled principal scaled by the linear interest
// factor since the holder's last accrual. No state is written.
func (l *RebaseLedger) BalanceOf(user types.Address) sdkmath.Int {
	h, ok := l.store.Holder(user)
	if !ok {
		return sdkmath.ZeroInt()
	}
	return accruedBalance(&h, l.now().Unix())
}

// PrincipalBalanceOf returns raw principal with no accrual applied.
func (l *RebaseLedger) PrincipalBalanceOf(user types.Address) sdkmath.Int {
	h, _ := l.store.Holder(user)
	return h.Principal
}

// GetUserInterestRate returns the rate user's balance is pinned to.
func (l *RebaseLedger) GetUserInterestRate(user types.Address) sdkmath.Int {
	h, _ := l.store.Holder(user)
	return h.PinnedRate
}

// GetInterestRate returns the global rate newly-credited holders are pinned to.
func (l *RebaseLedger) GetInterestRate() sdkmath.Int {
	return l.store.GlobalRate()
}

// settle converts elapsed time into principal for user and advances the
// accrual clock. Every mutator calls it before acting so balance changes are
// computed against up-to-date accrued values.
func (l *RebaseLedger) settle(tx *Txn, user types.Address) *Holder {
	h := tx.Holder(user)
	nowUnix := l.now().Unix()
	h.Principal = accruedBalance(h, nowUnix)
	h.LastAccrualAt = nowUnix
	return h
}
