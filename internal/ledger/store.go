package ledger

import (
	"sync"

	sdkmath "cosmossdk.io/math"

	"github.com/rebaselabs/rebase-bridge/internal/types"
)

// Holder is one account's stored state. Principal is raw minted units and
// never reflects accrual directly; accrued interest is folded in only when a
// mutator settles the holder.
type Holder struct {
	Principal     sdkmath.Int
	PinnedRate    sdkmath.Int
	LastAccrualAt int64 // unix seconds
}

func newHolder() *Holder {
	return &Holder{
		Principal:  sdkmath.ZeroInt(),
		PinnedRate: sdkmath.ZeroInt(),
	}
}

func (h *Holder) clone() *Holder {
	c := *h
	return &c
}

// Store is the holder arena for a single ledger. It is passed to every
// component as a constructor dependency; there is no ambient singleton.
//
// All mutations go through Update, which serializes operations under one
// mutex so each public operation is a single atomic transition.
type Store struct {
	mu         sync.RWMutex
	holders    map[types.Address]*Holder
	globalRate sdkmath.Int
}

// NewStore creates a store with the given genesis global rate.
func NewStore(genesisRate sdkmath.Int) (*Store, error) {
	if genesisRate.IsNil() || genesisRate.IsNegative() {
		return nil, &types.InvalidAmountError{Amount: genesisRate}
	}
	return &Store{
		holders:    make(map[types.Address]*Holder),
		globalRate: genesisRate,
	}, nil
}

// GlobalRate returns the committed global rate.
func (s *Store) GlobalRate() sdkmath.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.globalRate
}

// Holder returns a copy of the committed holder state and whether the holder
// has ever been credited.
func (s *Store) Holder(addr types.Address) (Holder, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.holders[addr]
	if !ok {
		return *newHolder(), false
	}
	return *h, true
}

// Update runs fn against a staged view of the store. Staged writes are
// committed only if fn returns nil; any error discards them all, so a
// settle-then-mutate sequence is observable only as a whole.
func (s *Store) Update(fn func(tx *Txn) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Txn{
		store:  s,
		staged: make(map[types.Address]*Holder),
	}
	if err := fn(tx); err != nil {
		return err
	}

	for addr, h := range tx.staged {
		s.holders[addr] = h
	}
	if tx.stagedRate != nil {
		s.globalRate = *tx.stagedRate
	}
	return nil
}

// Txn is one unit of work against the store. Holder state read through it is
// staged on first access; the caller mutates the staged copies in place.
type Txn struct {
	store      *Store
	staged     map[types.Address]*Holder
	stagedRate *sdkmath.Int
}

// Holder returns the staged state for addr, loading it from the store on
// first access. Unknown holders start zeroed.
func (tx *Txn) Holder(addr types.Address) *Holder {
	if h, ok := tx.staged[addr]; ok {
		return h
	}
	var h *Holder
	if committed, ok := tx.store.holders[addr]; ok {
		h = committed.clone()
	} else {
		h = newHolder()
	}
	tx.staged[addr] = h
	return h
}

// GlobalRate returns the staged global rate, falling back to the committed one.
func (tx *Txn) GlobalRate() sdkmath.Int {
	if tx.stagedRate != nil {
		return *tx.stagedRate
	}
	return tx.store.globalRate
}

// SetGlobalRate stages a new global rate.
func (tx *Txn) SetGlobalRate(rate sdkmath.Int) {
	tx.stagedRate = &rate
}
