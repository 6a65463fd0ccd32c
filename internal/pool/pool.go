package pool

import (
	"context"
	"sync"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/rebaselabs/rebase-bridge/internal/ledger"
	"github.com/rebaselabs/rebase-bridge/internal/types"
)

// Authorizer is the router / allow-list collaborator validating both legs of
// a cross-chain transfer before the pool touches the ledger.
type Authorizer interface {
	AuthorizeOutbound(ctx context.Context, in types.LockOrBurnIn) error
	AuthorizeInbound(ctx context.Context, in types.ReleaseOrMintIn) error
}

// RemoteChain maps a chain selector to the paired token and pool on that chain.
type RemoteChain struct {
	Selector     types.ChainSelector
	TokenAddress types.Address
	PoolAddress  types.Address
}

// Pool is one end of the lock/burn - release/mint protocol. On the source
// chain it burns local units and packages the sender's pinned rate as
// outbound pool data; on the destination chain it unpacks that rate and
// mints with it preserved.
//
// ReleaseOrMint is not idempotent on its own: replay protection for
// redelivered messages lives in the transport layer.
type Pool struct {
	ledger *ledger.RebaseLedger
	auth   Authorizer
	addr   types.Address // holds the mint-and-burn role

	mu      sync.RWMutex
	remotes map[types.ChainSelector]RemoteChain
}

func New(l *ledger.RebaseLedger, auth Authorizer, addr types.Address) *Pool {
	return &Pool{
		ledger:  l,
		auth:    auth,
		addr:    addr,
		remotes: make(map[types.ChainSelector]RemoteChain),
	}
}

// AddRemote registers the paired token and pool for a chain selector.
func (p *Pool) AddRemote(rc RemoteChain) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.remotes[rc.Selector] = rc
}

// Remote returns the configured remote for a selector.
func (p *Pool) Remote(selector types.ChainSelector) (RemoteChain, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	rc, ok := p.remotes[selector]
	return rc, ok
}

// LockOrBurn is the source leg: burn the sender's units and emit the
// destination token address plus the sender's encoded pinned rate. The rate
// travels inside the message because the destination ledger has no knowledge
// of the sender's original mint time or rate.
func (p *Pool) LockOrBurn(ctx context.Context, in types.LockOrBurnIn) (types.LockOrBurnOut, error) {
	if err := p.auth.AuthorizeOutbound(ctx, in); err != nil {
		return types.LockOrBurnOut{}, err
	}
	remote, ok := p.Remote(in.RemoteChainSelector)
	if !ok {
		return types.LockOrBurnOut{}, &types.UnknownRemoteChainError{Selector: in.RemoteChainSelector}
	}

	var rate sdkmath.Int
	err := p.ledger.Atomic(func(tx *ledger.Txn) error {
		rate = p.ledger.UserRateTx(tx, in.Sender)
		return p.ledger.BurnTx(tx, p.addr, in.Sender, in.Amount)
	})
	if err != nil {
		return types.LockOrBurnOut{}, err
	}

	poolData, err := EncodeRate(rate)
	if err != nil {
		return types.LockOrBurnOut{}, err
	}
	log.Debug().
		Str("sender", in.Sender.String()).
		Str("amount", in.Amount.String()).
		Str("rate", rate.String()).
		Uint64("remote_chain", uint64(in.RemoteChainSelector)).
		Msg("locked or burned for cross-chain transfer")
	return types.LockOrBurnOut{
		DestTokenAddress: remote.TokenAddress,
		DestPoolData:     poolData,
	}, nil
}

// ReleaseOrMint is the destination leg: decode the carried rate and mint with
// it preserved, so the receiving balance keeps accruing as if it had always
// lived here at that rate.
func (p *Pool) ReleaseOrMint(ctx context.Context, in types.ReleaseOrMintIn) (types.ReleaseOrMintOut, error) {
	if err := p.auth.AuthorizeInbound(ctx, in); err != nil {
		return types.ReleaseOrMintOut{}, err
	}
	rate, err := DecodeRate(in.SourcePoolData)
	if err != nil {
		return types.ReleaseOrMintOut{}, err
	}
	if err := p.ledger.Mint(p.addr, in.Receiver, in.Amount, rate); err != nil {
		return types.ReleaseOrMintOut{}, err
	}
	log.Debug().
		Str("receiver", in.Receiver.String()).
		Str("amount", in.Amount.String()).
		Str("rate", rate.String()).
		Uint64("source_chain", uint64(in.SourceChainSelector)).
		Msg("released or minted from cross-chain transfer")
	return types.ReleaseOrMintOut{DestinationAmount: in.Amount}, nil
}
