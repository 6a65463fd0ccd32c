package pool

import (
	"context"
	"sync"

	"github.com/rebaselabs/rebase-bridge/internal/types"
)

// AllowList is an Authorizer gating outbound transfers by sender and inbound
// messages by the source pool that produced them. With sender enforcement
// disabled it only checks the inbound origin.
type AllowList struct {
	mu          sync.RWMutex
	enforce     bool
	senders     map[types.Address]struct{}
	remotePools map[types.ChainSelector]types.Address
}

func NewAllowList(enforce bool) *AllowList {
	return &AllowList{
		enforce:     enforce,
		senders:     make(map[types.Address]struct{}),
		remotePools: make(map[types.ChainSelector]types.Address),
	}
}

// AllowSender admits an address to the outbound allow-list.
func (a *AllowList) AllowSender(addr types.Address) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.senders[addr] = struct{}{}
}

// TrustRemotePool registers the paired pool address for a source chain.
func (a *AllowList) TrustRemotePool(selector types.ChainSelector, pool types.Address) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.remotePools[selector] = pool
}

func (a *AllowList) AuthorizeOutbound(ctx context.Context, in types.LockOrBurnIn) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !a.enforce {
		return nil
	}
	if _, ok := a.senders[in.Sender]; !ok {
		return &types.UnauthorizedError{Caller: in.Sender, Role: "allow-listed sender"}
	}
	return nil
}

func (a *AllowList) AuthorizeInbound(ctx context.Context, in types.ReleaseOrMintIn) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	trusted, ok := a.remotePools[in.SourceChainSelector]
	if !ok || trusted != in.SourcePoolAddress {
		return &types.UnauthorizedError{Caller: in.SourcePoolAddress, Role: "trusted remote pool"}
	}
	return nil
}
