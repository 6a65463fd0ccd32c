package ledger

import (
	"sync"

	"github.com/rebaselabs/rebase-bridge/internal/types"
)

// Enum values for ledger roles
type Role string

const (
	// RoleMintAndBurn gates Mint and Burn; held by the vault and the pool.
	RoleMintAndBurn Role = "mint-and-burn"
	// RoleRateOperator gates SetGlobalRate.
	RoleRateOperator Role = "rate-operator"
)

func (r Role) String() string {
	return string(r)
}

// AccessPolicy is the explicit capability check run before every ledger
// mutator. Grants are managed by a single admin address; the underlying
// role-grant primitive (multi-admin, ownership transfer) is an external
// collaborator.
type AccessPolicy struct {
	mu     sync.RWMutex
	admin  types.Address
	grants map[Role]map[types.Address]struct{}
}

func NewAccessPolicy(admin types.Address) *AccessPolicy {
	return &AccessPolicy{
		admin:  admin,
		grants: make(map[Role]map[types.Address]struct{}),
	}
}

// Grant gives addr the role. Only the admin may grant.
func (p *AccessPolicy) Grant(caller types.Address, role Role, addr types.Address) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if caller != p.admin {
		return &types.UnauthorizedError{Caller: caller, Role: "admin"}
	}
	if p.grants[role] == nil {
		p.grants[role] = make(map[types.Address]struct{})
	}
	p.grants[role][addr] = struct{}{}
	return nil
}

// Revoke removes the role from addr. Only the admin may revoke.
func (p *AccessPolicy) Revoke(caller types.Address, role Role, addr types.Address) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if caller != p.admin {
		return &types.UnauthorizedError{Caller: caller, Role: "admin"}
	}
	delete(p.grants[role], addr)
	return nil
}

// Require returns an UnauthorizedError unless caller holds the role.
func (p *AccessPolicy) Require(caller types.Address, role Role) error {
	if !p.HasRole(caller, role) {
		return &types.UnauthorizedError{Caller: caller, Role: role.String()}
	}
	return nil
}

func (p *AccessPolicy) HasRole(addr types.Address, role Role) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.grants[role][addr]
	return ok
}
