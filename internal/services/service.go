package services

import (
	"context"

	"github.com/rebaselabs/rebase-bridge/internal/config"
	"github.com/rebaselabs/rebase-bridge/internal/db"
	"github.com/rebaselabs/rebase-bridge/internal/ledger"
	"github.com/rebaselabs/rebase-bridge/internal/pool"
	"github.com/rebaselabs/rebase-bridge/internal/transport"
	"github.com/rebaselabs/rebase-bridge/internal/types"
	"github.com/rebaselabs/rebase-bridge/internal/vault"
)

type Service struct {
	cfg    *config.Config
	db     db.DbInterface
	ledger *ledger.RebaseLedger
	vault  *vault.Vault
	pool   *pool.Pool
	bridge transport.BridgeInterface
}

func NewService(
	cfg *config.Config,
	db db.DbInterface,
	l *ledger.RebaseLedger,
	v *vault.Vault,
	p *pool.Pool,
	bridge transport.BridgeInterface,
) *Service {
	return &Service{
		cfg:    cfg,
		db:     db,
		ledger: l,
		vault:  v,
		pool:   p,
		bridge: bridge,
	}
}

// Ledger exposes the ledger's read surface to the API layer.
func (s *Service) Ledger() *ledger.RebaseLedger {
	return s.ledger
}

// Vault exposes the vault to the API layer.
func (s *Service) Vault() *vault.Vault {
	return s.vault
}

// StartBridgeSync subscribes the destination leg to this chain's queue.
func (s *Service) StartBridgeSync(ctx context.Context) error {
	return s.bridge.Subscribe(ctx, s.localSelector(), s.handleInbound)
}

func (s *Service) localSelector() types.ChainSelector {
	return types.ChainSelector(s.cfg.Ledger.ChainSelector)
}
