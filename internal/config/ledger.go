package config

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/rebaselabs/rebase-bridge/internal/types"
)

type LedgerConfig struct {
	// ChainSelector identifies this ledger among the bridged chains.
	ChainSelector uint64 `mapstructure:"chain-selector"`
	// GenesisInterestRate is the initial global rate, fixed point over 1e18.
	GenesisInterestRate string `mapstructure:"genesis-interest-rate"`
	TokenAddress        string `mapstructure:"token-address"`
	VaultAddress        string `mapstructure:"vault-address"`
	PoolAddress         string `mapstructure:"pool-address"`
	AdminAddress        string `mapstructure:"admin-address"`
	OperatorAddress     string `mapstructure:"operator-address"`
	// EnforceAllowList turns on the outbound sender allow-list.
	EnforceAllowList bool     `mapstructure:"enforce-allow-list"`
	AllowedSenders   []string `mapstructure:"allowed-senders"`

	Remotes []RemoteChainConfig `mapstructure:"remotes"`
}

type RemoteChainConfig struct {
	ChainSelector uint64 `mapstructure:"chain-selector"`
	TokenAddress  string `mapstructure:"token-address"`
	PoolAddress   string `mapstructure:"pool-address"`
}

func (cfg *LedgerConfig) Validate() error {
	if cfg.ChainSelector == 0 {
		return fmt.Errorf("ledger chain-selector is required")
	}
	if _, err := cfg.GenesisRate(); err != nil {
		return err
	}
	for name, addr := range map[string]string{
		"token-address":    cfg.TokenAddress,
		"vault-address":    cfg.VaultAddress,
		"pool-address":     cfg.PoolAddress,
		"admin-address":    cfg.AdminAddress,
		"operator-address": cfg.OperatorAddress,
	} {
		if _, err := types.NewAddress(addr); err != nil {
			return fmt.Errorf("ledger %s: %w", name, err)
		}
	}
	for _, sender := range cfg.AllowedSenders {
		if _, err := types.NewAddress(sender); err != nil {
			return fmt.Errorf("ledger allowed sender: %w", err)
		}
	}
	for _, remote := range cfg.Remotes {
		if err := remote.Validate(); err != nil {
			return err
		}
		if remote.ChainSelector == cfg.ChainSelector {
			return fmt.Errorf("remote chain-selector %d collides with the local one", remote.ChainSelector)
		}
	}
	return nil
}

func (cfg *RemoteChainConfig) Validate() error {
	if cfg.ChainSelector == 0 {
		return fmt.Errorf("remote chain-selector is required")
	}
	if _, err := types.NewAddress(cfg.TokenAddress); err != nil {
		return fmt.Errorf("remote token-address: %w", err)
	}
	if _, err := types.NewAddress(cfg.PoolAddress); err != nil {
		return fmt.Errorf("remote pool-address: %w", err)
	}
	return nil
}

// GenesisRate parses the configured genesis rate.
func (cfg *LedgerConfig) GenesisRate() (sdkmath.Int, error) {
	rate, ok := sdkmath.NewIntFromString(cfg.GenesisInterestRate)
	if !ok || rate.IsNegative() {
		return sdkmath.ZeroInt(), fmt.Errorf("genesis-interest-rate %q is not a non-negative integer", cfg.GenesisInterestRate)
	}
	return rate, nil
}
