package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rebaselabs/rebase-bridge/internal/api"
	"github.com/rebaselabs/rebase-bridge/internal/config"
	"github.com/rebaselabs/rebase-bridge/internal/db"
	dbmodel "github.com/rebaselabs/rebase-bridge/internal/db/model"
	"github.com/rebaselabs/rebase-bridge/internal/ledger"
	"github.com/rebaselabs/rebase-bridge/internal/observability/metrics"
	"github.com/rebaselabs/rebase-bridge/internal/pool"
	"github.com/rebaselabs/rebase-bridge/internal/services"
	"github.com/rebaselabs/rebase-bridge/internal/transport"
	"github.com/rebaselabs/rebase-bridge/internal/types"
	"github.com/rebaselabs/rebase-bridge/internal/vault"
)

func StartServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start-server",
		Short: "Starts the rebase bridge server",
		Args:  cobra.ExactArgs(0),
		RunE:  startServer,
	}

	return cmd
}

func startServer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// load config
	cfgPath := GetConfigPath()
	cfg, err := config.New(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg(fmt.Sprintf("error while loading config file: %s", cfgPath))
	}

	err = dbmodel.Setup(ctx, &cfg.Db)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up transfer db model")
	}

	// create new db client
	var dbClient db.DbInterface
	dbClient, err = db.New(ctx, cfg.Db)
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating db client")
	}
	dbClient = db.NewDbWithMetrics(dbClient)

	bridge, err := transport.NewBridge(&cfg.Queue)
	if err != nil {
		log.Fatal().Err(err).Msg("error while connecting to the bridge broker")
	}
	defer bridge.Shutdown()

	l, v, p, err := buildLedger(&cfg.Ledger)
	if err != nil {
		log.Fatal().Err(err).Msg("error while building the ledger")
	}

	// initialize metrics with the metrics port from config
	metricsPort := cfg.Metrics.GetMetricsPort()
	metrics.Init(metricsPort)

	service := services.NewService(cfg, dbClient, l, v, p, bridge)
	if err := service.StartBridgeSync(ctx); err != nil {
		log.Fatal().Err(err).Msg("error while starting bridge sync")
	}

	server := api.New(&cfg.Server, service)
	return server.Start(ctx)
}

// buildLedger wires the store, the access policy, the vault and the pool
// from the ledger config: genesis rate, role grants and remote chains.
func buildLedger(cfg *config.LedgerConfig) (*ledger.RebaseLedger, *vault.Vault, *pool.Pool, error) {
	genesisRate, err := cfg.GenesisRate()
	if err != nil {
		return nil, nil, nil, err
	}
	store, err := ledger.NewStore(genesisRate)
	if err != nil {
		return nil, nil, nil, err
	}

	admin := mustAddress(cfg.AdminAddress)
	operator := mustAddress(cfg.OperatorAddress)
	vaultAddr := mustAddress(cfg.VaultAddress)
	poolAddr := mustAddress(cfg.PoolAddress)
	tokenAddr := mustAddress(cfg.TokenAddress)

	policy := ledger.NewAccessPolicy(admin)
	l := ledger.New(store, policy)
	if err := policy.Grant(admin, ledger.RoleRateOperator, operator); err != nil {
		return nil, nil, nil, err
	}
	for _, addr := range []types.Address{vaultAddr, poolAddr} {
		if err := l.GrantMintAndBurnRoleAccess(admin, addr); err != nil {
			return nil, nil, nil, err
		}
	}

	v := vault.New(l, vault.NewBank(), vaultAddr, tokenAddr)

	allowList := pool.NewAllowList(cfg.EnforceAllowList)
	for _, sender := range cfg.AllowedSenders {
		allowList.AllowSender(mustAddress(sender))
	}
	p := pool.New(l, allowList, poolAddr)
	for _, remote := range cfg.Remotes {
		p.AddRemote(pool.RemoteChain{
			Selector:     types.ChainSelector(remote.ChainSelector),
			TokenAddress: mustAddress(remote.TokenAddress),
			PoolAddress:  mustAddress(remote.PoolAddress),
		})
		allowList.TrustRemotePool(types.ChainSelector(remote.ChainSelector), mustAddress(remote.PoolAddress))
	}
	return l, v, p, nil
}

// mustAddress is safe after config validation.
func mustAddress(s string) types.Address {
	addr, err := types.NewAddress(s)
	if err != nil {
		panic(err)
	}
	return addr
}
