package cli

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rebaselabs/rebase-bridge/internal/config"
	"github.com/rebaselabs/rebase-bridge/internal/db"
	"github.com/rebaselabs/rebase-bridge/internal/types"
)

const dumpTransfersLimit = 100

// DumpTransfersCmd prints recent transfer records, mainly to spot outbound
// legs stuck in PENDING (burned but never handed to the broker).
func DumpTransfersCmd() *cobra.Command {
	var state string
	cmd := &cobra.Command{
		Use:   "dump-transfers",
		Short: "Dumps recent cross-chain transfer records",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := config.New(GetConfigPath())
			if err != nil {
				return err
			}
			dbClient, err := db.New(ctx, cfg.Db)
			if err != nil {
				return err
			}
			defer func() {
				if err := dbClient.Shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error while disconnecting db client")
				}
			}()

			docs, err := dbClient.ListOutboundTransfersByState(ctx, types.TransferState(state), dumpTransfersLimit)
			if err != nil {
				return err
			}
			spew.Dump(docs)
			return nil
		},
	}
	cmd.Flags().StringVar(&state, "state", types.TransferStatePending.String(), "transfer state to dump")
	return cmd
}
