package services

import (
	"context"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/rebaselabs/rebase-bridge/internal/db"
	"github.com/rebaselabs/rebase-bridge/internal/db/model"
	"github.com/rebaselabs/rebase-bridge/internal/observability/metrics"
	"github.com/rebaselabs/rebase-bridge/internal/transport"
	"github.com/rebaselabs/rebase-bridge/internal/types"
)

// SendToRemote drives the source leg: lock/burn on this ledger, record the
// transfer, hand the message to the transport. The burn and the remote mint
// are two independently-committed transitions; a crash after the burn leaves
// a PENDING record for reconciliation rather than losing the leg silently.
func (s *Service) SendToRemote(
	ctx context.Context,
	sender, receiver types.Address,
	amount sdkmath.Int,
	destChainSelector types.ChainSelector,
) (string, error) {
	out, err := s.pool.LockOrBurn(ctx, types.LockOrBurnIn{
		Sender:              sender,
		Amount:              amount,
		RemoteChainSelector: destChainSelector,
	})
	if err != nil {
		metrics.RecordBridgeOutbound(uint64(destChainSelector), true)
		return "", fmt.Errorf("failed to lock or burn: %w", err)
	}

	env := transport.NewEnvelope(
		s.localSelector(),
		destChainSelector,
		s.poolAddress(),
		receiver,
		amount,
		out.DestPoolData,
	)
	if err := s.db.SaveOutboundTransfer(ctx, &model.OutboundTransferDocument{
		MessageID:         env.MessageID,
		Sender:            sender.String(),
		Receiver:          receiver.String(),
		Amount:            amount.String(),
		DestChainSelector: uint64(destChainSelector),
		DestTokenAddress:  out.DestTokenAddress.String(),
		PoolData:          out.DestPoolData,
		State:             types.TransferStatePending,
		CreatedAt:         time.Now().UTC(),
		UpdatedAt:         time.Now().UTC(),
	}); err != nil {
		metrics.RecordBridgeOutbound(uint64(destChainSelector), true)
		return "", fmt.Errorf("burned but failed to record outbound transfer %s: %w", env.MessageID, err)
	}

	if err := s.bridge.Publish(ctx, env); err != nil {
		metrics.IncBridgePublishErrors()
		metrics.RecordBridgeOutbound(uint64(destChainSelector), true)
		return "", fmt.Errorf("burned but failed to publish transfer %s: %w", env.MessageID, err)
	}
	if err := s.db.UpdateOutboundTransferState(ctx, env.MessageID, types.TransferStateSent); err != nil {
		return "", fmt.Errorf("published but failed to update transfer %s: %w", env.MessageID, err)
	}

	metrics.RecordBridgeOutbound(uint64(destChainSelector), false)
	log.Info().
		Str("message_id", env.MessageID).
		Str("sender", sender.String()).
		Str("receiver", receiver.String()).
		Str("amount", amount.String()).
		Uint64("dest_chain", uint64(destChainSelector)).
		Msg("cross-chain transfer sent")
	return env.MessageID, nil
}

// handleInbound is the destination leg for one delivered envelope. Delivery
// is at-least-once, so the message id is claimed in the store before the
// mint runs; a redelivered message hits the duplicate claim and is skipped.
func (s *Service) handleInbound(ctx context.Context, env transport.Envelope) error {
	if err := env.Validate(); err != nil {
		// Malformed envelopes are final failures, not transport errors.
		log.Error().Err(err).Str("message_id", env.MessageID).Msg("dropping malformed bridge message")
		return nil
	}
	amount, err := env.AmountInt()
	if err != nil {
		log.Error().Err(err).Str("message_id", env.MessageID).Msg("dropping malformed bridge message")
		return nil
	}

	claim := &model.InboundMessageDocument{
		MessageID:           env.MessageID,
		SourceChainSelector: uint64(env.SourceChainSelector),
		Receiver:            env.Receiver.String(),
		Amount:              env.Amount,
		State:               types.TransferStatePending,
		ProcessedAt:         time.Now().UTC(),
	}
	if err := s.db.ClaimInboundMessage(ctx, claim); err != nil {
		if db.IsDuplicateKeyError(err) {
			metrics.IncBridgeInboundReplays()
			log.Debug().
				Str("message_id", env.MessageID).
				Msg("skipping already executed bridge message")
			return nil
		}
		// Claim must precede the mint; surface the error so the transport
		// redelivers.
		return fmt.Errorf("failed to claim inbound message %s: %w", env.MessageID, err)
	}

	_, err = s.pool.ReleaseOrMint(ctx, types.ReleaseOrMintIn{
		Receiver:            env.Receiver,
		Amount:              amount,
		SourceChainSelector: env.SourceChainSelector,
		SourcePoolAddress:   env.SourcePoolAddress,
		SourcePoolData:      env.PoolData,
	})
	if err != nil {
		// Decode and authorization failures are deterministic: redelivery
		// would fail the same way, so the claim stays and the message is
		// recorded as failed instead of requeued.
		metrics.RecordBridgeInbound(uint64(env.SourceChainSelector), true)
		log.Error().
			Err(err).
			Str("message_id", env.MessageID).
			Msg("destination leg rejected bridge message")
		if err := s.db.UpdateInboundMessageState(ctx, env.MessageID, types.TransferStateFailed); err != nil {
			log.Error().Err(err).Str("message_id", env.MessageID).Msg("failed to record rejected bridge message")
		}
		return nil
	}

	if err := s.db.UpdateInboundMessageState(ctx, env.MessageID, types.TransferStateCompleted); err != nil {
		log.Error().Err(err).Str("message_id", env.MessageID).Msg("failed to record completed bridge message")
	}
	metrics.RecordBridgeInbound(uint64(env.SourceChainSelector), false)
	log.Info().
		Str("message_id", env.MessageID).
		Str("receiver", env.Receiver.String()).
		Str("amount", env.Amount).
		Uint64("source_chain", uint64(env.SourceChainSelector)).
		Msg("cross-chain transfer received")
	return nil
}

func (s *Service) poolAddress() types.Address {
	addr, _ := types.NewAddress(s.cfg.Ledger.PoolAddress)
	return addr
}
