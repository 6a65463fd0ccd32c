package db

import (
	"context"

	"github.com/rebaselabs/rebase-bridge/internal/db/model"
	"github.com/rebaselabs/rebase-bridge/internal/types"
)

type DbInterface interface {
	Ping(ctx context.Context) error
	SaveOutboundTransfer(ctx context.Context, transferDoc *model.OutboundTransferDocument) error
	UpdateOutboundTransferState(ctx context.Context, messageID string, newState types.TransferState) error
	GetOutboundTransfer(ctx context.Context, messageID string) (*model.OutboundTransferDocument, error)
	ListOutboundTransfersByState(ctx context.Context, state types.TransferState, limit int64) ([]model.OutboundTransferDocument, error)
	ClaimInboundMessage(ctx context.Context, messageDoc *model.InboundMessageDocument) error
	UpdateInboundMessageState(ctx context.Context, messageID string, newState types.TransferState) error
}
