package db

import (
	"context"
	"time"

	"github.com/rebaselabs/rebase-bridge/internal/db/model"
	"github.com/rebaselabs/rebase-bridge/internal/observability/metrics"
	"github.com/rebaselabs/rebase-bridge/internal/types"
)

type DbWithMetrics struct {
	db DbInterface
}

func NewDbWithMetrics(db DbInterface) *DbWithMetrics {
	return &DbWithMetrics{db: db}
}

func (d *DbWithMetrics) Ping(ctx context.Context) error {
	return d.db.Ping(ctx)
}

func (d *DbWithMetrics) SaveOutboundTransfer(ctx context.Context, transferDoc *model.OutboundTransferDocument) error {
	return d.run("SaveOutboundTransfer", func() error {
		return d.db.SaveOutboundTransfer(ctx, transferDoc)
	})
}

func (d *DbWithMetrics) UpdateOutboundTransferState(ctx context.Context, messageID string, newState types.TransferState) error {
	return d.run("UpdateOutboundTransferState", func() error {
		return d.db.UpdateOutboundTransferState(ctx, messageID, newState)
	})
}

func (d *DbWithMetrics) GetOutboundTransfer(ctx context.Context, messageID string) (result *model.OutboundTransferDocument, err error) {
	//nolint:errcheck
	d.run("GetOutboundTransfer", func() error {
		result, err = d.db.GetOutboundTransfer(ctx, messageID)
		return err
	})

	return
}

func (d *DbWithMetrics) ListOutboundTransfersByState(ctx context.Context, state types.TransferState, limit int64) (result []model.OutboundTransferDocument, err error) {
	//nolint:errcheck
	d.run("ListOutboundTransfersByState", func() error {
		result, err = d.db.ListOutboundTransfersByState(ctx, state, limit)
		return err
	})

	return
}

func (d *DbWithMetrics) ClaimInboundMessage(ctx context.Context, messageDoc *model.InboundMessageDocument) error {
	return d.run("ClaimInboundMessage", func() error {
		return d.db.ClaimInboundMessage(ctx, messageDoc)
	})
}

func (d *DbWithMetrics) UpdateInboundMessageState(ctx context.Context, messageID string, newState types.TransferState) error {
	return d.run("UpdateInboundMessageState", func() error {
		return d.db.UpdateInboundMessageState(ctx, messageID, newState)
	})
}

func (d *DbWithMetrics) run(method string, f func() error) error {
	startTime := time.Now()
	err := f()
	duration := time.Since(startTime)

	metrics.RecordDbLatency(duration, method, err != nil)
	return err
}
