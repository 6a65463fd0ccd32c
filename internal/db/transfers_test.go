//go:build integration

package db_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebaselabs/rebase-bridge/internal/db"
	"github.com/rebaselabs/rebase-bridge/internal/db/model"
	"github.com/rebaselabs/rebase-bridge/internal/types"
	"github.com/rebaselabs/rebase-bridge/testutil"
)

func outboundDoc(state types.TransferState) *model.OutboundTransferDocument {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &model.OutboundTransferDocument{
		MessageID:         uuid.New().String(),
		Sender:            testutil.RandomAddress().String(),
		Receiver:          testutil.RandomAddress().String(),
		Amount:            testutil.RandomAmount().String(),
		DestChainSelector: 2002,
		DestTokenAddress:  testutil.RandomAddress().String(),
		PoolData:          []byte{0x01, 0x02, 0x03},
		State:             state,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func TestOutboundTransfer(t *testing.T) {
	ctx := t.Context()
	t.Cleanup(func() {
		resetDatabase(t)
	})

	t.Run("not found", func(t *testing.T) {
		doc, err := testDB.GetOutboundTransfer(ctx, uuid.New().String())
		assert.True(t, db.IsNotFoundError(err))
		assert.Nil(t, doc)
	})

	t.Run("save and get", func(t *testing.T) {
		doc := outboundDoc(types.TransferStatePending)
		require.NoError(t, testDB.SaveOutboundTransfer(ctx, doc))

		found, err := testDB.GetOutboundTransfer(ctx, doc.MessageID)
		require.NoError(t, err)
		assert.Equal(t, doc, found)
	})

	t.Run("duplicate message id", func(t *testing.T) {
		doc := outboundDoc(types.TransferStatePending)
		require.NoError(t, testDB.SaveOutboundTransfer(ctx, doc))

		err := testDB.SaveOutboundTransfer(ctx, doc)
		assert.True(t, db.IsDuplicateKeyError(err))
	})

	t.Run("update state", func(t *testing.T) {
		doc := outboundDoc(types.TransferStatePending)
		require.NoError(t, testDB.SaveOutboundTransfer(ctx, doc))
		require.NoError(t, testDB.UpdateOutboundTransferState(ctx, doc.MessageID, types.TransferStateSent))

		found, err := testDB.GetOutboundTransfer(ctx, doc.MessageID)
		require.NoError(t, err)
		assert.Equal(t, types.TransferStateSent, found.State)
	})

	t.Run("update missing record", func(t *testing.T) {
		err := testDB.UpdateOutboundTransferState(ctx, uuid.New().String(), types.TransferStateSent)
		assert.True(t, db.IsNotFoundError(err))
	})
}

func TestListOutboundTransfersByState(t *testing.T) {
	ctx := t.Context()
	t.Cleanup(func() {
		resetDatabase(t)
	})

	var pending []*model.OutboundTransferDocument
	for i := 0; i < 3; i++ {
		doc := outboundDoc(types.TransferStatePending)
		doc.CreatedAt = doc.CreatedAt.Add(time.Duration(i) * time.Second)
		require.NoError(t, testDB.SaveOutboundTransfer(ctx, doc))
		pending = append(pending, doc)
	}
	sent := outboundDoc(types.TransferStateSent)
	require.NoError(t, testDB.SaveOutboundTransfer(ctx, sent))

	docs, err := testDB.ListOutboundTransfersByState(ctx, types.TransferStatePending, 10)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	// oldest first
	for i, doc := range docs {
		assert.Equal(t, pending[i].MessageID, doc.MessageID)
	}

	limited, err := testDB.ListOutboundTransfersByState(ctx, types.TransferStatePending, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestInboundMessage(t *testing.T) {
	ctx := t.Context()
	t.Cleanup(func() {
		resetDatabase(t)
	})

	claim := &model.InboundMessageDocument{
		MessageID:           uuid.New().String(),
		SourceChainSelector: 1001,
		Receiver:            testutil.RandomAddress().String(),
		Amount:              testutil.RandomAmount().String(),
		State:               types.TransferStatePending,
		ProcessedAt:         time.Now().UTC().Truncate(time.Millisecond),
	}

	t.Run("claim is exclusive", func(t *testing.T) {
		require.NoError(t, testDB.ClaimInboundMessage(ctx, claim))

		err := testDB.ClaimInboundMessage(ctx, claim)
		assert.True(t, db.IsDuplicateKeyError(err))
	})

	t.Run("record outcome", func(t *testing.T) {
		require.NoError(t, testDB.UpdateInboundMessageState(ctx, claim.MessageID, types.TransferStateCompleted))
	})

	t.Run("record outcome of missing claim", func(t *testing.T) {
		err := testDB.UpdateInboundMessageState(ctx, uuid.New().String(), types.TransferStateFailed)
		assert.True(t, db.IsNotFoundError(err))
	})
}
