package services

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebaselabs/rebase-bridge/internal/config"
	"github.com/rebaselabs/rebase-bridge/internal/db"
	"github.com/rebaselabs/rebase-bridge/internal/db/model"
	"github.com/rebaselabs/rebase-bridge/internal/ledger"
	"github.com/rebaselabs/rebase-bridge/internal/observability/metrics"
	"github.com/rebaselabs/rebase-bridge/internal/pool"
	"github.com/rebaselabs/rebase-bridge/internal/transport"
	"github.com/rebaselabs/rebase-bridge/internal/types"
	"github.com/rebaselabs/rebase-bridge/internal/vault"
	"github.com/rebaselabs/rebase-bridge/testutil"
)

const (
	admin     = types.Address("0x0000000000000000000000000000000000000001")
	minter    = types.Address("0x0000000000000000000000000000000000000003")
	vaultAddr = types.Address("0x0000000000000000000000000000000000000010")
	tokenAddr = types.Address("0x0000000000000000000000000000000000000011")
	poolAddrA = "0x00000000000000000000000000000000000000a0"
	poolAddrB = "0x00000000000000000000000000000000000000b0"
	chainA    = types.ChainSelector(1001)
	chainB    = types.ChainSelector(2002)
)

var genesisRate = sdkmath.NewInt(50_000_000_000)

func TestMain(m *testing.M) {
	metrics.Init(0)
	os.Exit(m.Run())
}

// fakeDb is an in-memory DbInterface for orchestration tests.
type fakeDb struct {
	mu       sync.Mutex
	outbound map[string]*model.OutboundTransferDocument
	inbound  map[string]*model.InboundMessageDocument
}

func newFakeDb() *fakeDb {
	return &fakeDb{
		outbound: make(map[string]*model.OutboundTransferDocument),
		inbound:  make(map[string]*model.InboundMessageDocument),
	}
}

func (f *fakeDb) Ping(ctx context.Context) error { return nil }

func (f *fakeDb) SaveOutboundTransfer(ctx context.Context, doc *model.OutboundTransferDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.outbound[doc.MessageID]; ok {
		return &db.DuplicateKeyError{Key: doc.MessageID, Message: "outbound transfer already exists"}
	}
	copied := *doc
	f.outbound[doc.MessageID] = &copied
	return nil
}

func (f *fakeDb) UpdateOutboundTransferState(ctx context.Context, messageID string, newState types.TransferState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.outbound[messageID]
	if !ok {
		return &db.NotFoundError{Key: messageID, Message: "outbound transfer not found"}
	}
	doc.State = newState
	return nil
}

func (f *fakeDb) GetOutboundTransfer(ctx context.Context, messageID string) (*model.OutboundTransferDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.outbound[messageID]
	if !ok {
		return nil, &db.NotFoundError{Key: messageID, Message: "outbound transfer not found"}
	}
	copied := *doc
	return &copied, nil
}

func (f *fakeDb) ListOutboundTransfersByState(ctx context.Context, state types.TransferState, limit int64) ([]model.OutboundTransferDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var docs []model.OutboundTransferDocument
	for _, doc := range f.outbound {
		if doc.State == state {
			docs = append(docs, *doc)
		}
	}
	return docs, nil
}

func (f *fakeDb) ClaimInboundMessage(ctx context.Context, doc *model.InboundMessageDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.inbound[doc.MessageID]; ok {
		return &db.DuplicateKeyError{Key: doc.MessageID, Message: "inbound message already claimed"}
	}
	copied := *doc
	f.inbound[doc.MessageID] = &copied
	return nil
}

func (f *fakeDb) UpdateInboundMessageState(ctx context.Context, messageID string, newState types.TransferState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.inbound[messageID]
	if !ok {
		return &db.NotFoundError{Key: messageID, Message: "inbound message not found"}
	}
	doc.State = newState
	return nil
}

// fakeBridge records published envelopes instead of talking to a broker.
type fakeBridge struct {
	mu        sync.Mutex
	published []transport.Envelope
}

func (f *fakeBridge) Publish(ctx context.Context, env transport.Envelope) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, env)
	return nil
}

func (f *fakeBridge) Subscribe(ctx context.Context, selector types.ChainSelector, handler transport.Handler) error {
	return nil
}

func (f *fakeBridge) Shutdown() {}

type fixture struct {
	svc    *Service
	ledger *ledger.RebaseLedger
	db     *fakeDb
	bridge *fakeBridge
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := ledger.NewStore(genesisRate)
	require.NoError(t, err)

	f := &fixture{now: time.Unix(1_700_000_000, 0)}
	policy := ledger.NewAccessPolicy(admin)
	f.ledger = ledger.New(store, policy, ledger.WithClock(func() time.Time {
		return f.now
	}))
	require.NoError(t, f.ledger.GrantMintAndBurnRoleAccess(admin, minter))
	require.NoError(t, f.ledger.GrantMintAndBurnRoleAccess(admin, vaultAddr))
	poolAddr, err := types.NewAddress(poolAddrA)
	require.NoError(t, err)
	require.NoError(t, f.ledger.GrantMintAndBurnRoleAccess(admin, poolAddr))

	allow := pool.NewAllowList(false)
	remotePool, err := types.NewAddress(poolAddrB)
	require.NoError(t, err)
	allow.TrustRemotePool(chainB, remotePool)
	p := pool.New(f.ledger, allow, poolAddr)
	p.AddRemote(pool.RemoteChain{
		Selector:     chainB,
		TokenAddress: tokenAddr,
		PoolAddress:  remotePool,
	})

	v := vault.New(f.ledger, vault.NewBank(), vaultAddr, tokenAddr)

	cfg := &config.Config{
		Ledger: config.LedgerConfig{
			ChainSelector: uint64(chainA),
			PoolAddress:   poolAddrA,
		},
	}
	f.db = newFakeDb()
	f.bridge = &fakeBridge{}
	f.svc = NewService(cfg, f.db, f.ledger, v, p, f.bridge)
	return f
}

func TestSendToRemote(t *testing.T) {
	t.Run("burns, records and publishes", func(t *testing.T) {
		f := newFixture(t)
		sender := testutil.RandomAddress()
		receiver := testutil.RandomAddress()
		require.NoError(t, f.ledger.Mint(minter, sender, sdkmath.NewInt(1000), genesisRate))

		messageID, err := f.svc.SendToRemote(context.Background(), sender, receiver, sdkmath.NewInt(400), chainB)
		require.NoError(t, err)

		assert.Equal(t, int64(600), f.ledger.BalanceOf(sender).Int64())

		doc, err := f.db.GetOutboundTransfer(context.Background(), messageID)
		require.NoError(t, err)
		assert.Equal(t, types.TransferStateSent, doc.State)
		assert.Equal(t, sender.String(), doc.Sender)

		require.Len(t, f.bridge.published, 1)
		env := f.bridge.published[0]
		assert.Equal(t, messageID, env.MessageID)
		assert.Equal(t, chainB, env.DestChainSelector)
		assert.Equal(t, chainA, env.SourceChainSelector)
		assert.Equal(t, "400", env.Amount)
	})

	t.Run("burn failure publishes nothing", func(t *testing.T) {
		f := newFixture(t)
		sender := testutil.RandomAddress()

		_, err := f.svc.SendToRemote(context.Background(), sender, testutil.RandomAddress(), sdkmath.NewInt(400), chainB)
		require.Error(t, err)
		assert.True(t, types.IsInsufficientBalanceError(err))
		assert.Empty(t, f.bridge.published)
		assert.Empty(t, f.db.outbound)
	})
}

func TestHandleInbound(t *testing.T) {
	poolData := func(t *testing.T, rate sdkmath.Int) []byte {
		t.Helper()
		data, err := pool.EncodeRate(rate)
		require.NoError(t, err)
		return data
	}
	sourcePool := func(t *testing.T) types.Address {
		t.Helper()
		addr, err := types.NewAddress(poolAddrB)
		require.NoError(t, err)
		return addr
	}

	t.Run("mints once and records completion", func(t *testing.T) {
		f := newFixture(t)
		receiver := testutil.RandomAddress()
		carried := genesisRate.QuoRaw(2)
		env := transport.NewEnvelope(chainB, chainA, sourcePool(t), receiver, sdkmath.NewInt(500), poolData(t, carried))

		require.NoError(t, f.svc.handleInbound(context.Background(), env))
		assert.Equal(t, int64(500), f.ledger.BalanceOf(receiver).Int64())
		assert.True(t, f.ledger.GetUserInterestRate(receiver).Equal(carried))
		assert.Equal(t, types.TransferStateCompleted, f.db.inbound[env.MessageID].State)
	})

	t.Run("redelivery does not mint twice", func(t *testing.T) {
		f := newFixture(t)
		receiver := testutil.RandomAddress()
		env := transport.NewEnvelope(chainB, chainA, sourcePool(t), receiver, sdkmath.NewInt(500), poolData(t, genesisRate))

		require.NoError(t, f.svc.handleInbound(context.Background(), env))
		require.NoError(t, f.svc.handleInbound(context.Background(), env))
		require.NoError(t, f.svc.handleInbound(context.Background(), env))
		assert.Equal(t, int64(500), f.ledger.BalanceOf(receiver).Int64())
	})

	t.Run("garbage pool data is final, not requeued", func(t *testing.T) {
		f := newFixture(t)
		receiver := testutil.RandomAddress()
		env := transport.NewEnvelope(chainB, chainA, sourcePool(t), receiver, sdkmath.NewInt(500), []byte("garbage"))

		require.NoError(t, f.svc.handleInbound(context.Background(), env))
		assert.True(t, f.ledger.BalanceOf(receiver).IsZero())
		assert.Equal(t, types.TransferStateFailed, f.db.inbound[env.MessageID].State)
	})

	t.Run("malformed envelope is dropped", func(t *testing.T) {
		f := newFixture(t)
		env := transport.Envelope{MessageID: "not-a-uuid", Amount: "10"}
		require.NoError(t, f.svc.handleInbound(context.Background(), env))
		assert.Empty(t, f.db.inbound)
	})
}
