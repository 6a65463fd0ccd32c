package model

import (
	"time"

	"github.com/rebaselabs/rebase-bridge/internal/types"
)

const (
	OutboundTransferCollection = "outbound_transfer"
	InboundMessageCollection   = "inbound_message"
)

// OutboundTransferDocument records one source leg: burned locally, then
// handed to the transport. A record stuck in PENDING marks a burn whose
// message never reached the broker and needs operator reconciliation.
type OutboundTransferDocument struct {
	MessageID         string              `bson:"_id"`
	Sender            string              `bson:"sender"`
	Receiver          string              `bson:"receiver"`
	Amount            string              `bson:"amount"`
	DestChainSelector uint64              `bson:"dest_chain_selector"`
	DestTokenAddress  string              `bson:"dest_token_address"`
	PoolData          []byte              `bson:"pool_data"`
	State             types.TransferState `bson:"state"`
	CreatedAt         time.Time           `bson:"created_at"`
	UpdatedAt         time.Time           `bson:"updated_at"`
}

// InboundMessageDocument is the replay-protection claim for one delivered
// message, keyed by message id so a redelivery cannot mint twice.
type InboundMessageDocument struct {
	MessageID           string              `bson:"_id"`
	SourceChainSelector uint64              `bson:"source_chain_selector"`
	Receiver            string              `bson:"receiver"`
	Amount              string              `bson:"amount"`
	State               types.TransferState `bson:"state"`
	ProcessedAt         time.Time           `bson:"processed_at"`
}
