package transport

import (
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"

	"github.com/rebaselabs/rebase-bridge/internal/types"
)

// Envelope is the wire form of one bridge message. It carries exactly what
// the destination pool needs to reconstruct an equivalent holder state: the
// amount and the opaque pool data holding the sender's pinned rate.
type Envelope struct {
	MessageID           string              `json:"message_id"`
	SourceChainSelector types.ChainSelector `json:"source_chain_selector"`
	DestChainSelector   types.ChainSelector `json:"dest_chain_selector"`
	SourcePoolAddress   types.Address       `json:"source_pool_address"`
	Receiver            types.Address       `json:"receiver"`
	Amount              string              `json:"amount"`
	PoolData            []byte              `json:"pool_data"`
	SentAt              time.Time           `json:"sent_at"`
}

// NewEnvelope assigns a fresh message id and stamps the send time.
func NewEnvelope(
	source, dest types.ChainSelector,
	sourcePool, receiver types.Address,
	amount sdkmath.Int,
	poolData []byte,
) Envelope {
	return Envelope{
		MessageID:           uuid.New().String(),
		SourceChainSelector: source,
		DestChainSelector:   dest,
		SourcePoolAddress:   sourcePool,
		Receiver:            receiver,
		Amount:              amount.String(),
		PoolData:            poolData,
		SentAt:              time.Now().UTC(),
	}
}

// AmountInt parses the envelope amount.
func (e *Envelope) AmountInt() (sdkmath.Int, error) {
	amount, ok := sdkmath.NewIntFromString(e.Amount)
	if !ok || amount.IsNegative() {
		return sdkmath.ZeroInt(), fmt.Errorf("envelope %s carries malformed amount %q", e.MessageID, e.Amount)
	}
	return amount, nil
}

// Validate rejects envelopes the destination leg cannot act on.
func (e *Envelope) Validate() error {
	if e.MessageID == "" {
		return fmt.Errorf("envelope is missing a message id")
	}
	if _, err := uuid.Parse(e.MessageID); err != nil {
		return fmt.Errorf("envelope message id %q: %w", e.MessageID, err)
	}
	if _, err := e.AmountInt(); err != nil {
		return err
	}
	if _, err := types.NewAddress(e.Receiver.String()); err != nil {
		return fmt.Errorf("envelope %s receiver: %w", e.MessageID, err)
	}
	return nil
}
