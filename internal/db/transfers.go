package db

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rebaselabs/rebase-bridge/internal/db/model"
	"github.com/rebaselabs/rebase-bridge/internal/types"
)

// SaveOutboundTransfer records a burned source leg before the message is
// handed to the transport.
func (db *Database) SaveOutboundTransfer(
	ctx context.Context, transferDoc *model.OutboundTransferDocument,
) error {
	_, err := db.collection(model.OutboundTransferCollection).
		InsertOne(ctx, transferDoc)
	if err != nil {
		var writeErr mongo.WriteException
		if errors.As(err, &writeErr) {
			for _, e := range writeErr.WriteErrors {
				if mongo.IsDuplicateKeyError(e) {
					return &DuplicateKeyError{
						Key:     transferDoc.MessageID,
						Message: "outbound transfer already exists",
					}
				}
			}
		}
		return err
	}
	return nil
}

// UpdateOutboundTransferState advances a transfer record.
func (db *Database) UpdateOutboundTransferState(
	ctx context.Context, messageID string, newState types.TransferState,
) error {
	filter := bson.M{"_id": messageID}
	update := bson.M{
		"$set": bson.M{
			"state":      newState.String(),
			"updated_at": time.Now().UTC(),
		},
	}
	res := db.collection(model.OutboundTransferCollection).
		FindOneAndUpdate(ctx, filter, update)
	if res.Err() != nil {
		if errors.Is(res.Err(), mongo.ErrNoDocuments) {
			return &NotFoundError{
				Key:     messageID,
				Message: "outbound transfer not found",
			}
		}
		return res.Err()
	}
	return nil
}

// GetOutboundTransfer looks a transfer record up by message id.
func (db *Database) GetOutboundTransfer(
	ctx context.Context, messageID string,
) (*model.OutboundTransferDocument, error) {
	res := db.collection(model.OutboundTransferCollection).
		FindOne(ctx, bson.M{"_id": messageID})

	var doc model.OutboundTransferDocument
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     messageID,
				Message: "outbound transfer not found",
			}
		}
		return nil, err
	}
	return &doc, nil
}

// ListOutboundTransfersByState returns up to limit transfer records in the
// given state, oldest first. Used to surface PENDING burns whose message
// never reached the broker.
func (db *Database) ListOutboundTransfersByState(
	ctx context.Context, state types.TransferState, limit int64,
) ([]model.OutboundTransferDocument, error) {
	opts := options.Find().
		SetSort(bson.M{"created_at": 1}).
		SetLimit(limit)
	cursor, err := db.collection(model.OutboundTransferCollection).
		Find(ctx, bson.M{"state": state.String()}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []model.OutboundTransferDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// ClaimInboundMessage inserts the replay-protection claim for a delivered
// message. A DuplicateKeyError means the message was already executed and
// the destination leg must not run again.
func (db *Database) ClaimInboundMessage(
	ctx context.Context, messageDoc *model.InboundMessageDocument,
) error {
	_, err := db.collection(model.InboundMessageCollection).
		InsertOne(ctx, messageDoc)
	if err != nil {
		var writeErr mongo.WriteException
		if errors.As(err, &writeErr) {
			for _, e := range writeErr.WriteErrors {
				if mongo.IsDuplicateKeyError(e) {
					return &DuplicateKeyError{
						Key:     messageDoc.MessageID,
						Message: "inbound message already claimed",
					}
				}
			}
		}
		return err
	}
	return nil
}

// UpdateInboundMessageState records the outcome of the destination leg.
func (db *Database) UpdateInboundMessageState(
	ctx context.Context, messageID string, newState types.TransferState,
) error {
	filter := bson.M{"_id": messageID}
	update := bson.M{
		"$set": bson.M{
			"state":        newState.String(),
			"processed_at": time.Now().UTC(),
		},
	}
	res := db.collection(model.InboundMessageCollection).
		FindOneAndUpdate(ctx, filter, update)
	if res.Err() != nil {
		if errors.Is(res.Err(), mongo.ErrNoDocuments) {
			return &NotFoundError{
				Key:     messageID,
				Message: "inbound message not found",
			}
		}
		return res.Err()
	}
	return nil
}
