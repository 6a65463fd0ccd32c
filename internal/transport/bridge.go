package transport

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/avast/retry-go/v4"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/rebaselabs/rebase-bridge/internal/config"
	"github.com/rebaselabs/rebase-bridge/internal/types"
)

// BridgeInterface is the transport surface the service layer depends on.
// Delivery is at-least-once with no ordering guarantee; the consumer side is
// responsible for replay protection.
type BridgeInterface interface {
	Publish(ctx context.Context, env Envelope) error
	Subscribe(ctx context.Context, selector types.ChainSelector, handler Handler) error
	Shutdown()
}

// Handler processes one delivered envelope. A nil return acks the message; an
// error nacks it back onto the queue for redelivery.
type Handler func(ctx context.Context, env Envelope) error

// Bridge moves envelopes between chains over AMQP, one durable queue per
// destination chain selector.
type Bridge struct {
	cfg  *config.QueueConfig
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewBridge(cfg *config.QueueConfig) (*Bridge, error) {
	conn, err := amqp.Dial(cfg.Url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	return &Bridge{cfg: cfg, conn: conn, ch: ch}, nil
}

func (b *Bridge) queueName(selector types.ChainSelector) string {
	return fmt.Sprintf("%s-%d", b.cfg.QueuePrefix, selector)
}

func (b *Bridge) declareQueue(selector types.ChainSelector) (string, error) {
	name := b.queueName(selector)
	if _, err := b.ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
		return "", fmt.Errorf("failed to declare queue %s: %w", name, err)
	}
	return name, nil
}

// Publish hands an envelope to the destination chain's queue, retrying
// transient broker errors. The burn this envelope belongs to has already
// committed, so the caller records the transfer before publishing.
func (b *Bridge) Publish(ctx context.Context, env Envelope) error {
	queue, err := b.declareQueue(env.DestChainSelector)
	if err != nil {
		return err
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope %s: %w", env.MessageID, err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, b.cfg.PublishTimeout)
	defer cancel()

	return retry.Do(
		func() error {
			return b.ch.PublishWithContext(publishCtx, "", queue, false, false, amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    env.MessageID,
				Body:         body,
			})
		},
		retry.Attempts(b.cfg.PublishAttempts),
		retry.Context(publishCtx),
		retry.OnRetry(func(n uint, err error) {
			log.Warn().
				Err(err).
				Uint("attempt", n).
				Str("message_id", env.MessageID).
				Msg("retrying bridge publish")
		}),
	)
}

// Subscribe consumes the queue for the given (local) chain selector and runs
// the handler for each delivery. Handler errors nack the message back onto
// the queue; malformed payloads are dropped, there is nothing to retry.
func (b *Bridge) Subscribe(ctx context.Context, selector types.ChainSelector, handler Handler) error {
	queue, err := b.declareQueue(selector)
	if err != nil {
		return err
	}
	deliveries, err := b.ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume queue %s: %w", queue, err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				b.handleDelivery(ctx, d, handler)
			}
		}
	}()
	return nil
}

func (b *Bridge) handleDelivery(ctx context.Context, d amqp.Delivery, handler Handler) {
	var env Envelope
	if err := json.Unmarshal(d.Body, &env); err != nil {
		log.Error().Err(err).Str("message_id", d.MessageId).Msg("dropping undecodable bridge message")
		if err := d.Nack(false, false); err != nil {
			log.Error().Err(err).Msg("failed to nack bridge message")
		}
		return
	}
	if err := handler(ctx, env); err != nil {
		log.Error().Err(err).Str("message_id", env.MessageID).Msg("bridge message handling failed, requeueing")
		if err := d.Nack(false, true); err != nil {
			log.Error().Err(err).Msg("failed to nack bridge message")
		}
		return
	}
	if err := d.Ack(false); err != nil {
		log.Error().Err(err).Str("message_id", env.MessageID).Msg("failed to ack bridge message")
	}
}

// Shutdown gracefully stops the interaction with the broker.
func (b *Bridge) Shutdown() {
	log.Info().Msg("shutting down bridge transport")
	if err := b.ch.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close channel")
	}
	if err := b.conn.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close connection")
	}
}
