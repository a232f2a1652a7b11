package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/shared/utils"
)

var ErrNacked = errors.New("event not confirmed by broker")

type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
	Close() error
}

// NoopPublisher drops events. Used when RABBITMQ_URL is unset.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Envelope) error { return nil }
func (NoopPublisher) Close() error                            { return nil }

// AMQPPublisher publishes JSON envelopes to a topic exchange with publisher confirms
type AMQPPublisher struct {
	conn     *amqp091.Connection
	ch       *amqp091.Channel
	exchange string
	mu       sync.Mutex
}

type ConnectionOptions struct {
	URL           string
	Exchange      string
	RetryAttempts int
	Delay         time.Duration
}

const maxDialDelay = 60 * time.Second

// DialWithRetry tries to connect to RabbitMQ with exponential backoff
func DialWithRetry(ctx context.Context, opts ConnectionOptions) (*amqp091.Connection, error) {
	attempts := opts.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error

	for i := 1; i <= attempts; i++ {
		conn, err := amqp091.Dial(opts.URL)
		if err == nil {
			if i > 1 {
				utils.LogInfo("RabbitMQ connected", map[string]interface{}{"attempt": i})
			}
			return conn, nil
		}
		lastErr = err
		if i == attempts {
			break
		}

		sleep := opts.Delay * time.Duration(math.Pow(2, float64(i-1)))
		if sleep > maxDialDelay {
			sleep = maxDialDelay
		}
		utils.LogWarn("RabbitMQ dial failed", map[string]interface{}{
			"attempt": i,
			"sleep":   sleep.String(),
			"error":   err.Error(),
		})

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("dial cancelled: %w", ctx.Err())
		case <-timer.C:
		}
	}

	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", attempts, lastErr)
}

// NewAMQPPublisher connects, declares the exchange and enables confirms
func NewAMQPPublisher(ctx context.Context, opts ConnectionOptions) (*AMQPPublisher, error) {
	conn, err := DialWithRetry(ctx, opts)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(opts.Exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", opts.Exchange, err)
	}
	if err := ch.Confirm(false); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable confirms: %w", err)
	}

	return &AMQPPublisher{conn: conn, ch: ch, exchange: opts.Exchange}, nil
}

// Publish sends env with routing key env.Meta.Type and waits for the broker ack
func (p *AMQPPublisher) Publish(ctx context.Context, env Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	cid := env.Meta.ID
	if env.Meta.CorrelationID != nil {
		cid = *env.Meta.CorrelationID
	}

	p.mu.Lock()
	dc, err := p.ch.PublishWithDeferredConfirmWithContext(
		ctx, p.exchange, string(env.Meta.Type), false, false,
		amqp091.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp091.Persistent,
			MessageId:     env.Meta.ID,
			CorrelationId: cid,
			Timestamp:     env.Meta.Time,
			Type:          string(env.Meta.Type),
			AppId:         env.Meta.Producer,
			Body:          body,
		},
	)
	p.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", env.Meta.Type, err)
	}

	ok, err := dc.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to confirm %s: %w", env.Meta.Type, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrNacked, env.Meta.Type)
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		p.ch.Close()
	}
	return p.conn.Close()
}

// Emit publishes in the background; failures are logged and never reach the caller.
// Domain flows call this after the primary write has completed.
func Emit(pub Publisher, t Type, data any, correlationID string) {
	if pub == nil {
		return
	}
	env := NewEnvelope(t, data, correlationID)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := pub.Publish(ctx, env); err != nil {
			utils.LogError("Failed to publish event", err, map[string]interface{}{
				"type": string(t),
				"id":   env.Meta.ID,
			})
		}
	}()
}
