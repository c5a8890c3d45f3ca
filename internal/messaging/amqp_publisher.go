package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dafibh/tally/tally-backend/internal/websocket"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const (
	publishTimeout = 5 * time.Second
	queueSize      = 1024
	maxBackoff     = 30 * time.Second
	drainTimeout   = 5 * time.Second
)

// channel is the subset of *amqp091.Channel the publisher uses
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// session is one broker connection with its channel. closed fires when the
// broker or the network ends the connection.
type session struct {
	channel channel
	closed  <-chan *amqp091.Error
	close   func() error
}

type dialFunc func() (*session, error)

// LedgerMessage is the body published for every ledger event
type LedgerMessage struct {
	UserID int32           `json:"userId"`
	Event  websocket.Event `json:"event"`
}

// AMQPPublisher forwards ledger events to a topic exchange. The routing key
// is the event type, e.g. "transaction.created". Publish only enqueues; a
// background worker owns the connection and redials it when it drops.
type AMQPPublisher struct {
	exchange   string
	dial       dialFunc
	minBackoff time.Duration

	queue     chan LedgerMessage
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

var _ websocket.EventPublisher = (*AMQPPublisher)(nil)

// NewAMQPPublisher dials the broker, declares a durable topic exchange and
// starts the publishing worker. The first dial must succeed.
func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	dial := func() (*session, error) { return dialSession(url, exchange) }
	first, err := dial()
	if err != nil {
		return nil, err
	}
	return newAMQPPublisher(exchange, dial, first, time.Second, queueSize), nil
}

func dialSession(url, exchange string) (*session, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &session{
		channel: ch,
		closed:  conn.NotifyClose(make(chan *amqp091.Error, 1)),
		close: func() error {
			ch.Close()
			return conn.Close()
		},
	}, nil
}

func newAMQPPublisher(exchange string, dial dialFunc, first *session, minBackoff time.Duration, size int) *AMQPPublisher {
	p := &AMQPPublisher{
		exchange:   exchange,
		dial:       dial,
		minBackoff: minBackoff,
		queue:      make(chan LedgerMessage, size),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}
	go p.run(first)
	return p
}

// Publish implements websocket.EventPublisher. It never blocks: when the
// queue is full or the publisher is closed the event is dropped and logged.
func (p *AMQPPublisher) Publish(userID int32, event websocket.Event) {
	select {
	case <-p.done:
		return
	default:
	}

	select {
	case p.queue <- LedgerMessage{UserID: userID, Event: event}:
	default:
		log.Warn().
			Int32("user_id", userID).
			Str("event_type", event.Type).
			Str("exchange", p.exchange).
			Msg("Ledger event dropped: publish queue full")
	}
}

func (p *AMQPPublisher) run(current *session) {
	defer close(p.stopped)
	defer func() {
		if current != nil {
			current.close()
		}
	}()

	for {
		if current == nil {
			if current = p.redial(); current == nil {
				return
			}
		}

		select {
		case <-p.done:
			p.drain(current)
			return

		case amqpErr := <-current.closed:
			log.Warn().Interface("reason", amqpErr).Str("exchange", p.exchange).Msg("AMQP connection closed")
			current.close()
			current = nil

		case msg := <-p.queue:
			if err := p.publish(context.Background(), current, msg); err != nil {
				log.Warn().Err(err).Str("exchange", p.exchange).Msg("Publish failed, reconnecting")
				current.close()
				if current = p.redial(); current == nil {
					return
				}
				// One retry on the fresh connection
				if err := p.publish(context.Background(), current, msg); err != nil {
					log.Warn().
						Err(err).
						Int32("user_id", msg.UserID).
						Str("event_type", msg.Event.Type).
						Msg("Failed to publish ledger event")
				}
			}
		}
	}
}

// redial reconnects with exponential backoff. It returns nil once the
// publisher is closed.
func (p *AMQPPublisher) redial() *session {
	backoff := p.minBackoff
	for {
		s, err := p.dial()
		if err == nil {
			log.Info().Str("exchange", p.exchange).Msg("AMQP reconnected")
			return s
		}
		log.Warn().Err(err).Dur("retry_in", backoff).Msg("AMQP reconnect failed")

		select {
		case <-p.done:
			return nil
		case <-time.After(backoff):
		}
		if backoff *= 2; backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// drain publishes what is already queued, bounded by drainTimeout
func (p *AMQPPublisher) drain(current *session) {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	for {
		select {
		case msg := <-p.queue:
			if err := p.publish(ctx, current, msg); err != nil {
				log.Warn().Err(err).Int("remaining", len(p.queue)).Msg("Dropping queued ledger events on shutdown")
				return
			}
		default:
			return
		}
	}
}

func (p *AMQPPublisher) publish(ctx context.Context, s *session, msg LedgerMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = s.channel.PublishWithContext(
		ctx,
		p.exchange,     // exchange
		msg.Event.Type, // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    msg.Event.Timestamp,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	log.Debug().
		Int32("user_id", msg.UserID).
		Str("event_type", msg.Event.Type).
		Str("exchange", p.exchange).
		Msg("Published ledger event")
	return nil
}

// Close stops accepting events, flushes the queue and closes the connection
func (p *AMQPPublisher) Close() error {
	p.closeOnce.Do(func() { close(p.done) })
	<-p.stopped
	return nil
}
