package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/vncsmyrnk/dubvote/internal/core/domain"
)

const (
	DefaultQueue = "votes"
	voteCastType = "vote.cast"
)

var ErrClosed = errors.New("rabbitmq channel closed")

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

// Publisher sends vote events to a durable queue. An AMQP channel is not safe
// for concurrent publishing, so calls are serialized.
type Publisher struct {
	conn  *amqp.Connection
	ch    channel
	queue string
	mu    sync.Mutex
}

// Dial connects to url and declares queue. It is meant to be used as a
// retry.Connector.
func Dial(url, queue string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	return &Publisher{conn: conn, ch: ch, queue: queue}, nil
}

func (p *Publisher) PublishVote(ctx context.Context, event domain.VoteCast) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode vote event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch.IsClosed() {
		return ErrClosed
	}

	err = p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID.String(),
		Timestamp:    event.CastAt,
		Type:         voteCastType,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish vote event: %w", err)
	}
	return nil
}

func (p *Publisher) Ping(ctx context.Context) error {
	if p.ch.IsClosed() || (p.conn != nil && p.conn.IsClosed()) {
		return ErrClosed
	}
	return nil
}

func (p *Publisher) Close() error {
	err := p.ch.Close()
	if p.conn != nil {
		err = errors.Join(err, p.conn.Close())
	}
	return err
}
