package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/madhava-poojari/jobs-admin-console/internal/logger"
)

type Publisher interface {
	Publish(ctx context.Context, m Message) error
	Close() error
}

// AMQPPublisher publishes to a durable topic exchange.
type AMQPPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func DialAMQP(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &AMQPPublisher{conn: conn, channel: ch, exchange: exchange}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, m Message) error {
	body, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return p.channel.PublishWithContext(ctx,
		p.exchange,
		m.RoutingKey(),
		false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    m.EventID,
			Body:         body,
			Timestamp:    time.Now(),
			DeliveryMode: amqp.Persistent,
		},
	)
}

func (p *AMQPPublisher) Close() error {
	if err := p.channel.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}

// LogPublisher writes events to the log when no broker is configured.
type LogPublisher struct {
	Log *logger.Logger
}

func (p LogPublisher) Publish(ctx context.Context, m Message) error {
	p.Log.Infof("audit %s by %s (event %s)", m.RoutingKey(), m.OperatorID, m.EventID)
	return nil
}

func (LogPublisher) Close() error { return nil }
