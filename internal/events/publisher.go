package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"salonmenu/internal/logger"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type Publisher interface {
	Publish(ctx context.Context, ev MenuChangedEvent) error
}

// NewPublisher возвращает AMQP-издателя или Noop при пустом url.
func NewPublisher(url string) Publisher {
	if url == "" {
		logger.Log.Info("AMQP_URL не задан, события меню не публикуются")
		return Noop{}
	}
	return &AMQPPublisher{url: url, queue: MenuChangedQueue}
}

type Noop struct{}

func (Noop) Publish(context.Context, MenuChangedEvent) error { return nil }

// AMQPPublisher открывает отдельное соединение на каждую публикацию.
type AMQPPublisher struct {
	url   string
	queue string
	dial  func(ctx context.Context, url string) (*amqp.Connection, error)
}

const defaultDialTimeout = 5 * time.Second

// dialContext ограничивает подключение и AMQP-handshake дедлайном ctx.
func dialContext(ctx context.Context, url string) (*amqp.Connection, error) {
	timeout := defaultDialTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if timeout <= 0 {
		return nil, context.DeadlineExceeded
	}
	return amqp.DialConfig(url, amqp.Config{
		Locale: "en_US",
		Dial:   amqp.DefaultDial(timeout),
	})
}

func (p *AMQPPublisher) Publish(ctx context.Context, ev MenuChangedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", p.queue, err)
	}

	dial := p.dial
	if dial == nil {
		dial = dialContext
	}
	conn, err := dial(ctx, p.url)
	if err != nil {
		logger.Log.Warn("rabbitmq: не удалось подключиться", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.Log.Warn("rabbitmq: не удалось открыть канал", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		p.queue, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,
	); err != nil {
		logger.Log.Warn("rabbitmq: queue declare", zap.String("queue", p.queue), zap.Error(err))
		return err
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		logger.Log.Warn("rabbitmq: publish", zap.String("queue", p.queue), zap.Error(err))
		return err
	}
	return nil
}
