package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/crimewatch/internal/models"
)

// Channel часть *amqp.Channel, нужная для публикации.
type Channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// PublishMessage публикует сообщение в RabbitMQ.
func PublishMessage(ch Channel, exchange string, routingkey string, message any) error {
	const op = "rabbitmq.PublishMessage"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(
		exchange,
		routingkey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// EventPublisher публикует события доступа в обменник уведомлений.
// Тип события используется как ключ маршрутизации.
type EventPublisher struct {
	ch Channel
}

// NewEventPublisher создаёт публикатор поверх канала.
func NewEventPublisher(ch Channel) *EventPublisher {
	return &EventPublisher{ch: ch}
}

// Publish отправляет событие.
func (p *EventPublisher) Publish(ctx context.Context, e models.Event) error {
	const op = "rabbitmq.EventPublisher.Publish"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}
	if err := PublishMessage(p.ch, ExchangeNotifications, string(e.Type), e); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
