package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/crimewatch/internal/lib/sl"
)

// Source часть *amqp.Channel, нужная для потребления.
type Source interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

const (
	// maxInFlight сколько сообщений обрабатывается одновременно.
	maxInFlight = 10
	// handlerTimeout ограничивает обработку одного сообщения.
	handlerTimeout = 30 * time.Second
)

// Handler обрабатывает тело одного сообщения.
type Handler func(ctx context.Context, body []byte) error

// ConsumerMessage запускает потребителя очереди. Каждое сообщение передаётся
// handler; при ошибке сообщение возвращается в очередь, иначе подтверждается.
// Потребитель останавливается при отмене ctx или закрытии канала доставки.
func ConsumerMessage(ctx context.Context, ch Source, queueName string, handler Handler, log *slog.Logger) error {
	const op = "rabbitmq.ConsumerMessage"
	delivery, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log = log.With(slog.String("op", op), slog.String("queue", queueName))
	sem := make(chan struct{}, maxInFlight)
	go func() {
		for {
			select {
			case d, ok := <-delivery:
				if !ok {
					return
				}
				sem <- struct{}{}
				go func(delivery amqp.Delivery) {
					defer func() { <-sem }()
					hctx, cancel := context.WithTimeout(ctx, handlerTimeout)
					defer cancel()
					if err := handler(hctx, delivery.Body); err != nil {
						log.Warn("handler failed, requeueing message", sl.Err(err))
						if nackErr := delivery.Nack(false, true); nackErr != nil {
							log.Error("failed to nack message", sl.Err(nackErr))
						}
						return
					}
					if ackErr := delivery.Ack(false); ackErr != nil {
						log.Error("failed to ack message", sl.Err(ackErr))
					}
				}(d)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}
