// Package service holds side effects the authority performs after state
// changes, such as printing kitchen tickets.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/tasting-service/internal/queue"
)

// AMQPPublisher publishes kitchen tickets to RabbitMQ.  Each publish opens
// its own connection: tickets are rare (one per course) and this keeps the
// authority free of broker connection state.
type AMQPPublisher struct {
	URL string
}

// PublishKitchenTicket sends ev to the durable kitchen.tickets queue as a
// persistent message.
func (p AMQPPublisher) PublishKitchenTicket(ctx context.Context, ev queue.KitchenTicketEvent) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		queue.KitchenTicketsQueue, // name
		true,                      // durable
		false,                     // autoDelete
		false,                     // exclusive
		false,                     // noWait
		nil,                       // args
	); err != nil {
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal ticket: %w", err)
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue.KitchenTicketsQueue, false, false, pub); err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	return nil
}
