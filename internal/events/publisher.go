package events

import (
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Event types published on the order exchange.
const (
	OrderCreated       = "order.created"
	OrderStatusChanged = "order.status_changed"
	OrderCancelled     = "order.cancelled"
	OrderDelivered     = "order.delivered"
)

// OrderEvent is the JSON body published for every lifecycle change.
type OrderEvent struct {
	OrderCode string    `json:"orderCode"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	Occurred  time.Time `json:"occurred"`
}

// Publisher sends order lifecycle events to RabbitMQ. Publishing is
// best-effort: the order store is the source of truth and a failed publish
// is logged, never propagated. A nil Publisher drops events silently so the
// service runs without a broker configured.
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	if url == "" {
		return nil, nil
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &Publisher{conn: conn, channel: ch, exchange: exchange}, nil
}

// Publish sends one event, logging on failure.
func (p *Publisher) Publish(orderCode, eventType, status string) {
	if p == nil {
		return
	}
	ev := OrderEvent{
		OrderCode: orderCode,
		Type:      eventType,
		Status:    status,
		Occurred:  time.Now().UTC(),
	}
	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("events: marshal %s for order %s: %v", eventType, orderCode, err)
		return
	}
	msg := amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		Timestamp:    ev.Occurred,
		ContentType:  "application/json",
		Body:         body,
	}
	if err := p.channel.Publish(p.exchange, eventType, false, false, msg); err != nil {
		log.Printf("events: publish %s for order %s: %v", eventType, orderCode, err)
	}
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
