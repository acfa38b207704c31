// Package rabbitmq publishes committed order status changes to a topic
// exchange. Consumers bind on "order.status.<status>" or "order.status.#".
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rental/internal/core/domain/model/audit"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
)

const (
	RoutingKeyPrefix = "order.status."
	EventType        = "order.status_changed"
	contentType      = "application/json"
)

// Channel is the part of *amqp.Channel the publisher needs.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// StatusChangePublisher implements ports.StatusChangePublisher.
type StatusChangePublisher struct {
	ch       Channel
	exchange string
}

// NewStatusChangePublisher declares the durable topic exchange and returns a
// publisher bound to it.
func NewStatusChangePublisher(ch Channel, exchange string) (*StatusChangePublisher, error) {
	if exchange == "" {
		return nil, errors.New("rabbitmq: exchange name is required")
	}
	if err := ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("declare exchange %q: %w", exchange, err)
	}
	return &StatusChangePublisher{ch: ch, exchange: exchange}, nil
}

// Publish sends record as a persistent JSON message.
func (p *StatusChangePublisher) Publish(ctx context.Context, record audit.StatusChange) error {
	msg, err := BuildMessage(record)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx, p.exchange, RoutingKey(record), false, false, msg)
}

// RoutingKey is "order.status." followed by the target status name.
func RoutingKey(record audit.StatusChange) string {
	return RoutingKeyPrefix + record.ToStatus.String()
}

// BuildMessage renders the event. The audit record id doubles as the message
// id so consumers can drop redeliveries.
func BuildMessage(record audit.StatusChange) (amqp.Publishing, error) {
	body, err := json.Marshal(newEvent(record))
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("encode status change %s: %w", record.ID, err)
	}
	return amqp.Publishing{
		ContentType:  contentType,
		DeliveryMode: amqp.Persistent,
		MessageId:    record.ID.String(),
		Timestamp:    record.ChangedAt,
		Type:         EventType,
		Body:         body,
	}, nil
}

// Event is the JSON body of a status change message.
type Event struct {
	ID          string           `json:"id"`
	OrderID     string           `json:"orderId"`
	FromStatus  string           `json:"fromStatus"`
	ToStatus    string           `json:"toStatus"`
	ActualDate  string           `json:"actualDate,omitempty"`
	TotalAmount decimal.Decimal  `json:"totalAmount"`
	Version     int64            `json:"version"`
	ChangedAt   time.Time        `json:"changedAt"`
	Adjustment  *AdjustmentEvent `json:"adjustment,omitempty"`
	Deposit     *DepositEvent    `json:"deposit,omitempty"`
}

type AdjustmentEvent struct {
	ActualDays     int             `json:"actualDays"`
	PlannedDays    int             `json:"plannedDays"`
	IsEarlyReturn  bool            `json:"isEarlyReturn"`
	IsLateReturn   bool            `json:"isLateReturn"`
	AdjustedAmount decimal.Decimal `json:"adjustedAmount"`
	RefundAmount   decimal.Decimal `json:"refundAmount"`
	PenaltyAmount  decimal.Decimal `json:"penaltyAmount"`
	Reason         string          `json:"reason"`
}

type DepositEvent struct {
	Status          string          `json:"status"`
	Amount          decimal.Decimal `json:"amount"`
	DeductionAmount decimal.Decimal `json:"deductionAmount"`
	RefundAmount    decimal.Decimal `json:"refundAmount"`
}

func newEvent(record audit.StatusChange) Event {
	e := Event{
		ID:          record.ID.String(),
		OrderID:     record.OrderID.String(),
		FromStatus:  record.FromStatus.String(),
		ToStatus:    record.ToStatus.String(),
		ActualDate:  record.ActualDate.String(),
		TotalAmount: record.TotalAmount,
		Version:     record.Version,
		ChangedAt:   record.ChangedAt.UTC(),
	}
	if c := record.Calculation; c != nil {
		e.Adjustment = &AdjustmentEvent{
			ActualDays:     c.ActualDays,
			PlannedDays:    c.PlannedDays,
			IsEarlyReturn:  c.IsEarlyReturn,
			IsLateReturn:   c.IsLateReturn,
			AdjustedAmount: c.AdjustedAmount,
			RefundAmount:   c.RefundAmount,
			PenaltyAmount:  c.PenaltyAmount,
			Reason:         c.AdjustmentReason,
		}
	}
	if d := record.Deposit; d != nil {
		e.Deposit = &DepositEvent{
			Status:          d.Status.String(),
			Amount:          d.Amount,
			DeductionAmount: d.DeductionAmount,
			RefundAmount:    d.RefundAmount,
		}
	}
	return e
}
