package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// LedgerEvent is the JSON payload published for every successful ledger
// mutation. Amount carries the fare on purchases; Refund and AdminFee are
// set on cancellations.
type LedgerEvent struct {
	EventID   string    `json:"event_id"`
	Type      string    `json:"type"`
	FlightID  string    `json:"flight_id"`
	Passenger string    `json:"passenger,omitempty"`
	Amount    int64     `json:"amount,omitempty"`
	Refund    int64     `json:"refund,omitempty"`
	AdminFee  int64     `json:"admin_fee,omitempty"`
	Status    string    `json:"status,omitempty"`
	Time      time.Time `json:"time"`
}

const (
	EventFlightCreated   = "flight_created"
	EventStatusChanged   = "flight_status_changed"
	EventTicketPurchased = "ticket_purchased"
	EventTicketCancelled = "ticket_cancelled"
)

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("write message to kafka: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
