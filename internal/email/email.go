package email

import (
	"context"
	"fmt"

	"github.com/Domenick1991/flightledger/internal/kafka"
)

type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

// Send turns a ledger event into a passenger notification. Flight-level
// events carry no passenger and are skipped.
func (s *Sender) Send(ctx context.Context, event kafka.LedgerEvent) error {
	if event.Passenger == "" {
		return nil
	}
	switch event.Type {
	case kafka.EventTicketPurchased:
		fmt.Printf("notify %s: ticket on flight %s, fare %d\n", event.Passenger, event.FlightID, event.Amount)
	case kafka.EventTicketCancelled:
		fmt.Printf("notify %s: cancelled on flight %s, refund %d (fee %d)\n", event.Passenger, event.FlightID, event.Refund, event.AdminFee)
	}
	return nil
}
