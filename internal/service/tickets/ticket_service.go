package tickets

import (
	"context"
	"time"

	"github.com/Domenick1991/flightledger/internal/auth"
	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/Domenick1991/flightledger/internal/kafka"
	"github.com/Domenick1991/flightledger/internal/payment"
	"github.com/Domenick1991/flightledger/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type TicketUseCase interface {
	Buy(ctx context.Context, input BuyTicketInput) (*Purchase, error)
	Cancel(ctx context.Context, id domain.FlightID, passenger domain.Address) (*Refund, error)
	FlightsByPassenger(ctx context.Context, passenger domain.Address) ([]domain.FlightDetails, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BuyTicketInput struct {
	FlightID  domain.FlightID `json:"flight_id"`
	Passenger domain.Address  `json:"passenger"`
	Details   string          `json:"details"`
}

// Purchase is the outcome of a successful ticket sale.
type Purchase struct {
	Record domain.PassengerRecord `json:"record"`
	Flight domain.FlightDetails   `json:"flight"`
}

// Refund is the outcome of a cancellation. One call refunds every
// booking the passenger held on the flight; the totals sum over all of
// them.
type Refund struct {
	Cancelled int                  `json:"cancelled"`
	Refunded  int64                `json:"refunded"`
	AdminFee  int64                `json:"admin_fee"`
	Flight    domain.FlightDetails `json:"flight"`
}

type TicketService struct {
	repo        repository.LedgerRepository
	rail        payment.Rail
	producer    Producer
	ledgerTopic string
	log         *logrus.Logger
}

func NewTicketService(repo repository.LedgerRepository, rail payment.Rail, producer Producer, ledgerTopic string, log *logrus.Logger) *TicketService {
	if log == nil {
		log = logrus.New()
	}
	return &TicketService{
		repo:        repo,
		rail:        rail,
		producer:    producer,
		ledgerTopic: ledgerTopic,
		log:         log,
	}
}

// Buy sells one ticket to the authenticated passenger. The fare equals
// the flight distance; settlement goes to the payment rail after the
// ledger write commits.
func (s *TicketService) Buy(ctx context.Context, input BuyTicketInput) (*Purchase, error) {
	if err := auth.RequireCaller(ctx, input.Passenger); err != nil {
		return nil, err
	}

	flight, record, err := s.repo.BookPassenger(ctx, input.FlightID, input.Passenger, input.Details)
	if err != nil {
		return nil, err
	}

	s.settle(ctx, input.Passenger, payment.EscrowAccount, record.Paid)
	s.publish(ctx, kafka.LedgerEvent{
		Type:      kafka.EventTicketPurchased,
		FlightID:  flight.ID.String(),
		Passenger: string(record.Passenger),
		Amount:    record.Paid,
		Status:    string(flight.Status),
	})
	return &Purchase{Record: *record, Flight: *flight}, nil
}

// Cancel refunds every booking the authenticated passenger holds on the
// flight: 90% of each fare back to the passenger, the remainder to the
// admin.
func (s *TicketService) Cancel(ctx context.Context, id domain.FlightID, passenger domain.Address) (*Refund, error) {
	if err := auth.RequireCaller(ctx, passenger); err != nil {
		return nil, err
	}

	cancellation, err := s.repo.CancelPassenger(ctx, id, passenger)
	if err != nil {
		return nil, err
	}
	admin, err := s.repo.Admin(ctx)
	if err != nil {
		return nil, err
	}

	result := &Refund{Cancelled: len(cancellation.Removed), Flight: cancellation.Flight}
	for _, rec := range cancellation.Removed {
		refund, fee := domain.SplitRefund(rec.Paid)
		s.settle(ctx, payment.EscrowAccount, passenger, refund)
		s.settle(ctx, payment.EscrowAccount, admin, fee)
		result.Refunded += refund
		result.AdminFee += fee
	}

	s.publish(ctx, kafka.LedgerEvent{
		Type:      kafka.EventTicketCancelled,
		FlightID:  id.String(),
		Passenger: string(passenger),
		Refund:    result.Refunded,
		AdminFee:  result.AdminFee,
		Status:    string(cancellation.Flight.Status),
	})
	return result, nil
}

// FlightsByPassenger returns the flights on the passenger's personal
// index. Deliberately public: the manifest carries no secrets.
func (s *TicketService) FlightsByPassenger(ctx context.Context, passenger domain.Address) ([]domain.FlightDetails, error) {
	return s.repo.FlightsByPassenger(ctx, passenger)
}

// settle hands a computed amount to the rail. The ledger write has
// already committed, so a rail failure is logged rather than unwound.
func (s *TicketService) settle(ctx context.Context, from, to domain.Address, amount int64) {
	if s.rail == nil {
		return
	}
	if err := s.rail.Transfer(ctx, from, to, amount); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"from":   from,
			"to":     to,
			"amount": amount,
		}).Error("payment rail transfer failed")
	}
}

func (s *TicketService) publish(ctx context.Context, event kafka.LedgerEvent) {
	if s.producer == nil || s.ledgerTopic == "" {
		return
	}
	event.EventID = uuid.NewString()
	event.Time = time.Now()
	if err := s.producer.Publish(ctx, s.ledgerTopic, event.FlightID, event); err != nil {
		s.log.WithError(err).WithField("type", event.Type).Warn("publish ledger event")
	}
}

var _ TicketUseCase = (*TicketService)(nil)
