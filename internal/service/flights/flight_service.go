package flights

import (
	"context"
	"time"

	"github.com/Domenick1991/flightledger/internal/auth"
	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/Domenick1991/flightledger/internal/kafka"
	"github.com/Domenick1991/flightledger/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type FlightUseCase interface {
	Create(ctx context.Context, input CreateFlightInput) (*domain.FlightDetails, error)
	UpdateStatus(ctx context.Context, id domain.FlightID, status domain.FlightStatus) (*domain.FlightDetails, error)
	Search(ctx context.Context, src, dest string) ([]domain.FlightDetails, error)
	ListAll(ctx context.Context) ([]domain.FlightDetails, error)
	Get(ctx context.Context, id domain.FlightID) (*domain.FlightDetails, error)
}

type Cache interface {
	GetRoute(ctx context.Context, src, dest string) ([]domain.FlightDetails, error)
	SetRoute(ctx context.Context, src, dest string, flights []domain.FlightDetails) error
	InvalidateRoute(ctx context.Context, src, dest string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type CreateFlightInput struct {
	ID            domain.FlightID `json:"id"`
	MaxPassengers uint32          `json:"max_passengers"`
	Distance      int64           `json:"distance"`
	Src           string          `json:"src"`
	Dest          string          `json:"dest"`
}

type FlightService struct {
	repo        repository.LedgerRepository
	cache       Cache
	producer    Producer
	ledgerTopic string
	log         *logrus.Logger
}

type FlightServiceOption func(*FlightService)

func WithCache(cache Cache) FlightServiceOption {
	return func(s *FlightService) {
		s.cache = cache
	}
}

func NewFlightService(repo repository.LedgerRepository, producer Producer, ledgerTopic string, log *logrus.Logger, opts ...FlightServiceOption) *FlightService {
	if log == nil {
		log = logrus.New()
	}
	service := &FlightService{
		repo:        repo,
		producer:    producer,
		ledgerTopic: ledgerTopic,
		log:         log,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Create registers a new flight and enrolls it in the route and global
// indexes. Admin only.
func (s *FlightService) Create(ctx context.Context, input CreateFlightInput) (*domain.FlightDetails, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}
	if input.MaxPassengers == 0 || input.Distance <= 0 {
		return nil, domain.ErrInvalidInput
	}

	escrow, err := domain.EscrowAmount(input.MaxPassengers, input.Distance)
	if err != nil {
		return nil, err
	}

	flight := &domain.FlightDetails{
		ID:            input.ID,
		MaxPassengers: input.MaxPassengers,
		Distance:      input.Distance,
		Src:           input.Src,
		Dest:          input.Dest,
		Status:        domain.FlightStatusBooking,
		EscrowAmount:  escrow,
	}
	if err := s.repo.CreateFlight(ctx, flight); err != nil {
		return nil, err
	}

	s.invalidateRoute(ctx, flight.Src, flight.Dest)
	s.publish(ctx, kafka.LedgerEvent{
		Type:     kafka.EventFlightCreated,
		FlightID: flight.ID.String(),
		Amount:   flight.EscrowAmount,
		Status:   string(flight.Status),
	})
	return flight, nil
}

// UpdateStatus finalizes a flight to takeoff or cancelled. Admin only.
// Both target states are terminal; the repository rejects any transition
// out of them.
func (s *FlightService) UpdateStatus(ctx context.Context, id domain.FlightID, status domain.FlightStatus) (*domain.FlightDetails, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}
	if !domain.TerminalStatus(status) {
		return nil, domain.ErrInvalidStatus
	}

	flight, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	s.invalidateRoute(ctx, flight.Src, flight.Dest)
	s.publish(ctx, kafka.LedgerEvent{
		Type:     kafka.EventStatusChanged,
		FlightID: flight.ID.String(),
		Status:   string(flight.Status),
	})
	return flight, nil
}

// Search returns the flights serving a route, in creation order. Public.
func (s *FlightService) Search(ctx context.Context, src, dest string) ([]domain.FlightDetails, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetRoute(ctx, src, dest); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.repo.FlightsByRoute(ctx, src, dest)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetRoute(ctx, src, dest, flights); err != nil {
			s.log.WithError(err).Warn("cache route search result")
		}
	}
	return flights, nil
}

// ListAll returns every flight ever created. Admin only.
func (s *FlightService) ListAll(ctx context.Context) ([]domain.FlightDetails, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.repo.AllFlights(ctx)
}

// Get fetches one flight by id. Admin only.
func (s *FlightService) Get(ctx context.Context, id domain.FlightID) (*domain.FlightDetails, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.repo.Flight(ctx, id)
}

func (s *FlightService) requireAdmin(ctx context.Context) error {
	admin, err := s.repo.Admin(ctx)
	if err != nil {
		return err
	}
	return auth.RequireCaller(ctx, admin)
}

func (s *FlightService) invalidateRoute(ctx context.Context, src, dest string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateRoute(ctx, src, dest); err != nil {
		s.log.WithError(err).Warn("invalidate route cache")
	}
}

func (s *FlightService) publish(ctx context.Context, event kafka.LedgerEvent) {
	if s.producer == nil || s.ledgerTopic == "" {
		return
	}
	event.EventID = uuid.NewString()
	event.Time = time.Now()
	if err := s.producer.Publish(ctx, s.ledgerTopic, event.FlightID, event); err != nil {
		s.log.WithError(err).WithField("type", event.Type).Warn("publish ledger event")
	}
}

var _ FlightUseCase = (*FlightService)(nil)
