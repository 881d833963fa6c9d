package tickets

import (
	"context"
	"testing"

	"github.com/Domenick1991/flightledger/internal/auth"
	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/Domenick1991/flightledger/internal/payment"
	"github.com/Domenick1991/flightledger/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) InitAdmin(ctx context.Context, admin domain.Address) error {
	args := m.Called(ctx, admin)
	return args.Error(0)
}

func (m *MockLedgerRepository) Admin(ctx context.Context) (domain.Address, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Address), args.Error(1)
}

func (m *MockLedgerRepository) CreateFlight(ctx context.Context, flight *domain.FlightDetails) error {
	args := m.Called(ctx, flight)
	return args.Error(0)
}

func (m *MockLedgerRepository) BookPassenger(ctx context.Context, id domain.FlightID, passenger domain.Address, details string) (*domain.FlightDetails, *domain.PassengerRecord, error) {
	args := m.Called(ctx, id, passenger, details)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.FlightDetails), args.Get(1).(*domain.PassengerRecord), args.Error(2)
}

func (m *MockLedgerRepository) CancelPassenger(ctx context.Context, id domain.FlightID, passenger domain.Address) (*repository.Cancellation, error) {
	args := m.Called(ctx, id, passenger)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Cancellation), args.Error(1)
}

func (m *MockLedgerRepository) UpdateStatus(ctx context.Context, id domain.FlightID, status domain.FlightStatus) (*domain.FlightDetails, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FlightDetails), args.Error(1)
}

func (m *MockLedgerRepository) Flight(ctx context.Context, id domain.FlightID) (*domain.FlightDetails, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FlightDetails), args.Error(1)
}

func (m *MockLedgerRepository) FlightsByRoute(ctx context.Context, src, dest string) ([]domain.FlightDetails, error) {
	args := m.Called(ctx, src, dest)
	return args.Get(0).([]domain.FlightDetails), args.Error(1)
}

func (m *MockLedgerRepository) AllFlights(ctx context.Context) ([]domain.FlightDetails, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.FlightDetails), args.Error(1)
}

func (m *MockLedgerRepository) FlightsByPassenger(ctx context.Context, passenger domain.Address) ([]domain.FlightDetails, error) {
	args := m.Called(ctx, passenger)
	return args.Get(0).([]domain.FlightDetails), args.Error(1)
}

func (m *MockLedgerRepository) Passengers(ctx context.Context, id domain.FlightID) ([]domain.PassengerRecord, error) {
	args := m.Called(ctx, id)
	return args.Get(0).([]domain.PassengerRecord), args.Error(1)
}

type MockRail struct {
	mock.Mock
}

func (m *MockRail) Transfer(ctx context.Context, from, to domain.Address, amount int64) error {
	args := m.Called(ctx, from, to, amount)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

func testFlightID(b byte) domain.FlightID {
	var id domain.FlightID
	id[0] = b
	return id
}

func TestTicketService_Buy_Success(t *testing.T) {
	mockRepo := &MockLedgerRepository{}
	mockRail := &MockRail{}
	mockProducer := &MockProducer{}
	service := NewTicketService(mockRepo, mockRail, mockProducer, "ledger_events", nil)

	ctx := auth.WithCaller(context.Background(), "alice")
	flight := &domain.FlightDetails{ID: testFlightID(1), Distance: 50, Status: domain.FlightStatusBooking, PassengerCount: 1}
	record := &domain.PassengerRecord{Passenger: "alice", Paid: 50, Details: "economy"}

	mockRepo.On("BookPassenger", ctx, testFlightID(1), domain.Address("alice"), "economy").Return(flight, record, nil).Once()
	mockRail.On("Transfer", ctx, domain.Address("alice"), payment.EscrowAccount, int64(50)).Return(nil).Once()
	mockProducer.On("Publish", ctx, "ledger_events", testFlightID(1).String(), mock.Anything).Return(nil).Once()

	purchase, err := service.Buy(ctx, BuyTicketInput{
		FlightID:  testFlightID(1),
		Passenger: "alice",
		Details:   "economy",
	})

	assert.NoError(t, err)
	assert.NotNil(t, purchase)
	assert.Equal(t, *record, purchase.Record)
	assert.Equal(t, *flight, purchase.Flight)

	mockRepo.AssertExpectations(t)
	mockRail.AssertExpectations(t)
	mockProducer.AssertExpectations(t)
}

func TestTicketService_Buy_Unauthorized(t *testing.T) {
	mockRepo := &MockLedgerRepository{}
	service := NewTicketService(mockRepo, nil, nil, "", nil)

	// Caller authenticated as a different address than the passenger.
	ctx := auth.WithCaller(context.Background(), "mallory")

	purchase, err := service.Buy(ctx, BuyTicketInput{
		FlightID:  testFlightID(1),
		Passenger: "alice",
		Details:   "economy",
	})

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Nil(t, purchase)
	mockRepo.AssertNotCalled(t, "BookPassenger")
}

func TestTicketService_Buy_FlightFull(t *testing.T) {
	mockRepo := &MockLedgerRepository{}
	mockRail := &MockRail{}
	service := NewTicketService(mockRepo, mockRail, nil, "", nil)

	ctx := auth.WithCaller(context.Background(), "alice")
	mockRepo.On("BookPassenger", ctx, testFlightID(1), domain.Address("alice"), "economy").Return(nil, nil, domain.ErrFlightFull).Once()

	purchase, err := service.Buy(ctx, BuyTicketInput{
		FlightID:  testFlightID(1),
		Passenger: "alice",
		Details:   "economy",
	})

	assert.ErrorIs(t, err, domain.ErrFlightFull)
	assert.Nil(t, purchase)
	mockRail.AssertNotCalled(t, "Transfer")
}

func TestTicketService_Cancel_Success(t *testing.T) {
	mockRepo := &MockLedgerRepository{}
	mockRail := &MockRail{}
	mockProducer := &MockProducer{}
	service := NewTicketService(mockRepo, mockRail, mockProducer, "ledger_events", nil)

	ctx := auth.WithCaller(context.Background(), "alice")
	cancellation := &repository.Cancellation{
		Flight:  domain.FlightDetails{ID: testFlightID(1), PassengerCount: 0, Status: domain.FlightStatusBooking},
		Removed: []domain.PassengerRecord{{Passenger: "alice", Paid: 100}},
	}

	mockRepo.On("CancelPassenger", ctx, testFlightID(1), domain.Address("alice")).Return(cancellation, nil).Once()
	mockRepo.On("Admin", ctx).Return(domain.Address("admin"), nil).Once()
	mockRail.On("Transfer", ctx, payment.EscrowAccount, domain.Address("alice"), int64(90)).Return(nil).Once()
	mockRail.On("Transfer", ctx, payment.EscrowAccount, domain.Address("admin"), int64(10)).Return(nil).Once()
	mockProducer.On("Publish", ctx, "ledger_events", testFlightID(1).String(), mock.Anything).Return(nil).Once()

	refund, err := service.Cancel(ctx, testFlightID(1), "alice")

	assert.NoError(t, err)
	assert.Equal(t, 1, refund.Cancelled)
	assert.Equal(t, int64(90), refund.Refunded)
	assert.Equal(t, int64(10), refund.AdminFee)

	mockRepo.AssertExpectations(t)
	mockRail.AssertExpectations(t)
	mockProducer.AssertExpectations(t)
}

func TestTicketService_Cancel_TruncatingSplit(t *testing.T) {
	mockRepo := &MockLedgerRepository{}
	mockRail := &MockRail{}
	service := NewTicketService(mockRepo, mockRail, nil, "", nil)

	ctx := auth.WithCaller(context.Background(), "alice")
	cancellation := &repository.Cancellation{
		Flight:  domain.FlightDetails{ID: testFlightID(1)},
		Removed: []domain.PassengerRecord{{Passenger: "alice", Paid: 101}},
	}

	mockRepo.On("CancelPassenger", ctx, testFlightID(1), domain.Address("alice")).Return(cancellation, nil).Once()
	mockRepo.On("Admin", ctx).Return(domain.Address("admin"), nil).Once()
	mockRail.On("Transfer", ctx, payment.EscrowAccount, domain.Address("alice"), int64(90)).Return(nil).Once()
	mockRail.On("Transfer", ctx, payment.EscrowAccount, domain.Address("admin"), int64(11)).Return(nil).Once()

	refund, err := service.Cancel(ctx, testFlightID(1), "alice")

	assert.NoError(t, err)
	assert.Equal(t, int64(90), refund.Refunded)
	assert.Equal(t, int64(11), refund.AdminFee)
	mockRail.AssertExpectations(t)
}

func TestTicketService_Cancel_MultipleBookings(t *testing.T) {
	mockRepo := &MockLedgerRepository{}
	mockRail := &MockRail{}
	service := NewTicketService(mockRepo, mockRail, nil, "", nil)

	ctx := auth.WithCaller(context.Background(), "alice")
	cancellation := &repository.Cancellation{
		Flight: domain.FlightDetails{ID: testFlightID(1)},
		Removed: []domain.PassengerRecord{
			{Passenger: "alice", Paid: 100},
			{Passenger: "alice", Paid: 101},
		},
	}

	mockRepo.On("CancelPassenger", ctx, testFlightID(1), domain.Address("alice")).Return(cancellation, nil).Once()
	mockRepo.On("Admin", ctx).Return(domain.Address("admin"), nil).Once()
	mockRail.On("Transfer", ctx, payment.EscrowAccount, domain.Address("alice"), int64(90)).Return(nil).Twice()
	mockRail.On("Transfer", ctx, payment.EscrowAccount, domain.Address("admin"), int64(10)).Return(nil).Once()
	mockRail.On("Transfer", ctx, payment.EscrowAccount, domain.Address("admin"), int64(11)).Return(nil).Once()

	refund, err := service.Cancel(ctx, testFlightID(1), "alice")

	assert.NoError(t, err)
	assert.Equal(t, 2, refund.Cancelled)
	assert.Equal(t, int64(180), refund.Refunded)
	assert.Equal(t, int64(21), refund.AdminFee)
	mockRail.AssertExpectations(t)
}

func TestTicketService_Cancel_PassengerNotFound(t *testing.T) {
	mockRepo := &MockLedgerRepository{}
	mockRail := &MockRail{}
	service := NewTicketService(mockRepo, mockRail, nil, "", nil)

	ctx := auth.WithCaller(context.Background(), "alice")
	mockRepo.On("CancelPassenger", ctx, testFlightID(1), domain.Address("alice")).Return(nil, domain.ErrPassengerNotFound).Once()

	refund, err := service.Cancel(ctx, testFlightID(1), "alice")

	assert.ErrorIs(t, err, domain.ErrPassengerNotFound)
	assert.Nil(t, refund)
	mockRail.AssertNotCalled(t, "Transfer")
}

func TestTicketService_FlightsByPassenger_Public(t *testing.T) {
	mockRepo := &MockLedgerRepository{}
	service := NewTicketService(mockRepo, nil, nil, "", nil)

	// No authenticated caller: the manifest query is public.
	ctx := context.Background()
	flights := []domain.FlightDetails{{ID: testFlightID(1)}}
	mockRepo.On("FlightsByPassenger", ctx, domain.Address("alice")).Return(flights, nil).Once()

	result, err := service.FlightsByPassenger(ctx, "alice")

	assert.NoError(t, err)
	assert.Equal(t, flights, result)
	mockRepo.AssertExpectations(t)
}
