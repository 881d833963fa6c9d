package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/Domenick1991/flightledger/internal/storage"
)

// ErrAdminNotInitialized means the one-time admin provisioning never ran.
// This is a deployment error, not part of the caller-facing taxonomy.
var ErrAdminNotInitialized = errors.New("admin address not initialized")

// LedgerRepository owns every read and write of ledger state. Each
// mutating method runs as a single storage transaction, so a failed
// precondition mid-workflow discards all staged writes.
type LedgerRepository interface {
	InitAdmin(ctx context.Context, admin domain.Address) error
	Admin(ctx context.Context) (domain.Address, error)

	CreateFlight(ctx context.Context, flight *domain.FlightDetails) error
	BookPassenger(ctx context.Context, id domain.FlightID, passenger domain.Address, details string) (*domain.FlightDetails, *domain.PassengerRecord, error)
	CancelPassenger(ctx context.Context, id domain.FlightID, passenger domain.Address) (*Cancellation, error)
	UpdateStatus(ctx context.Context, id domain.FlightID, status domain.FlightStatus) (*domain.FlightDetails, error)

	Flight(ctx context.Context, id domain.FlightID) (*domain.FlightDetails, error)
	FlightsByRoute(ctx context.Context, src, dest string) ([]domain.FlightDetails, error)
	AllFlights(ctx context.Context) ([]domain.FlightDetails, error)
	FlightsByPassenger(ctx context.Context, passenger domain.Address) ([]domain.FlightDetails, error)
	Passengers(ctx context.Context, id domain.FlightID) ([]domain.PassengerRecord, error)
}

// Cancellation reports what a cancel operation removed: the refreshed
// flight record and every booking of the cancelling passenger.
type Cancellation struct {
	Flight  domain.FlightDetails
	Removed []domain.PassengerRecord
}

// KVLedgerRepository implements LedgerRepository over any storage.Store.
type KVLedgerRepository struct {
	store storage.Store
}

func NewLedgerRepository(store storage.Store) LedgerRepository {
	return &KVLedgerRepository{store: store}
}

func (r *KVLedgerRepository) InitAdmin(ctx context.Context, admin domain.Address) error {
	return r.store.Update(ctx, func(kv storage.KV) error {
		ok, err := kv.Has(adminKey())
		if err != nil {
			return err
		}
		if ok {
			return domain.ErrAlreadyInitialized
		}
		return kv.Set(adminKey(), []byte(admin))
	})
}

func (r *KVLedgerRepository) Admin(ctx context.Context) (domain.Address, error) {
	var admin domain.Address
	err := r.store.View(ctx, func(kv storage.KV) error {
		raw, ok, err := kv.Get(adminKey())
		if err != nil {
			return err
		}
		if !ok {
			return ErrAdminNotInitialized
		}
		admin = domain.Address(raw)
		return nil
	})
	return admin, err
}

func (r *KVLedgerRepository) CreateFlight(ctx context.Context, flight *domain.FlightDetails) error {
	return r.store.Update(ctx, func(kv storage.KV) error {
		ok, err := kv.Has(flightKey(flight.ID))
		if err != nil {
			return err
		}
		if ok {
			return domain.ErrFlightAlreadyExists
		}
		if err := putFlight(kv, flight); err != nil {
			return err
		}

		route, err := loadIndex(kv, routeKey(flight.Src, flight.Dest))
		if err != nil {
			return err
		}
		if err := saveIndex(kv, routeKey(flight.Src, flight.Dest), append(route, flight.ID)); err != nil {
			return err
		}

		global, err := loadIndex(kv, globalKey())
		if err != nil {
			return err
		}
		return saveIndex(kv, globalKey(), append(global, flight.ID))
	})
}

func (r *KVLedgerRepository) BookPassenger(ctx context.Context, id domain.FlightID, passenger domain.Address, details string) (*domain.FlightDetails, *domain.PassengerRecord, error) {
	var (
		flight *domain.FlightDetails
		record domain.PassengerRecord
	)
	err := r.store.Update(ctx, func(kv storage.KV) error {
		var err error
		flight, err = getFlight(kv, id)
		if err != nil {
			return err
		}
		if flight.Status != domain.FlightStatusBooking {
			return domain.ErrInvalidStatus
		}
		if flight.PassengerCount >= flight.MaxPassengers {
			return domain.ErrFlightFull
		}
		fare := flight.Distance
		if fare <= 0 {
			return domain.ErrInvalidFare
		}

		record = domain.PassengerRecord{Passenger: passenger, Paid: fare, Details: details}
		list, _, err := loadPassengerList(kv, passengerListKey(id))
		if err != nil {
			return err
		}
		if err := savePassengerList(kv, passengerListKey(id), append(list, record)); err != nil {
			return err
		}

		// A second booking by the same passenger appends a second entry.
		registry, err := loadIndex(kv, passengerRegistryKey(passenger))
		if err != nil {
			return err
		}
		if err := saveIndex(kv, passengerRegistryKey(passenger), append(registry, id)); err != nil {
			return err
		}

		if flight.PassengerCount == math.MaxUint32 {
			return fmt.Errorf("passenger count overflow on flight %s", id)
		}
		flight.PassengerCount++
		return putFlight(kv, flight)
	})
	if err != nil {
		return nil, nil, err
	}
	return flight, &record, nil
}

func (r *KVLedgerRepository) CancelPassenger(ctx context.Context, id domain.FlightID, passenger domain.Address) (*Cancellation, error) {
	var result Cancellation
	err := r.store.Update(ctx, func(kv storage.KV) error {
		flight, err := getFlight(kv, id)
		if err != nil {
			return err
		}
		list, ok, err := loadPassengerList(kv, passengerListKey(id))
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrNoPassengers
		}

		kept := make([]domain.PassengerRecord, 0, len(list))
		var removed []domain.PassengerRecord
		for _, rec := range list {
			if rec.Passenger == passenger {
				removed = append(removed, rec)
				continue
			}
			kept = append(kept, rec)
		}
		if len(removed) == 0 {
			return domain.ErrPassengerNotFound
		}
		if err := savePassengerList(kv, passengerListKey(id), kept); err != nil {
			return err
		}

		// Saturating decrement, one per removed booking.
		if n := uint32(len(removed)); flight.PassengerCount > n {
			flight.PassengerCount -= n
		} else {
			flight.PassengerCount = 0
		}
		if err := putFlight(kv, flight); err != nil {
			return err
		}

		registry, err := loadIndex(kv, passengerRegistryKey(passenger))
		if err != nil {
			return err
		}
		if trimmed, n := registry.removeAll(id); n > 0 {
			if err := saveIndex(kv, passengerRegistryKey(passenger), trimmed); err != nil {
				return err
			}
		}

		result = Cancellation{Flight: *flight, Removed: removed}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *KVLedgerRepository) UpdateStatus(ctx context.Context, id domain.FlightID, status domain.FlightStatus) (*domain.FlightDetails, error) {
	var flight *domain.FlightDetails
	err := r.store.Update(ctx, func(kv storage.KV) error {
		if !domain.TerminalStatus(status) {
			return domain.ErrInvalidStatus
		}
		var err error
		flight, err = getFlight(kv, id)
		if err != nil {
			return err
		}
		// Takeoff and cancelled are terminal; only a booking flight moves.
		if flight.Status != domain.FlightStatusBooking {
			return domain.ErrInvalidStatus
		}
		flight.Status = status
		return putFlight(kv, flight)
	})
	if err != nil {
		return nil, err
	}
	return flight, nil
}

func (r *KVLedgerRepository) Flight(ctx context.Context, id domain.FlightID) (*domain.FlightDetails, error) {
	var flight *domain.FlightDetails
	err := r.store.View(ctx, func(kv storage.KV) error {
		var err error
		flight, err = getFlight(kv, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return flight, nil
}

func (r *KVLedgerRepository) FlightsByRoute(ctx context.Context, src, dest string) ([]domain.FlightDetails, error) {
	return r.flightsByIndex(ctx, routeKey(src, dest))
}

func (r *KVLedgerRepository) AllFlights(ctx context.Context) ([]domain.FlightDetails, error) {
	return r.flightsByIndex(ctx, globalKey())
}

func (r *KVLedgerRepository) FlightsByPassenger(ctx context.Context, passenger domain.Address) ([]domain.FlightDetails, error) {
	return r.flightsByIndex(ctx, passengerRegistryKey(passenger))
}

func (r *KVLedgerRepository) Passengers(ctx context.Context, id domain.FlightID) ([]domain.PassengerRecord, error) {
	list := []domain.PassengerRecord{}
	err := r.store.View(ctx, func(kv storage.KV) error {
		loaded, _, err := loadPassengerList(kv, passengerListKey(id))
		if err != nil {
			return err
		}
		list = append(list, loaded...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// flightsByIndex resolves each id in the index to its record, in index
// order. Dangling entries are skipped, never an error.
func (r *KVLedgerRepository) flightsByIndex(ctx context.Context, key []byte) ([]domain.FlightDetails, error) {
	flights := make([]domain.FlightDetails, 0)
	err := r.store.View(ctx, func(kv storage.KV) error {
		ix, err := loadIndex(kv, key)
		if err != nil {
			return err
		}
		for _, id := range ix {
			flight, err := getFlight(kv, id)
			if errors.Is(err, domain.ErrFlightNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			flights = append(flights, *flight)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return flights, nil
}

func getFlight(kv storage.KV, id domain.FlightID) (*domain.FlightDetails, error) {
	raw, ok, err := kv.Get(flightKey(id))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrFlightNotFound
	}
	var flight domain.FlightDetails
	if err := json.Unmarshal(raw, &flight); err != nil {
		return nil, fmt.Errorf("decode flight %s: %w", id, err)
	}
	return &flight, nil
}

func putFlight(kv storage.KV, flight *domain.FlightDetails) error {
	raw, err := json.Marshal(flight)
	if err != nil {
		return err
	}
	return kv.Set(flightKey(flight.ID), raw)
}

var _ LedgerRepository = (*KVLedgerRepository)(nil)
