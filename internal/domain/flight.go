package domain

import (
	"encoding/hex"
	"fmt"
)

// FlightIDSize is the length of a flight identifier in bytes.
const FlightIDSize = 32

// FlightID is a caller-assigned 32-byte flight identifier. It renders as
// lowercase hex in JSON and URLs.
type FlightID [FlightIDSize]byte

func ParseFlightID(s string) (FlightID, error) {
	var id FlightID
	raw, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("flight id is not hex: %w", err)
	}
	if len(raw) != FlightIDSize {
		return id, fmt.Errorf("flight id must be %d bytes, got %d", FlightIDSize, len(raw))
	}
	copy(id[:], raw)
	return id, nil
}

func (id FlightID) String() string {
	return hex.EncodeToString(id[:])
}

func (id FlightID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *FlightID) UnmarshalText(text []byte) error {
	parsed, err := ParseFlightID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

type FlightStatus string

const (
	FlightStatusBooking   FlightStatus = "booking"
	FlightStatusTakeoff   FlightStatus = "takeoff"
	FlightStatusCancelled FlightStatus = "cancelled"
)

// TerminalStatus reports whether s is a valid target for a status
// transition. Flights start in "booking" and may only be moved to one of
// the two terminal states; moving back to "booking" is never allowed.
func TerminalStatus(s FlightStatus) bool {
	return s == FlightStatusTakeoff || s == FlightStatusCancelled
}

// FlightDetails is the canonical record for one flight. Everything except
// Status and PassengerCount is immutable after creation.
type FlightDetails struct {
	ID             FlightID     `json:"id"`
	MaxPassengers  uint32       `json:"max_passengers"`
	Distance       int64        `json:"distance"`
	Src            string       `json:"src"`
	Dest           string       `json:"dest"`
	Status         FlightStatus `json:"status"`
	EscrowAmount   int64        `json:"escrow_amount"`
	PassengerCount uint32       `json:"passenger_count"`
}

// EscrowAmount computes max * distance with an explicit overflow check.
// Overflow here means the caller slipped values past validation; the
// operation must abort loudly rather than store a wrapped amount.
func EscrowAmount(maxPassengers uint32, distance int64) (int64, error) {
	escrow := int64(maxPassengers) * distance
	if maxPassengers != 0 && escrow/int64(maxPassengers) != distance {
		return 0, fmt.Errorf("escrow overflow: %d * %d", maxPassengers, distance)
	}
	return escrow, nil
}
