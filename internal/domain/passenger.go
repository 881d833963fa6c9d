package domain

// Address identifies an account: the admin or a ticket holder.
type Address string

// PassengerRecord is one booking of one passenger on one flight. The same
// passenger may hold several records on the same flight.
type PassengerRecord struct {
	Passenger Address `json:"passenger"`
	Paid      int64   `json:"paid"`
	Details   string  `json:"details"`
}

// SplitRefund divides a paid fare into the passenger refund (90%,
// truncating division) and the admin fee (the remainder).
func SplitRefund(paid int64) (refund, adminFee int64) {
	refund = paid * 9 / 10
	return refund, paid - refund
}
