package domain

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitRefund(t *testing.T) {
	testCases := []struct {
		paid, refund, fee int64
	}{
		{paid: 100, refund: 90, fee: 10},
		{paid: 101, refund: 90, fee: 11},
		{paid: 10, refund: 9, fee: 1},
		{paid: 9, refund: 8, fee: 1},
		{paid: 1, refund: 0, fee: 1},
	}
	for _, tc := range testCases {
		refund, fee := SplitRefund(tc.paid)
		assert.Equal(t, tc.refund, refund, "refund for %d", tc.paid)
		assert.Equal(t, tc.fee, fee, "fee for %d", tc.paid)
		assert.Equal(t, tc.paid, refund+fee, "split must be exact for %d", tc.paid)
	}
}

func TestEscrowAmount(t *testing.T) {
	escrow, err := EscrowAmount(10, 250)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), escrow)

	_, err = EscrowAmount(math.MaxUint32, math.MaxInt64/2)
	assert.Error(t, err)
}

func TestFlightID_RoundTrip(t *testing.T) {
	hex := strings.Repeat("ab", FlightIDSize)
	id, err := ParseFlightID(hex)
	require.NoError(t, err)
	assert.Equal(t, hex, id.String())

	raw, err := json.Marshal(id)
	require.NoError(t, err)
	assert.Equal(t, `"`+hex+`"`, string(raw))

	var decoded FlightID
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, id, decoded)
}

func TestParseFlightID_Rejections(t *testing.T) {
	_, err := ParseFlightID("not-hex")
	assert.Error(t, err)

	_, err = ParseFlightID("abcd")
	assert.Error(t, err)

	_, err = ParseFlightID(strings.Repeat("ab", FlightIDSize+1))
	assert.Error(t, err)
}

func TestTerminalStatus(t *testing.T) {
	assert.True(t, TerminalStatus(FlightStatusTakeoff))
	assert.True(t, TerminalStatus(FlightStatusCancelled))
	assert.False(t, TerminalStatus(FlightStatusBooking))
	assert.False(t, TerminalStatus(FlightStatus("boarding")))
}
