// Package payment is the hook for the external rail that actually moves
// value between accounts. The ledger computes fares, refunds, and admin
// fees; it never settles them itself.
package payment

import (
	"context"

	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/sirupsen/logrus"
)

// EscrowAccount is the notional custodian holding fares between purchase
// and refund.
const EscrowAccount = domain.Address("escrow")

type Rail interface {
	Transfer(ctx context.Context, from, to domain.Address, amount int64) error
}

// LogRail records every computed transfer without moving anything.
// A deployment must replace it with a real rail before go-live.
type LogRail struct {
	log *logrus.Logger
}

func NewLogRail(log *logrus.Logger) *LogRail {
	if log == nil {
		log = logrus.New()
	}
	return &LogRail{log: log}
}

func (r *LogRail) Transfer(ctx context.Context, from, to domain.Address, amount int64) error {
	r.log.WithFields(logrus.Fields{
		"from":   from,
		"to":     to,
		"amount": amount,
	}).Info("payment transfer computed (not settled)")
	return nil
}

var _ Rail = (*LogRail)(nil)
