package domain

import "errors"

// Ledger error taxonomy. Every failed operation surfaces exactly one of
// these; no operation leaves partial effects behind.
var (
	ErrAlreadyInitialized  = errors.New("ledger already initialized")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrFlightAlreadyExists = errors.New("flight already exists")
	ErrFlightNotFound      = errors.New("flight not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrFlightFull          = errors.New("flight full")
	ErrInvalidFare         = errors.New("invalid fare")
	ErrPassengerNotFound   = errors.New("passenger not found")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrNoPassengers        = errors.New("no passengers")
)
