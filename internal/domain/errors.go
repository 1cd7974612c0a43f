package domain

import "errors"

// Structural failures: the operation could not produce a well-formed result
// and aborts. Semantic findings on a well-formed formula are Issues, never
// errors.
var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrNoStagesFound       = errors.New("no stage markers found in formula text")
	ErrUnparsableQuantity  = errors.New("quantity cannot be parsed")
	ErrNonPositiveTarget   = errors.New("target volume must be positive")
	ErrDegenerateStage     = errors.New("stage has zero total volume")
	ErrValidationBlocked   = errors.New("formula has unresolved validation errors")
	ErrDuplicateFormulaKey = errors.New("formula key already exists in catalog")
	ErrInvalidOrderState   = errors.New("order is not in a state that allows this transition")
)
