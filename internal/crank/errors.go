package crank

import "errors"

var (
	// ErrAlreadyInitialized is returned when initializing a vault that
	// already has policy and progress records.
	ErrAlreadyInitialized = errors.New("crank: vault already initialized")

	// ErrDistributionTooEarly is returned when a day-starting crank arrives
	// before the 24h window since the previous day start has elapsed.
	ErrDistributionTooEarly = errors.New("crank: distribution window not yet open")

	// ErrDistributionAlreadyComplete is returned when cranking a vault whose
	// current day was already closed.
	ErrDistributionAlreadyComplete = errors.New("crank: distribution day already complete")
)
