package domain

import "errors"

var (
	// ErrUnknownStatus returned for a status outside the known set
	ErrUnknownStatus = errors.New("domain: unknown booking status")

	// ErrUnknownSource returned for an unsupported booking source
	ErrUnknownSource = errors.New("domain: unknown booking source")

	// ErrInvalidTimezone returned when a timezone name cannot be loaded
	ErrInvalidTimezone = errors.New("domain: invalid timezone")

	// ErrInvalidTimeRange returned when a range does not end after it starts
	ErrInvalidTimeRange = errors.New("domain: invalid time range")
)
