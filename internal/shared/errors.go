package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Device and transport errors
	ErrAPIRequest        = fmt.Errorf("API request failed")
	ErrDeviceUnavailable = fmt.Errorf("device unavailable")
	ErrActionFailed      = fmt.Errorf("device reported failure")
	ErrUnknownFile       = fmt.Errorf("unknown music file")
	ErrTimeout           = fmt.Errorf("operation timed out")

	// Journal errors
	ErrEntryNotFound = fmt.Errorf("journal entry not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrNotConfirmed    = fmt.Errorf("not confirmed")
)
