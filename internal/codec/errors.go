package codec

import (
	"errors"
	"fmt"
)

var (
	// ErrAddressFormat matches every malformed address or hex input.
	ErrAddressFormat = errors.New("invalid address format")
	// ErrHexFormat is returned for odd-length or non-hex text.
	ErrHexFormat = fmt.Errorf("%w: invalid hex", ErrAddressFormat)
	// ErrInsufficientData is returned when fewer than one ABI word is available.
	ErrInsufficientData = errors.New("insufficient data for abi word")
	// ErrDirtyPadding is returned when the high 12 bytes of an address topic are not zero.
	ErrDirtyPadding = errors.New("non-zero padding in address word")
)

// FormatError describes a rejected address or hex input.
type FormatError struct {
	Input  string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s %q: %s", e.Err, e.Input, e.Reason)
}

func (e *FormatError) Unwrap() error { return e.Err }

func formatErr(input, reason string, err error) error {
	if len(input) > 80 {
		input = input[:77] + "..."
	}
	return &FormatError{Input: input, Reason: reason, Err: err}
}
