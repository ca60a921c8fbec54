package sysex

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Validate checks the framing of a raw .syx capture: it must start with a
// SysEx start marker, end with an end marker, and carry only 7-bit-clean
// bytes in between (framing markers excepted). All problems found are
// reported together rather than stopping at the first one.
func Validate(data []byte) error {
	var result *multierror.Error

	if len(data) < 2 {
		return errors.New("sysex data too short")
	}
	if data[0] != Start {
		result = multierror.Append(result, fmt.Errorf("expected start byte 0x%02X, got 0x%02X", Start, data[0]))
	}
	if data[len(data)-1] != End {
		result = multierror.Append(result, fmt.Errorf("expected end byte 0x%02X, got 0x%02X", End, data[len(data)-1]))
	}
	for i, b := range data {
		if b >= 0x80 && b != Start && b != End {
			result = multierror.Append(result, fmt.Errorf("byte at position %d is not 7-bit clean (0x%02X)", i, b))
		}
	}
	return result.ErrorOrNil()
}
