package errs

import (
	"errors"
	"fmt"
)

// SilentError wraps an error that should only appear in the debug log.
//
// It is used to keep the default log quiet when a server sends packets
// the engine cannot read; malformed packets degrade to unknown packets
// rather than surfacing as connection errors.
type SilentError struct{ error }

func (e *SilentError) Error() string { return e.error.Error() }

func (e *SilentError) Unwrap() error { return e.error }

func NewSilentErr(format string, a ...any) error {
	return &SilentError{fmt.Errorf(format, a...)}
}

func WrapSilent(wrapped error) error {
	return &SilentError{wrapped}
}

// IsSilent reports whether err is or wraps a SilentError.
func IsSilent(err error) bool {
	var se *SilentError
	return errors.As(err, &se)
}

// IsConnClosedErr reports the string-typed close errors the net package
// returns, see https://github.com/golang/go/issues/4373 for details.
func IsConnClosedErr(err error) bool {
	return err != nil &&
		(err.Error() == "use of closed network connection" ||
			err.Error() == "read: connection reset by peer")
}
