package model

import "github.com/rotisserie/eris"

var (
	// ErrDataUnavailable marks a failed fetch or an unparsable payload from
	// one of the remote sources. It is fatal to dashboard initialization.
	ErrDataUnavailable = eris.New("data unavailable")

	// ErrInvalidFilter marks a filter parameter outside its allowed values.
	ErrInvalidFilter = eris.New("invalid filter")
)

// UnavailableError wraps the cause of a failed dataset load and matches
// ErrDataUnavailable under errors.Is.
type UnavailableError struct {
	Source string
	Err    error
}

// NewUnavailableError wraps err as a load failure of the named source.
func NewUnavailableError(source string, err error) *UnavailableError {
	return &UnavailableError{Source: source, Err: err}
}

func (e *UnavailableError) Error() string {
	return e.Source + ": data unavailable: " + e.Err.Error()
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrDataUnavailable.
func (e *UnavailableError) Is(target error) bool {
	return target == ErrDataUnavailable
}
