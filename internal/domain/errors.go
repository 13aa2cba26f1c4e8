package domain

import "errors"

var (
	ErrStorage           = errors.New("storage unavailable")
	ErrTagNotFound       = errors.New("tag not found")
	ErrTagExists         = errors.New("tag already exists")
	ErrInvalidTag        = errors.New("invalid tag")
	ErrTooManyTagFilters = errors.New("cannot search for more than one tag")
	ErrMalformedRow      = errors.New("malformed import row")
	ErrEmptyEntry        = errors.New("empty entry")
	ErrBadTimestamp      = errors.New(`must give time as "yyyy-mm-dd" or "yyyy-mm-dd HH:MM:SS"`)
)

// IsUsage reports whether err is caused by bad user input rather than the environment.
func IsUsage(err error) bool {
	return errors.Is(err, ErrTooManyTagFilters) ||
		errors.Is(err, ErrBadTimestamp) ||
		errors.Is(err, ErrEmptyEntry) ||
		errors.Is(err, ErrInvalidTag)
}
