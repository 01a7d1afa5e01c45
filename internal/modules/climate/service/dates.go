package service

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/cmhillm75/sqlalchemy-challenge/internal/modules/climate/types"
)

const (
	StartDateHint = "Please add a date at the end of the url in the Date format of YYYY-MM-DD"
	RangeDateHint = "Please add start/end dates to the end of the URL in the format of YYYY-MM-DD/YYYY-MM-DD"
)

// ErrMalformedDate matches every *MalformedDateError.
var ErrMalformedDate = errors.New("malformed date")

// MalformedDateError carries the client-facing hint for a bad date segment.
type MalformedDateError struct {
	Hint  string
	Input []string
}

func (e *MalformedDateError) Error() string { return e.Hint }

func (e *MalformedDateError) Unwrap() error { return ErrMalformedDate }

var validate = validator.New()

type startDateParams struct {
	Start string `validate:"required,datetime=2006-01-02"`
}

type rangeDateParams struct {
	Start string `validate:"required,datetime=2006-01-02"`
	End   string `validate:"required,datetime=2006-01-02"`
}

// parseStartDate and parseRangeDates rely on the datetime tag alone: it
// runs time.Parse with DateLayout, so the parse after it cannot fail.
func parseStartDate(start string) (time.Time, error) {
	if err := validate.Struct(startDateParams{Start: start}); err != nil {
		return time.Time{}, &MalformedDateError{Hint: StartDateHint, Input: []string{start}}
	}
	from, _ := types.ParseDate(start)
	return from, nil
}

func parseRangeDates(start, end string) (time.Time, time.Time, error) {
	if err := validate.Struct(rangeDateParams{Start: start, End: end}); err != nil {
		return time.Time{}, time.Time{}, &MalformedDateError{Hint: RangeDateHint, Input: []string{start, end}}
	}
	from, _ := types.ParseDate(start)
	to, _ := types.ParseDate(end)
	return from, to, nil
}
