package appointment

import "errors"

var (
	ErrNotFound        = errors.New("appointment not found")
	ErrNotParticipant  = errors.New("not a participant of this appointment")
	ErrNotPending      = errors.New("appointment is not awaiting confirmation")
	ErrAlreadyClosed   = errors.New("appointment is already closed")
	ErrStylistNotFound = errors.New("stylist not found")
	ErrStylistInactive = errors.New("stylist is not accepting bookings")
	ErrServiceNotFound = errors.New("service not found")
)

// InvalidRequestError reports a rejected appointment request field.
type InvalidRequestError struct {
	Field   string
	Message string
}

func (e *InvalidRequestError) Error() string { return e.Field + ": " + e.Message }
