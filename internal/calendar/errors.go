package calendar

import "errors"

// ErrStaleResponse marks a week fetch that finished after a newer one was
// issued. Its result is dropped and it is never reported to observers.
var ErrStaleResponse = errors.New("stale week response discarded")

// StoreError wraps a failure returned by the AppointmentStore. Its message
// is the store's message, unchanged.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeError(op string, err error) error {
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}
