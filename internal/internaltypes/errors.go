package internaltypes

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// Kind groups failures by how they are surfaced to the user.
type Kind int

const (
	KindUnknown Kind = iota
	KindNetwork
	KindValidation
	KindConflict
	KindUnauthorized
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	}
	return "unknown"
}

// ValidationError is raised before any request leaves the process.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// AlreadyBookedError is the venue service answering 409 to a booking.
type AlreadyBookedError struct {
	VenueID  string
	Messages []string
}

func (e *AlreadyBookedError) Error() string {
	msg := "venue is already booked for the selected dates"
	if len(e.Messages) > 0 {
		msg = strings.Join(e.Messages, "; ")
	}
	return fmt.Sprintf("booking venue %s: %s", e.VenueID, msg)
}

// RequestFailedError covers transport failures (Status 0) and non-2xx answers.
type RequestFailedError struct {
	Op       string
	Status   int
	Messages []string
	Err      error
}

func (e *RequestFailedError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(" failed")
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status=%d)", e.Status)
	}
	if len(e.Messages) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Messages, "; "))
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *RequestFailedError) Unwrap() error { return e.Err }

// Classify maps an error onto the failure taxonomy.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var (
		ve *ValidationError
		ab *AlreadyBookedError
		rf *RequestFailedError
	)
	switch {
	case errors.As(err, &ve):
		return KindValidation
	case errors.As(err, &ab):
		return KindConflict
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.As(err, &rf):
		return KindNetwork
	}
	return KindUnknown
}

// UserMessage renders err as a short, transient message for the UI.
// Messages supplied by the venue service win over the generic wording.
func UserMessage(err error) string {
	kind := Classify(err)
	switch kind {
	case KindValidation:
		var ve *ValidationError
		errors.As(err, &ve)
		return ve.Message
	case KindConflict:
		return "Those dates are already booked. Please pick different dates."
	}
	var rf *RequestFailedError
	if errors.As(err, &rf) && len(rf.Messages) > 0 {
		return rf.Messages[0]
	}
	switch kind {
	case KindUnauthorized:
		return "Please log in to continue."
	case KindNotFound:
		return "We could not find what you were looking for."
	case KindNetwork:
		return "Something went wrong talking to the booking service. Please try again."
	}
	return "Something went wrong. Please try again."
}
