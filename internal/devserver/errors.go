package devserver

import (
	"errors"
	"fmt"
	"time"

	"github.com/iota-uz/labdesk/pkg/serrors"
)

var (
	ErrBookingNotFound   = serrors.NewError("BOOKING_NOT_FOUND", "booking not found", "Errors.BookingNotFound")
	ErrBookingConflict   = serrors.NewError("BOOKING_CONFLICT", "booking conflict", "Errors.BookingConflict")
	ErrInvalidRecurrence = serrors.NewError("BOOKING_INVALID_RECURRENCE", "repeat date must be after start date", "Errors.InvalidRecurrence")
	ErrInvalidLeaveRange = serrors.NewError("LEAVE_INVALID_RANGE", "start date must be before or equal to end date", "Errors.InvalidLeaveRange")
	ErrWrongPassword     = serrors.NewError("PASSWORD_MISMATCH", "current password is incorrect", "Errors.WrongPassword")
	ErrUnknownInstructor = serrors.NewError("INSTRUCTOR_NOT_FOUND", "instructor not found", "Errors.InstructorNotFound")
)

// ConflictError rejects a booking series because one occurrence collides.
type ConflictError struct {
	Date   time.Time
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("Conflict on %s: %s (Series Cancelled)", e.Date.Format(dateLayout), e.Reason)
}

func (e *ConflictError) Is(target error) bool {
	return target == error(ErrBookingConflict)
}

func asConflict(err error) (*ConflictError, bool) {
	var ce *ConflictError
	ok := errors.As(err, &ce)
	return ce, ok
}
