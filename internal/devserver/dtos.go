package devserver

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/iota-uz/labdesk/pkg/constants"
)

type BookingDTO struct {
	LabID         int    `form:"lab_id" validate:"required,gt=0"`
	InstructorID  int    `form:"instructor_id" validate:"required,gt=0"`
	ModuleCode    string `form:"module_code" validate:"required"`
	PracticalName string `form:"practical_name"`
	BookingDate   string `form:"booking_date" validate:"required,datetime=2006-01-02"`
	StartTime     string `form:"start_time" validate:"required,datetime=15:04"`
	EndTime       string `form:"end_time" validate:"required,datetime=15:04"`
	IsRecurring   bool   `form:"is_recurring"`
	RepeatUntil   string `form:"repeat_until" validate:"omitempty,datetime=2006-01-02"`
}

// Ok validates the DTO and returns the first problem as a user-facing message.
func (d *BookingDTO) Ok() (string, bool) {
	return firstValidationMessage(constants.Validate.Struct(d))
}

func (d *BookingDTO) ToRequest() (BookingRequest, error) {
	date, err := time.Parse(dateLayout, d.BookingDate)
	if err != nil {
		return BookingRequest{}, err
	}
	req := BookingRequest{
		LabID:         d.LabID,
		InstructorID:  d.InstructorID,
		ModuleCode:    d.ModuleCode,
		PracticalName: strings.TrimSpace(d.PracticalName),
		Date:          date,
		Start:         d.StartTime,
		End:           d.EndTime,
	}
	if d.IsRecurring && d.RepeatUntil != "" {
		until, err := time.Parse(dateLayout, d.RepeatUntil)
		if err != nil {
			return BookingRequest{}, err
		}
		req.RepeatUntil = until
	}
	return req, nil
}

type LeaveDTO struct {
	InstructorID int    `form:"instructor_id" validate:"required,gt=0"`
	StartDate    string `form:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate      string `form:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Reason       string `form:"reason" validate:"max=500"`
}

func (d *LeaveDTO) Ok() (string, bool) {
	return firstValidationMessage(constants.Validate.Struct(d))
}

type PasswordDTO struct {
	InstructorID    int    `form:"instructor_id" validate:"required,gt=0"`
	CurrentPassword string `form:"current_password" validate:"required"`
	NewPassword     string `form:"new_password" validate:"required,min=8"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=NewPassword"`
}

func (d *PasswordDTO) Ok() (string, bool) {
	return firstValidationMessage(constants.Validate.Struct(d))
}

func firstValidationMessage(err error) (string, bool) {
	if err == nil {
		return "", true
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return err.Error(), false
	}
	fe := errs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field()), false
	case "datetime":
		return "Invalid Date/Time Format", false
	case "eqfield":
		return "Passwords do not match", false
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param()), false
	default:
		return fmt.Sprintf("%s is invalid", fe.Field()), false
	}
}
