package validation

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

var (
	ErrEmailRequired    = errors.New("email is required")
	ErrEmailInvalid     = errors.New("email is not a valid address")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrDateInvalid      = errors.New("date must be formatted as YYYY-MM-DD")
	ErrTimeInvalid      = errors.New("time must be formatted as HH:MM")
	ErrTimeOrder        = errors.New("end time must be after start time")
)

const minPasswordLength = 8

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func Email(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrEmailRequired
	}
	if !emailPattern.MatchString(email) {
		return ErrEmailInvalid
	}
	return nil
}

func Password(password string) error {
	if len(password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

func Date(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return ErrDateInvalid
	}
	return nil
}

func TimeOfDay(value string) error {
	if _, err := time.Parse("15:04", value); err != nil {
		return ErrTimeInvalid
	}
	return nil
}

// SlotTimes validates a slot's date and interval. Times are zero-padded HH:MM
// so string comparison orders them correctly.
func SlotTimes(date, start, end string) error {
	if err := Date(date); err != nil {
		return err
	}
	if err := TimeOfDay(start); err != nil {
		return err
	}
	if err := TimeOfDay(end); err != nil {
		return err
	}
	if end <= start {
		return ErrTimeOrder
	}
	return nil
}
