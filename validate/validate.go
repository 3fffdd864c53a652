// Package validate checks function and reservation records and the primitive
// values the CLI collects before they reach the stores.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"cine-reservas-cli/model"
)

const maxTextLen = 64

var (
	hhmmStrict = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
	hhmmLoose  = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type Errors []FieldError

func (e Errors) Error() string {
	if len(e) == 0 {
		return ""
	}
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Error()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return hhmmStrict.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("label_text", func(fl validator.FieldLevel) bool {
		return isLabelText(fl.Field().String())
	})
	_ = v.RegisterValidation("room", func(fl validator.FieldLevel) bool {
		return isRoomNumber(fl.Field().String())
	})
	_ = v.RegisterValidation("title_text", func(fl validator.FieldLevel) bool {
		return isTitleText(fl.Field().String())
	})
	_ = v.RegisterValidation("person_name", func(fl validator.FieldLevel) bool {
		return isPersonName(fl.Field().String())
	})
	return v
}

// Function validates a function record. A nil seat map is allowed (it is
// backfilled on load); a present one must hold exactly Capacity seats.
func Function(fn model.Function) error {
	errs := structErrors(fn)
	if fn.Seats != nil && len(fn.Seats) != fn.Capacity {
		errs = append(errs, FieldError{
			Field:   "Seats",
			Message: fmt.Sprintf("seat map has %d seats, capacity is %d", len(fn.Seats), fn.Capacity),
		})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func Reservation(r model.Reservation) error {
	errs := structErrors(r)
	if r.TicketCount != len(r.Seats) {
		errs = append(errs, FieldError{
			Field:   "TicketCount",
			Message: fmt.Sprintf("ticket count %d does not match %d seats", r.TicketCount, len(r.Seats)),
		})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// CustomerName trims and collapses whitespace and accepts letters and spaces only.
func CustomerName(name string) (string, error) {
	name = collapseSpaces(name)
	if err := validate.Var(name, "required,max=64,person_name"); err != nil {
		return "", fieldErrors("CustomerName", err)
	}
	return name, nil
}

// Text validates free text such as a room: letters, digits, spaces, '-' and ':'.
func Text(value string, field string) (string, error) {
	value = strings.TrimSpace(value)
	if err := validate.Var(value, "required,max=64,label_text"); err != nil {
		return "", fieldErrors(field, err)
	}
	return value, nil
}

// Title validates a catalog value such as a movie title or genre: letters,
// digits, spaces, '-', '.', ',' and ':' up to maxLen characters.
func Title(value string, field string, maxLen int) (string, error) {
	value = collapseSpaces(value)
	if err := validate.Var(value, fmt.Sprintf("required,max=%d,title_text", maxLen)); err != nil {
		return "", fieldErrors(field, err)
	}
	return value, nil
}

// Duration parses a running time in minutes, 1 to 600.
func Duration(value string) (int, error) {
	return wholeNumber("Duration", value, 1, 600)
}

// Room accepts a room number for a new function: digits only.
func Room(value string) (string, error) {
	value = strings.TrimSpace(value)
	if err := validate.Var(value, "required,max=16,room"); err != nil {
		return "", fieldErrors("Room", err)
	}
	return value, nil
}

// Time accepts H:MM or HH:MM in 00:00-23:59 and returns it as HH:MM.
func Time(value string) (string, error) {
	value = strings.TrimSpace(value)
	match := hhmmLoose.FindStringSubmatch(value)
	if match == nil {
		return "", Errors{{Field: "Time", Message: "must have format HH:MM"}}
	}
	h, _ := strconv.Atoi(match[1])
	m, _ := strconv.Atoi(match[2])
	if h > 23 || m > 59 {
		return "", Errors{{Field: "Time", Message: "out of range, use 00:00-23:59"}}
	}
	return fmt.Sprintf("%02d:%02d", h, m), nil
}

// SeatCount parses a non-negative integer and checks it against [min, max].
func SeatCount(value string, min int, max int) (int, error) {
	return wholeNumber("Seats", value, min, max)
}

func wholeNumber(field string, value string, min int, max int) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" || strings.IndexFunc(value, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		return 0, Errors{{Field: field, Message: "must be a whole number"}}
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, Errors{{Field: field, Message: "must be a whole number"}}
	}
	if n < min {
		return 0, Errors{{Field: field, Message: fmt.Sprintf("cannot be less than %d", min)}}
	}
	if n > max {
		return 0, Errors{{Field: field, Message: fmt.Sprintf("cannot be greater than %d", max)}}
	}
	return n, nil
}

func structErrors(v any) Errors {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Errors{{Field: "", Message: err.Error()}}
	}
	out := make(Errors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func fieldErrors(field string, err error) Errors {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Errors{{Field: field, Message: err.Error()}}
	}
	out := make(Errors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, FieldError{Field: field, Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "cannot be empty"
	case "max":
		return fmt.Sprintf("too long (max %s characters)", fe.Param())
	case "min":
		if fe.Kind().String() == "slice" {
			return fmt.Sprintf("needs at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "hhmm":
		return "must have format HH:MM (00:00-23:59)"
	case "label_text":
		return "may only contain letters, numbers, spaces, '-' or ':'"
	case "title_text":
		return "may only contain letters, numbers, spaces, '-', '.', ',' or ':'"
	case "room":
		return "must be a number"
	case "person_name":
		return "may only contain letters and spaces"
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

func isLabelText(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '-' || r == ':' {
			continue
		}
		return false
	}
	return true
}

func isTitleText(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || strings.ContainsRune("-.,:", r) {
			continue
		}
		return false
	}
	return true
}

func isRoomNumber(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isPersonName(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsSpace(r) {
			continue
		}
		return false
	}
	return true
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
