// Package validate checks user input before anything is sent to storage.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/balkashynov/zen/internal/models"
)

const (
	MinDuration = 1   // minutes
	MaxDuration = 180 // minutes
	MinPassword = 6

	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var emailPattern = regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}$`)

// FieldError is a problem with one input field
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Errors collects field errors in the order they were found
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Error()
	}
	return strings.Join(msgs, "; ")
}

// Field returns the first message for field, or ""
func (e Errors) Field(field string) string {
	for _, fe := range e {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}

// Err returns nil when there is nothing to report
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func (e *Errors) add(field, message string) {
	*e = append(*e, FieldError{Field: field, Message: message})
}

// Title requires a non-blank title
func Title(title string) error {
	if strings.TrimSpace(title) == "" {
		return FieldError{Field: "title", Message: "Title is required"}
	}
	return nil
}

// Duration requires minutes within [MinDuration, MaxDuration]
func Duration(minutes int) error {
	if minutes < MinDuration || minutes > MaxDuration {
		return FieldError{
			Field:   "duration",
			Message: fmt.Sprintf("Duration must be between %d and %d minutes", MinDuration, MaxDuration),
		}
	}
	return nil
}

// Date requires YYYY-MM-DD
func Date(date string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return FieldError{Field: "date", Message: "Date must be YYYY-MM-DD"}
	}
	return nil
}

// Clock requires HH:MM on a 24 hour clock
func Clock(clock string) error {
	if _, err := time.Parse(TimeLayout, clock); err != nil {
		return FieldError{Field: "time", Message: "Time must be HH:MM"}
	}
	return nil
}

// Email requires a plausible address
func Email(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return FieldError{Field: "email", Message: "Email is required"}
	}
	if !emailPattern.MatchString(email) {
		return FieldError{Field: "email", Message: "Invalid email address"}
	}
	return nil
}

// Password requires at least MinPassword characters
func Password(password string) error {
	if password == "" {
		return FieldError{Field: "password", Message: "Password is required"}
	}
	if len([]rune(password)) < MinPassword {
		return FieldError{
			Field:   "password",
			Message: fmt.Sprintf("Password must be at least %d characters", MinPassword),
		}
	}
	return nil
}

// NewSession validates every field of a session about to be created
func NewSession(title string, duration int, date, clock string) error {
	var errs Errors
	collect(&errs, Title(title))
	collect(&errs, Duration(duration))
	collect(&errs, Date(date))
	collect(&errs, Clock(clock))
	return errs.Err()
}

// SessionPatch validates only the fields the patch carries
func SessionPatch(p models.SessionPatch) error {
	var errs Errors
	if p.Title != nil {
		collect(&errs, Title(*p.Title))
	}
	if p.Duration != nil {
		collect(&errs, Duration(*p.Duration))
	}
	if p.Date != nil {
		collect(&errs, Date(*p.Date))
	}
	if p.Time != nil {
		collect(&errs, Clock(*p.Time))
	}
	if p.Status != nil && !p.Status.Valid() {
		errs.add("status", fmt.Sprintf("Unknown status %q", *p.Status))
	}
	if p.ElapsedTime != nil && *p.ElapsedTime < 0 {
		errs.add("elapsed_time", "Elapsed time cannot be negative")
	}
	return errs.Err()
}

// TaskPatch validates only the fields the patch carries
func TaskPatch(p models.TaskPatch) error {
	var errs Errors
	if p.Title != nil {
		collect(&errs, Title(*p.Title))
	}
	if p.Status != nil && !p.Status.Valid() {
		errs.add("status", fmt.Sprintf("Unknown status %q", *p.Status))
	}
	return errs.Err()
}

// Login validates sign-in input
func Login(email, password string) error {
	var errs Errors
	collect(&errs, Email(email))
	collect(&errs, Password(password))
	return errs.Err()
}

// Registration validates sign-up input including the confirmation field
func Registration(name, email, password, confirm string) error {
	var errs Errors
	if strings.TrimSpace(name) == "" {
		errs.add("name", "Name is required")
	}
	collect(&errs, Email(email))
	collect(&errs, Password(password))
	collect(&errs, Confirm(password, confirm))
	return errs.Err()
}

// Confirm requires the confirmation to repeat the password
func Confirm(password, confirm string) error {
	switch {
	case confirm == "":
		return FieldError{Field: "confirm", Message: "Please confirm your password"}
	case confirm != password:
		return FieldError{Field: "confirm", Message: "Passwords do not match"}
	}
	return nil
}

func collect(errs *Errors, err error) {
	if err == nil {
		return
	}
	if fe, ok := err.(FieldError); ok {
		*errs = append(*errs, fe)
		return
	}
	errs.add("", err.Error())
}
