package core

import (
	"net/mail"
	"strings"
)

// User is a consistent, read-only snapshot of a registry record.
type User struct {
	UserID        UserIDString `json:"user_id"`
	Name          string       `json:"name"`
	Email         string       `json:"email"`
	BorrowedBooks []ISBNString `json:"borrowed_books"`
	BorrowedCount int          `json:"borrowed_count"`
	ActivityScore float64      `json:"activity_score"`
	CanBorrowMore bool         `json:"can_borrow_more"`
}

// NewUser carries the input of a registration.
type NewUser struct {
	UserID UserIDString `json:"user_id" yaml:"user_id"`
	Name   string       `json:"name" yaml:"name"`
	Email  string       `json:"email" yaml:"email"`
}

// Normalized returns the input with surrounding whitespace removed.
func (nu NewUser) Normalized() NewUser {
	nu.UserID = strings.TrimSpace(nu.UserID)
	nu.Name = strings.TrimSpace(nu.Name)
	nu.Email = strings.TrimSpace(nu.Email)

	return nu
}

// Validate checks the input of a registration.
func (nu NewUser) Validate() error {
	switch {
	case nu.UserID == "":
		return NewError(ErrInvalidField, "user id must not be empty")
	case nu.Name == "":
		return NewError(ErrInvalidField, "name must not be empty")
	}

	return ValidateEmail(nu.Email)
}

// ValidateEmail accepts a bare address of the form local@domain.tld with non-empty segments.
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return NewError(ErrInvalidEmail, "invalid email %q", email)
	}

	at := strings.LastIndex(email, "@")
	local, domain := email[:at], email[at+1:]
	if local == "" {
		return NewError(ErrInvalidEmail, "invalid email %q: empty local part", email)
	}

	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return NewError(ErrInvalidEmail, "invalid email %q: domain has no top-level domain", email)
	}

	for _, label := range labels {
		if label == "" {
			return NewError(ErrInvalidEmail, "invalid email %q: empty domain label", email)
		}
	}

	return nil
}
