package core

import (
	"errors"
	"fmt"
)

// ErrorKind is the stable, coarse classification of a domain error.
type ErrorKind string

// ErrorCode is the stable, fine-grained classification of a domain error.
type ErrorCode string

const (
	KindNotFound            ErrorKind = "NotFound"
	KindDuplicateKey        ErrorKind = "DuplicateKey"
	KindInvalidArgument     ErrorKind = "InvalidArgument"
	KindConstraintViolation ErrorKind = "ConstraintViolation"
)

const (
	CodeBookNotFound      ErrorCode = "BookNotFound"
	CodeUserNotFound      ErrorCode = "UserNotFound"
	CodeDuplicateIsbn     ErrorCode = "DuplicateIsbn"
	CodeDuplicateUserID   ErrorCode = "DuplicateUserId"
	CodeInvalidEmail      ErrorCode = "InvalidEmail"
	CodeInvalidCopies     ErrorCode = "InvalidCopies"
	CodeInvalidYear       ErrorCode = "InvalidYear"
	CodeInvalidField      ErrorCode = "InvalidField"
	CodeBookOnLoan        ErrorCode = "BookOnLoan"
	CodeActiveLoans       ErrorCode = "ActiveLoans"
	CodeNoCopiesAvailable ErrorCode = "NoCopiesAvailable"
	CodeLoanLimitReached  ErrorCode = "LoanLimitReached"
	CodeAlreadyBorrowed   ErrorCode = "AlreadyBorrowed"
	CodeNotBorrowed       ErrorCode = "NotBorrowed"
)

// Error is a recoverable domain error with a stable kind and code plus a human-readable message.
//
// errors.Is matches an Error against the sentinels below: a sentinel with a code matches
// errors of that code, a kind-only sentinel (ErrNotFound, ...) matches every code of that kind.
type Error struct {
	Kind    ErrorKind
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is implements the errors.Is contract described on Error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	if t.Code != "" {
		return t.Code == e.Code
	}

	return t.Kind == e.Kind
}

// Kind-level sentinels.
var (
	ErrNotFound            = &Error{Kind: KindNotFound, Message: "not found"}
	ErrDuplicateKey        = &Error{Kind: KindDuplicateKey, Message: "duplicate key"}
	ErrInvalidArgument     = &Error{Kind: KindInvalidArgument, Message: "invalid argument"}
	ErrConstraintViolation = &Error{Kind: KindConstraintViolation, Message: "constraint violation"}
)

// Code-level sentinels.
var (
	ErrBookNotFound      = &Error{Kind: KindNotFound, Code: CodeBookNotFound, Message: "book not found"}
	ErrUserNotFound      = &Error{Kind: KindNotFound, Code: CodeUserNotFound, Message: "user not found"}
	ErrDuplicateIsbn     = &Error{Kind: KindDuplicateKey, Code: CodeDuplicateIsbn, Message: "isbn already exists"}
	ErrDuplicateUserID   = &Error{Kind: KindDuplicateKey, Code: CodeDuplicateUserID, Message: "user id already exists"}
	ErrInvalidEmail      = &Error{Kind: KindInvalidArgument, Code: CodeInvalidEmail, Message: "invalid email"}
	ErrInvalidCopies     = &Error{Kind: KindInvalidArgument, Code: CodeInvalidCopies, Message: "number of copies must be at least 1"}
	ErrInvalidYear       = &Error{Kind: KindInvalidArgument, Code: CodeInvalidYear, Message: "publication year out of range"}
	ErrInvalidField      = &Error{Kind: KindInvalidArgument, Code: CodeInvalidField, Message: "required field is empty"}
	ErrBookOnLoan        = &Error{Kind: KindConstraintViolation, Code: CodeBookOnLoan, Message: "book has copies on loan"}
	ErrActiveLoans       = &Error{Kind: KindConstraintViolation, Code: CodeActiveLoans, Message: "user has active loans"}
	ErrNoCopiesAvailable = &Error{Kind: KindConstraintViolation, Code: CodeNoCopiesAvailable, Message: "no copies available"}
	ErrLoanLimitReached  = &Error{Kind: KindConstraintViolation, Code: CodeLoanLimitReached, Message: "loan limit reached"}
	ErrAlreadyBorrowed   = &Error{Kind: KindConstraintViolation, Code: CodeAlreadyBorrowed, Message: "book already borrowed by user"}
	ErrNotBorrowed       = &Error{Kind: KindConstraintViolation, Code: CodeNotBorrowed, Message: "book is not borrowed by user"}
)

// NewError returns a copy of sentinel carrying a formatted message.
func NewError(sentinel *Error, format string, args ...any) error {
	return &Error{
		Kind:    sentinel.Kind,
		Code:    sentinel.Code,
		Message: fmt.Sprintf(format, args...),
	}
}

// KindOf returns the kind of a domain error, or "" if err is not one.
func KindOf(err error) ErrorKind {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}

	return ""
}

// CodeOf returns the code of a domain error, or "" if err is not one.
func CodeOf(err error) ErrorCode {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}

	return ""
}
