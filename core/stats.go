package core

import (
	"time"
)

// Stats is the aggregate snapshot of the whole library.
type Stats struct {
	TotalBooks      int     `json:"total_books"`
	TotalCopies     int     `json:"total_copies"`
	AvailableCopies int     `json:"available_copies"`
	BorrowedCopies  int     `json:"borrowed_copies"`
	TotalUsers      int     `json:"total_users"`
	ActiveUsers     int     `json:"active_users"`
	UtilizationRate float64 `json:"utilization_rate"`
}

// Loan is the derived view of one (user, book) pair in the BORROWED state.
type Loan struct {
	UserID    UserIDString `json:"user_id"`
	UserName  string       `json:"user_name"`
	ISBN      ISBNString   `json:"isbn"`
	BookTitle string       `json:"book_title"`
	LoanDate  time.Time    `json:"loan_date"`
}

// LoanDates holds the start of every current loan, keyed by isbn, then user id.
type LoanDates map[ISBNString]map[UserIDString]time.Time
