package core

import (
	"slices"
	"strings"
	"time"
)

// Book is a consistent, read-only snapshot of a catalog record.
type Book struct {
	ISBN             ISBNString     `json:"isbn"`
	Title            string         `json:"title"`
	Author           string         `json:"author"`
	Year             int            `json:"year"`
	TotalCopies      int            `json:"total_copies"`
	AvailableCopies  int            `json:"available_copies"`
	TimesBorrowed    int            `json:"times_borrowed"`
	CurrentBorrowers []UserIDString `json:"current_borrowers"`
	PopularityScore  float64        `json:"popularity_score"`
}

// BorrowedCopies returns the number of copies currently on loan.
func (b Book) BorrowedCopies() int {
	return b.TotalCopies - b.AvailableCopies
}

// IsBorrowedBy reports whether userID currently holds a copy. CurrentBorrowers is sorted.
func (b Book) IsBorrowedBy(userID UserIDString) bool {
	_, found := slices.BinarySearch(b.CurrentBorrowers, userID)
	return found
}

// NewBook carries the input of a catalog addition.
type NewBook struct {
	ISBN   ISBNString `json:"isbn" yaml:"isbn"`
	Title  string     `json:"title" yaml:"title"`
	Author string     `json:"author" yaml:"author"`
	Year   int        `json:"year" yaml:"year"`
	Copies int        `json:"copies" yaml:"copies"`
}

// Normalized returns the input with surrounding whitespace removed.
func (nb NewBook) Normalized() NewBook {
	nb.ISBN = strings.TrimSpace(nb.ISBN)
	nb.Title = strings.TrimSpace(nb.Title)
	nb.Author = strings.TrimSpace(nb.Author)

	return nb
}

// Validate checks the input of a catalog addition. The year bound is relative to now.
func (nb NewBook) Validate(now time.Time) error {
	switch {
	case nb.ISBN == "":
		return NewError(ErrInvalidField, "isbn must not be empty")
	case nb.Title == "":
		return NewError(ErrInvalidField, "title must not be empty")
	case nb.Author == "":
		return NewError(ErrInvalidField, "author must not be empty")
	case nb.Copies < 1:
		return NewError(ErrInvalidCopies, "total copies must be at least 1, got %d", nb.Copies)
	case nb.Year < MinPublicationYear || nb.Year > MaxPublicationYear(now):
		return NewError(ErrInvalidYear, "year %d outside [%d, %d]", nb.Year, MinPublicationYear, MaxPublicationYear(now))
	}

	return nil
}
