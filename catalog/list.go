package catalog

import (
	"cmp"
	"slices"

	"github.com/AntonStoeckl/library-lending-engine/core"
)

// SortKey selects the order of List results.
type SortKey string

const (
	SortByISBN          SortKey = "isbn"
	SortByTitle         SortKey = "title"
	SortByAuthor        SortKey = "author"
	SortByYear          SortKey = "year"
	SortByPopularity    SortKey = "popularity"
	SortByTimesBorrowed SortKey = "times_borrowed"
	SortByAvailable     SortKey = "available"
)

// Filter narrows List results. The zero value matches every book.
type Filter struct {
	Query         string // substring of isbn, title or author
	AvailableOnly bool   // at least one copy on the shelf
	OnLoanOnly    bool   // at least one copy on loan
}

// List returns the books matching filter in the order given by sortKey.
// Title and author orders come straight from the secondary indices; numeric orders are
// descending with isbn as tie breaker. Unknown keys fall back to isbn order.
func (c *Catalog) List(filter Filter, sortKey SortKey) []core.Book {
	var entries []*Entry

	needle := foldKey(filter.Query)

	c.mu.RLock()
	switch sortKey {
	case SortByTitle:
		entries = c.collect(c.byTitle.All())
	case SortByAuthor:
		entries = c.collect(c.byAuthor.All())
	default:
		entries = make([]*Entry, 0, c.byISBN.Len())
		for _, entry := range c.byISBN.All() {
			entries = append(entries, entry)
		}
	}
	c.mu.RUnlock()

	books := make([]core.Book, 0, len(entries))
	for _, entry := range entries {
		if needle != "" && !entry.matches(needle) {
			continue
		}

		book, ok := entry.Snapshot()
		if !ok || !filter.accepts(book) {
			continue
		}

		books = append(books, book)
	}

	if less := descendingBy(sortKey); less != nil {
		slices.SortStableFunc(books, less)
	}

	return books
}

func (f Filter) accepts(book core.Book) bool {
	if f.AvailableOnly && book.AvailableCopies == 0 {
		return false
	}

	if f.OnLoanOnly && book.BorrowedCopies() == 0 {
		return false
	}

	return true
}

func descendingBy(sortKey SortKey) func(a, b core.Book) int {
	var metric func(core.Book) float64

	switch sortKey {
	case SortByYear:
		metric = func(b core.Book) float64 { return float64(b.Year) }
	case SortByPopularity:
		metric = func(b core.Book) float64 { return b.PopularityScore }
	case SortByTimesBorrowed:
		metric = func(b core.Book) float64 { return float64(b.TimesBorrowed) }
	case SortByAvailable:
		metric = func(b core.Book) float64 { return float64(b.AvailableCopies) }
	default:
		return nil
	}

	return func(a, b core.Book) int {
		if c := cmp.Compare(metric(b), metric(a)); c != 0 {
			return c
		}

		return cmp.Compare(a.ISBN, b.ISBN)
	}
}
