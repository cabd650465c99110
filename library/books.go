package library

import (
	"context"
	"fmt"
	"strconv"

	"github.com/AntonStoeckl/library-lending-engine/catalog"
	"github.com/AntonStoeckl/library-lending-engine/core"
)

type (
	// BookFilter narrows ListBooks results. The zero value matches every book.
	BookFilter = catalog.Filter

	// BookSortKey selects the order of ListBooks results.
	BookSortKey = catalog.SortKey
)

// AddBook adds a new title with nb.Copies copies.
func (l *Library) AddBook(ctx context.Context, nb core.NewBook) (core.Book, error) {
	o, ctx := l.observe(ctx, OperationAddBook, map[string]string{logAttrISBN: nb.ISBN})

	book, err := l.catalog.AddBook(nb)
	if err != nil {
		return core.Book{}, o.finish(err)
	}

	l.publish(ctx, o, core.BuildBookAddedToCatalog(book, l.now()),
		ActionAddBook, fmt.Sprintf("Book added: %s (%d copies)", book.Title, book.TotalCopies))

	return book, o.finish(nil)
}

// AddCopies increases the inventory of an existing title by n copies.
func (l *Library) AddCopies(ctx context.Context, isbn core.ISBNString, n int) (core.Book, error) {
	o, ctx := l.observe(ctx, OperationAddCopies, map[string]string{logAttrISBN: isbn, "copies": strconv.Itoa(n)})

	book, err := l.catalog.AddCopies(isbn, n)
	if err != nil {
		return core.Book{}, o.finish(err)
	}

	l.publish(ctx, o, core.BuildBookCopiesAdded(book, n, l.now()),
		ActionAddCopies, fmt.Sprintf("Copies added: %d of %s, %d in total", n, book.Title, book.TotalCopies))

	return book, o.finish(nil)
}

// RemoveBook removes a title that has no copy on loan.
func (l *Library) RemoveBook(ctx context.Context, isbn core.ISBNString) error {
	o, ctx := l.observe(ctx, OperationRemoveBook, map[string]string{logAttrISBN: isbn})

	book, err := l.catalog.RemoveBook(isbn)
	if err != nil {
		return o.finish(err)
	}

	l.publish(ctx, o, core.BuildBookRemovedFromCatalog(book, l.now()),
		ActionRemoveBook, fmt.Sprintf("Book removed: %s", book.Title))

	return o.finish(nil)
}

// GetBook returns the book with isbn.
func (l *Library) GetBook(isbn core.ISBNString) (core.Book, error) {
	return l.catalog.FindByISBN(isbn)
}

// FindBooksByTitle returns the books whose title starts with prefix, case-insensitively.
func (l *Library) FindBooksByTitle(prefix string) []core.Book {
	return l.catalog.FindByTitle(prefix)
}

// FindBooksByAuthor returns the books whose author starts with prefix, case-insensitively.
func (l *Library) FindBooksByAuthor(prefix string) []core.Book {
	return l.catalog.FindByAuthor(prefix)
}

// SearchBooks returns the books whose isbn, title or author contains query, case-insensitively.
func (l *Library) SearchBooks(query string) []core.Book {
	return l.catalog.Search(query)
}

// ListBooks returns the books matching filter in the order of sortKey.
func (l *Library) ListBooks(filter BookFilter, sortKey BookSortKey) []core.Book {
	return l.catalog.List(filter, sortKey)
}
