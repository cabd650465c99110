// Package library is the boundary of the lending engine.
//
// A Library owns one Catalog, one Registry and one lending Engine and exposes the complete
// operation set: catalog and user management, Borrow and Return, lookups, listings and reports.
// Every successful mutation is appended to the operation journal as a domain event and queued as
// a notification. Both happen after the engine has released its locks; a failing journal never
// turns a committed operation into an error.
//
// Example:
//
//	lib, err := library.New(
//		library.WithMaxLoansPerUser(5),
//		library.WithContextualLogger(logger),
//	)
//	if err != nil {
//		return err
//	}
//
//	if _, err = lib.AddBook(ctx, core.NewBook{ISBN: "978-1", Title: "Go", Author: "Pike", Year: 2015, Copies: 2}); err != nil {
//		return err
//	}
//
//	switch err = lib.Borrow(ctx, "u1", "978-1"); core.CodeOf(err) {
//	case "":
//		// lent
//	case core.CodeNoCopiesAvailable:
//		// tell the user to come back later
//	}
package library
