// Package lending implements the Borrow and Return transactions of the library.
//
// A transaction resolves the book entry and the user entry, locks the book first and
// the user second, evaluates its preconditions with a pure decision function and only
// then writes both records. Failing transactions write nothing.
//
// Every transaction holds the engine's transaction gate in shared mode. Snapshot takes the
// gate exclusively, which yields a cross-entity view that never contains half of a transaction.
//
// Lock order, global and fixed: gate, book entry, user entry, index locks.
package lending
