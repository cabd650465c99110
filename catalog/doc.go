// Package catalog owns the Book records of the library and their three indices
// (by isbn, by lower-cased title, by lower-cased author).
//
// Every index mutation happens inside AddBook and RemoveBook, so the three indices
// can never drift apart. Lookups hold the index lock only for the duration of a
// lookup or scan; the records themselves are guarded by a per-entry RWMutex.
//
// LookupForMutation hands out the Entry of a book so that the lending engine can take
// its exclusive lock for the duration of a transaction. Locks are always taken in the
// order entry first, index lock second, never the other way around.
package catalog
