// Package registry owns the User records of the library and their indices
// (by user id, by lower-cased name, by lower-cased email).
//
// It mirrors package catalog: index mutation only through AddUser and RemoveUser,
// per-entry locks for the records, entry before index lock.
package registry
