// Package core contains the domain model of the library lending engine.
//
// It holds the read-only snapshots exchanged at the boundary (Book, User, Loan, Stats)
// together with their exact JSON shape, the validation rules applied on creation,
// the derived score functions, the error taxonomy, and the domain events that are
// recorded in the operation journal after every successful mutation.
//
// Nothing in this package holds mutable state or locks. The catalog, the registry
// and the lending engine own the live records and produce the snapshots defined here.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'domain' layer.
package core
