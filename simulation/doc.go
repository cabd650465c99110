// Package simulation drives a library with concurrent readers that borrow and return books.
//
// Every worker owns a pseudo-random source derived from Config.Seed, so the sequence of
// decisions per worker is reproducible. Interleaving between workers is not, which is the
// point: the run exercises the engine's locking and ends with an invariant check.
package simulation
