// Package index provides the ordered in-memory indices used by the catalog and the registry.
//
// Tree is an AVL tree keyed by any totally ordered key. It guarantees O(log n) insert,
// remove and lookup, and O(log n + k) ordered range scans that are exposed as lazy
// iter.Seq2 sequences, so callers can stop early without materializing results.
//
// Multi is a secondary index that maps a (possibly duplicated) secondary key such as a
// title or an e-mail address to the ordered set of primary keys carrying it.
//
// Neither type is safe for concurrent use. The owning component guards them.
//
// Typical usage:
//
//	byISBN := index.New[string, *Entry]()
//	if err := byISBN.Insert(isbn, entry); err != nil {
//		// index.ErrDuplicateKey
//	}
//
//	byTitle := index.NewMulti[string, string]()
//	_ = byTitle.Add(strings.ToLower(title), isbn)
//
//	for _, isbn := range index.MultiPrefix(byTitle, "cien") {
//		// isbns of all books whose title starts with "cien", ordered by (title, isbn)
//	}
package index
