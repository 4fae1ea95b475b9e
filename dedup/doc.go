// Package dedup remembers which documents have already been processed.
//
// Documents are identified by the SHA-256 of their bytes, so a renamed copy
// is still recognised. The registry lives in a SQLite database opened with
// the pure-Go modernc.org/sqlite driver:
//
//	store, err := dedup.Open("biblioperson.db")
//	if err != nil { ... }
//	defer store.Close()
//	hash, isNew, err := store.CheckAndRegister("poemas.pdf")
package dedup
