// Package dirdb provides a directory-backed object store for scientific records.
//
// # Overview
//
// A [Store] is rooted at a directory. Each table is a sub-directory and each row
// is a metadata document named "<id>_<name><meta ext>", optionally paired with a
// binary payload "<id>_<name><data ext>" holding a numeric array. Identifiers are
// allocated by the store as max(existing)+1, starting at [FirstID] for an empty
// table, and are never reused.
//
// # Saving
//
// [Store.Save] persists the data objects an object owns before the object
// itself, so the object's metadata can embed their freshly assigned ids. Saving
// binds the object to the store. [Store.SaveDataObj] is idempotent: a data
// object already bound to the same store whose row still exists is not written
// again.
//
// # Concurrency
//
// A Store assumes it is the only writer of its directory tree. Allocation is
// serialized inside one Store, but two processes writing the same table may
// compute the same next id.
package dirdb
