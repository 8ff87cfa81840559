// Package collections provides generic data structures for Go applications.
//
// Only ArrayList and its mutex-guarded wrapper SyncedArrayList are carried
// here; ArrayList backs the in-memory job store. All
// collections support generics for type-safe usage.
package collections
