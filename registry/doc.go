// Package registry holds the process-wide, per-type decode caches.
//
// Three caches are kept, all keyed by target type identity and all built
// lazily on first use, then immutable and shared by every decode of that
// type:
//
//   - the effective payload-key to property-name mapping, merged over the
//     type's embedded ancestors (ancestors first, derived entries win on
//     key collisions);
//   - the declared sequence-element descriptors, merged the same way;
//   - the key path index, grouping the mapped keys by first path segment
//     in merge order.
//
// Schemas are assumed static for the process lifetime, so entries are
// never invalidated. Concurrent first builds for the same type resolve
// to a single canonical cached value: fills happen under a write lock
// with a re-check, reads take the read lock only until the entry exists.
package registry
