// Package kpath provides dotted key-path parsing and payload navigation.
//
// A key path addresses nested payload structure:
//
//	kp := kpath.Parse("user.address.city")
//	leaf, ok := kp.Resolve(payload)
//
// Resolution requires every intermediate segment to land on an object
// node; a path through a non-object value resolves to nothing, without
// error.
//
// # Related Packages
//
//   - github.com/ronanociosoig/Motis/ir - payload representation
//   - github.com/ronanociosoig/Motis/registry - per-type key path index
package kpath
