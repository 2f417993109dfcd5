// Package schema answers "what kind of value does this property expect".
//
// It has two halves. Descriptor/DescriptorOf classify a Go type into the
// finite set of coercion targets (primitive kinds, well-known classes
// like time.Time and url.URL, containers, structs, dynamic). Properties
// enumerates the settable fields of a target struct type, with embedded
// struct promotion, and caches the result per type for the process
// lifetime.
//
// The package also declares the collaborator interfaces a target type may
// implement to describe itself: KeyMapper, ElementMapper, KeyPolicy and
// DateLayouter. All are optional; defaults are an empty mapping, dynamic
// elements, accept-undefined-keys and DefaultDateLayout.
package schema
