// Package motis decodes dynamic payload trees into statically typed Go
// objects.
//
// A payload arrives as an ir.Node tree, typically parsed from JSON or
// YAML. Target types declare how payload keys map onto their properties
// by implementing the small interfaces in the schema package
// (schema.KeyMapper, schema.ElementMapper, schema.KeyPolicy,
// schema.DateLayouter); the registry package compiles those declarations
// once per type into merged mappings and key path indexes.
//
// DecodeKeyedValues walks the payload key by key, resolving mapped key
// paths, validating and coercing each value to the property's type, and
// assigning it. The decode of one key never aborts the others; the
// returned Result records what was applied, skipped and rejected.
//
// Coercion is automatic across scalar kinds (string to number, number
// to bool, formatted or epoch text to time.Time, base64 to []byte, and
// so on), and recursive for sequences, maps and nested objects. Target
// types can hook into the pipeline through the Validator, Factory and
// observer interfaces, or callers can install decoder-wide hooks with
// NewDecoder options.
//
// ValueForKeys runs the reverse direction, rendering selected
// properties back into a payload object.
package motis
