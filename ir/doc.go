// Package ir provides the dynamic payload tree decoded into typed objects.
//
// # Overview
//
// A payload is the kind of value produced by parsing JSON: nested
// mappings, sequences, strings, numbers, booleans and null. The package
// represents such a value as a tree of Node, a recursive tagged union
// whose Type field selects the active variant. The variant set is closed,
// so code switching over node kinds can be checked for exhaustiveness.
//
// # Node Structure
//
//   - NullType: null value
//   - BoolType: boolean (true/false)
//   - NumberType: numeric value (int64 or float64, textual fallback)
//   - StringType: string value
//   - ArrayType: ordered list of nodes
//   - ObjectType: key-value pairs (fields and values)
//
// For ObjectType nodes, Fields[i] is the key for the value at Values[i],
// so there are always the same number of fields as values, and field
// order is preserved.
//
// # Creating Nodes
//
// Use constructor functions to create nodes:
//
//	node := ir.FromString("hello")
//	num := ir.FromInt(42)
//	obj := ir.FromMap(map[string]*ir.Node{
//	    "key": ir.FromString("value"),
//	})
//
// Payloads usually arrive as serialized documents:
//
//	node, err := ir.FromJSON(data)
//	node, err := ir.FromYAML(data)
//
// # Thread Safety
//
// Node values are not synchronized. Nodes handed to concurrent decoders
// must be treated as read-only or cloned per goroutine.
package ir
