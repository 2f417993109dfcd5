package ir

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
)

// Node is a single value in a dynamic payload tree.
//
// The Node works as a recursive tagged union: the Type field selects which
// of the remaining fields carry the value. For ObjectType nodes Fields[i]
// is the (string typed) key for Values[i], so both slices always have the
// same length and preserve insertion order. For ArrayType nodes only
// Values is populated.
//
// Numbers are placed under Int64 if integral, Float64 if floating point,
// and under Number as a textual fallback when neither can represent the
// input exactly.
type Node struct {
	Type   Type
	Fields []*Node
	Values []*Node

	String  string
	Bool    bool
	Number  string
	Int64   *int64
	Float64 *float64
}

func FromString(v string) *Node {
	return &Node{Type: StringType, String: v}
}

func FromInt(v int64) *Node {
	return &Node{Type: NumberType, Int64: &v}
}

func FromFloat(f float64) *Node {
	return &Node{Type: NumberType, Float64: &f}
}

func FromBool(v bool) *Node {
	return &Node{Type: BoolType, Bool: v}
}

func Null() *Node {
	return &Node{Type: NullType}
}

// FromMap builds an ObjectType node from a key to node map. Keys are
// sorted so the result is deterministic.
func FromMap(m map[string]*Node) *Node {
	res := &Node{Type: ObjectType}
	res.Fields = make([]*Node, 0, len(m))
	res.Values = make([]*Node, 0, len(m))
	for _, key := range slices.Sorted(maps.Keys(m)) {
		res.Fields = append(res.Fields, FromString(key))
		res.Values = append(res.Values, m[key])
	}
	return res
}

// KeyVal pairs an object key with its value.
type KeyVal struct {
	Key string
	Val *Node
}

// FromKeyVals builds an ObjectType node preserving the order of kvs.
func FromKeyVals(kvs []KeyVal) *Node {
	res := &Node{Type: ObjectType}
	res.Fields = make([]*Node, len(kvs))
	res.Values = make([]*Node, len(kvs))
	for i := range kvs {
		res.Fields[i] = FromString(kvs[i].Key)
		res.Values[i] = kvs[i].Val
	}
	return res
}

func FromSlice(vs []*Node) *Node {
	res := &Node{Type: ArrayType}
	res.Values = make([]*Node, len(vs))
	copy(res.Values, vs)
	return res
}

// Get returns the value for field in an ObjectType node, or nil if the
// field is absent or y is not an object.
func Get(y *Node, field string) *Node {
	for i := range y.Fields {
		if y.Fields[i].String == field {
			return y.Values[i]
		}
	}
	return nil
}

// ToMap converts an ObjectType node to a map. Returns nil for any other
// node type. Insertion order is lost.
func ToMap(node *Node) map[string]*Node {
	if node.Type != ObjectType {
		return nil
	}
	res := make(map[string]*Node, len(node.Fields))
	for i := range node.Fields {
		res[node.Fields[i].String] = node.Values[i]
	}
	return res
}

func (y *Node) Clone() *Node {
	dst := &Node{
		Type:   y.Type,
		String: y.String,
		Bool:   y.Bool,
		Number: y.Number,
	}
	if y.Int64 != nil {
		i := *y.Int64
		dst.Int64 = &i
	}
	if y.Float64 != nil {
		f := *y.Float64
		dst.Float64 = &f
	}
	if y.Fields != nil {
		dst.Fields = make([]*Node, len(y.Fields))
		for i, f := range y.Fields {
			dst.Fields[i] = f.Clone()
		}
	}
	if y.Values != nil {
		dst.Values = make([]*Node, len(y.Values))
		for i, v := range y.Values {
			dst.Values[i] = v.Clone()
		}
	}
	return dst
}

// Interface returns the natural Go rendering of the node: nil, bool,
// int64, float64, string, []any or map[string]any.
func (y *Node) Interface() any {
	switch y.Type {
	case NullType:
		return nil
	case BoolType:
		return y.Bool
	case StringType:
		return y.String
	case NumberType:
		if y.Int64 != nil {
			return *y.Int64
		}
		if y.Float64 != nil {
			return *y.Float64
		}
		return y.Number
	case ArrayType:
		res := make([]any, len(y.Values))
		for i, v := range y.Values {
			res[i] = v.Interface()
		}
		return res
	case ObjectType:
		res := make(map[string]any, len(y.Fields))
		for i := range y.Fields {
			res[y.Fields[i].String] = y.Values[i].Interface()
		}
		return res
	}
	return nil
}

// FromGo converts a plain Go value into a node. Supported inputs are the
// kinds Interface produces plus the smaller numeric types; anything else
// is an error.
func FromGo(v any) (*Node, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case *Node:
		return x, nil
	case bool:
		return FromBool(x), nil
	case string:
		return FromString(x), nil
	case int:
		return FromInt(int64(x)), nil
	case int8:
		return FromInt(int64(x)), nil
	case int16:
		return FromInt(int64(x)), nil
	case int32:
		return FromInt(int64(x)), nil
	case int64:
		return FromInt(x), nil
	case uint:
		return FromInt(int64(x)), nil
	case uint8:
		return FromInt(int64(x)), nil
	case uint16:
		return FromInt(int64(x)), nil
	case uint32:
		return FromInt(int64(x)), nil
	case uint64:
		if x > uint64(1)<<63-1 {
			return &Node{Type: NumberType, Number: strconv.FormatUint(x, 10)}, nil
		}
		return FromInt(int64(x)), nil
	case float32:
		return FromFloat(float64(x)), nil
	case float64:
		return FromFloat(x), nil
	case []any:
		vs := make([]*Node, len(x))
		for i, e := range x {
			n, err := FromGo(e)
			if err != nil {
				return nil, err
			}
			vs[i] = n
		}
		return FromSlice(vs), nil
	case map[string]any:
		m := make(map[string]*Node, len(x))
		for k, e := range x {
			n, err := FromGo(e)
			if err != nil {
				return nil, err
			}
			m[k] = n
		}
		return FromMap(m), nil
	}
	return nil, fmt.Errorf("ir: cannot represent %T", v)
}

// ReType reinterprets a string node whose text spells a null, bool or
// number literal. Used when an untyped source is known to carry typed
// scalars.
func (y *Node) ReType() {
	if y.Type != StringType {
		return
	}
	switch y.String {
	case "null":
		y.Type = NullType
		return
	case "true":
		y.Type = BoolType
		y.Bool = true
		return
	case "false":
		y.Type = BoolType
		y.Bool = false
		return
	}
	if i, err := strconv.ParseInt(y.String, 10, 64); err == nil {
		y.Type = NumberType
		y.Int64 = &i
		return
	}
	if f, err := strconv.ParseFloat(y.String, 64); err == nil {
		y.Type = NumberType
		y.Float64 = &f
	}
}
