package ir

import (
	"bytes"
	"fmt"
	"strconv"

	segjson "github.com/segmentio/encoding/json"
	"github.com/tidwall/gjson"
)

// FromJSON parses JSON bytes into a payload tree.
func FromJSON(data []byte) (*Node, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("ir: invalid JSON")
	}
	return fromResult(gjson.ParseBytes(data)), nil
}

func fromResult(r gjson.Result) *Node {
	switch {
	case r.IsObject():
		res := &Node{Type: ObjectType}
		r.ForEach(func(key, value gjson.Result) bool {
			res.Fields = append(res.Fields, FromString(key.String()))
			res.Values = append(res.Values, fromResult(value))
			return true
		})
		return res
	case r.IsArray():
		res := &Node{Type: ArrayType}
		r.ForEach(func(_, value gjson.Result) bool {
			res.Values = append(res.Values, fromResult(value))
			return true
		})
		return res
	}
	switch r.Type {
	case gjson.String:
		return FromString(r.String())
	case gjson.True:
		return FromBool(true)
	case gjson.False:
		return FromBool(false)
	case gjson.Number:
		// Keep integers exact; gjson only exposes float64.
		if i, err := strconv.ParseInt(r.Raw, 10, 64); err == nil {
			return FromInt(i)
		}
		if f, err := strconv.ParseFloat(r.Raw, 64); err == nil {
			return FromFloat(f)
		}
		return &Node{Type: NumberType, Number: r.Raw}
	}
	return Null()
}

// ToJSON renders the node as JSON, preserving object field order.
func ToJSON(node *Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, node); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, node *Node) error {
	if node == nil {
		buf.WriteString("null")
		return nil
	}
	switch node.Type {
	case NullType:
		buf.WriteString("null")
	case BoolType:
		buf.WriteString(strconv.FormatBool(node.Bool))
	case NumberType:
		switch {
		case node.Int64 != nil:
			buf.WriteString(strconv.FormatInt(*node.Int64, 10))
		case node.Float64 != nil:
			b, err := segjson.Marshal(*node.Float64)
			if err != nil {
				return err
			}
			buf.Write(b)
		default:
			buf.WriteString(node.Number)
		}
	case StringType:
		b, err := segjson.Marshal(node.String)
		if err != nil {
			return err
		}
		buf.Write(b)
	case ArrayType:
		buf.WriteByte('[')
		for i, v := range node.Values {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, v); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case ObjectType:
		buf.WriteByte('{')
		for i := range node.Fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := segjson.Marshal(node.Fields[i].String)
			if err != nil {
				return err
			}
			buf.Write(b)
			buf.WriteByte(':')
			if err := writeJSON(buf, node.Values[i]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("ir: cannot encode node type %s", node.Type)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (y *Node) MarshalJSON() ([]byte, error) {
	return ToJSON(y)
}

// UnmarshalJSON implements json.Unmarshaler.
func (y *Node) UnmarshalJSON(data []byte) error {
	n, err := FromJSON(data)
	if err != nil {
		return err
	}
	*y = *n
	return nil
}
