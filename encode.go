package motis

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"time"

	"github.com/ronanociosoig/Motis/ir"
	"github.com/ronanociosoig/Motis/registry"
	"github.com/ronanociosoig/Motis/schema"
)

// ValueForKeys encodes the requested keys of target using the default
// decoder. See Decoder.ValueForKeys.
func ValueForKeys(target any, keys ...string) (*ir.Node, error) {
	return defaultDecoder.ValueForKeys(target, keys...)
}

// ValueForKeys reads the properties mapped to keys and renders them as
// an object payload, preserving the order of keys. Each requested key
// gets exactly one entry; a key with no mapped property, or whose
// property holds a nil pointer, maps to an explicit null.
func (d *Decoder) ValueForKeys(target any, keys ...string) (*ir.Node, error) {
	v, t, err := targetValue(target)
	if err != nil {
		return nil, err
	}
	mapping := registry.Mapping(t)
	layout := d.layoutFor(target)

	kvs := make([]ir.KeyVal, 0, len(keys))
	for _, key := range keys {
		prop, mapped := mapping[key]
		if !mapped {
			prop = key
		}
		p, ok := schema.PropertyNamed(t, prop)
		if !ok {
			kvs = append(kvs, ir.KeyVal{Key: key, Val: ir.Null()})
			continue
		}
		node, err := d.encodeValue(v.FieldByIndex(p.Index), p.Desc, layout)
		if err != nil {
			return nil, fmt.Errorf("motis: encoding key %q: %w", key, err)
		}
		kvs = append(kvs, ir.KeyVal{Key: key, Val: node})
	}
	return ir.FromKeyVals(kvs), nil
}

// EncodeJSON renders the requested keys of target as a JSON object.
func (d *Decoder) EncodeJSON(target any, keys ...string) ([]byte, error) {
	node, err := d.ValueForKeys(target, keys...)
	if err != nil {
		return nil, err
	}
	return ir.ToJSON(node)
}

// encodeValue is the inverse of the coercion table: it renders a typed
// Go value back into a payload node.
func (d *Decoder) encodeValue(v reflect.Value, desc schema.Descriptor, layout string) (*ir.Node, error) {
	switch desc.Kind {
	case schema.Dynamic:
		if !v.IsValid() || (v.Kind() == reflect.Interface && v.IsNil()) {
			return ir.Null(), nil
		}
		return ir.FromGo(v.Interface())

	case schema.Pointer:
		if v.IsNil() {
			return ir.Null(), nil
		}
		return d.encodeValue(v.Elem(), *desc.Elem, layout)

	case schema.Bool:
		return ir.FromBool(v.Bool()), nil

	case schema.Int:
		return ir.FromInt(v.Int()), nil

	case schema.Uint:
		n, err := ir.FromGo(v.Uint())
		if err != nil {
			return nil, err
		}
		return n, nil

	case schema.Float:
		return ir.FromFloat(v.Float()), nil

	case schema.String:
		return ir.FromString(v.String()), nil

	case schema.Bytes:
		return ir.FromString(base64.StdEncoding.EncodeToString(v.Bytes())), nil

	case schema.Time:
		ts := v.Interface().(time.Time)
		return ir.FromString(ts.Format(layout)), nil

	case schema.URL:
		u := v.Interface().(url.URL)
		return ir.FromString(u.String()), nil

	case schema.Slice, schema.Array:
		vs := make([]*ir.Node, v.Len())
		for i := 0; i < v.Len(); i++ {
			n, err := d.encodeValue(v.Index(i), *desc.Elem, layout)
			if err != nil {
				return nil, err
			}
			vs[i] = n
		}
		return ir.FromSlice(vs), nil

	case schema.Set:
		// Member order is undefined in the set itself; render members
		// sorted by their encoding for a deterministic payload.
		vs := make([]*ir.Node, 0, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			n, err := d.encodeValue(iter.Key(), *desc.Elem, layout)
			if err != nil {
				return nil, err
			}
			vs = append(vs, n)
		}
		sort.Slice(vs, func(i, j int) bool { return nodeLess(vs[i], vs[j]) })
		return ir.FromSlice(vs), nil

	case schema.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("map keys must be strings, got %s", v.Type().Key())
		}
		m := make(map[string]*ir.Node, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			n, err := d.encodeValue(iter.Value(), *desc.Elem, layout)
			if err != nil {
				return nil, err
			}
			m[iter.Key().String()] = n
		}
		return ir.FromMap(m), nil

	case schema.Struct:
		return d.encodeStruct(v, layout)
	}
	return nil, fmt.Errorf("cannot encode %s", desc.Kind)
}

// encodeStruct renders a nested object over its properties, sorted by
// name.
func (d *Decoder) encodeStruct(v reflect.Value, layout string) (*ir.Node, error) {
	props := schema.Properties(v.Type())
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	kvs := make([]ir.KeyVal, 0, len(names))
	for _, name := range names {
		p := props[name]
		n, err := d.encodeValue(v.FieldByIndex(p.Index), p.Desc, layout)
		if err != nil {
			return nil, err
		}
		kvs = append(kvs, ir.KeyVal{Key: name, Val: n})
	}
	return ir.FromKeyVals(kvs), nil
}

// nodeLess orders leaf nodes for deterministic set rendering.
func nodeLess(a, b *ir.Node) bool {
	if a.Type != b.Type {
		return a.Type < b.Type
	}
	switch a.Type {
	case ir.StringType:
		return a.String < b.String
	case ir.NumberType:
		af, aerr := nodeFloat(a)
		bf, berr := nodeFloat(b)
		if aerr != nil || berr != nil {
			return a.Number < b.Number
		}
		return af < bf
	case ir.BoolType:
		return !a.Bool && b.Bool
	}
	return false
}
