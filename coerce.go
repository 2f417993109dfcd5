package motis

import (
	"encoding/base64"
	"fmt"
	"math"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/ronanociosoig/Motis/debug"
	"github.com/ronanociosoig/Motis/ir"
	"github.com/ronanociosoig/Motis/schema"
)

var anyType = reflect.TypeOf((*any)(nil)).Elem()

// coerceAny coerces a value that is either a raw payload node, a
// sequence already processed by the element stage ([]any), or a final Go
// value produced by a hook.
func (d *Decoder) coerceAny(owner any, val any, desc schema.Descriptor, key string) (reflect.Value, error) {
	switch x := val.(type) {
	case *ir.Node:
		return d.coerceNode(owner, x, desc, key)
	case []any:
		switch desc.Kind {
		case schema.Dynamic:
			return d.dynamicValue(materialize(x), desc)
		case schema.Slice, schema.Array, schema.Set:
			return d.buildSequence(owner, x, desc, key)
		}
		return reflect.Value{}, &CoercionError{Key: key, Want: desc.Kind.String(), Got: "Array"}
	}
	// Identity short-circuit: a value whose runtime type already
	// satisfies the target descriptor is used as-is.
	rv := reflect.ValueOf(val)
	if desc.Kind == schema.Dynamic {
		return d.dynamicValue(val, desc)
	}
	if rv.IsValid() && rv.Type().AssignableTo(desc.Type) {
		return rv, nil
	}
	got := "<nil>"
	if rv.IsValid() {
		got = rv.Type().String()
	}
	return reflect.Value{}, &CoercionError{Key: key, Want: desc.Type.String(), Got: got}
}

// coerceNode is the coercion case table over (payload node kind × target
// descriptor kind). Pairs without a conversion rule fail with a
// CoercionError and the caller leaves the original value unmodified.
func (d *Decoder) coerceNode(owner any, node *ir.Node, desc schema.Descriptor, key string) (reflect.Value, error) {
	if node == nil || node.Type == ir.NullType {
		if desc.Type == nil {
			return reflect.Zero(anyType), nil
		}
		return reflect.Zero(desc.Type), nil
	}
	if debug.Coerce() {
		debug.Logf("motis: coerce key %q %s -> %s", key, node.Type, desc.Kind)
	}
	switch desc.Kind {
	case schema.Dynamic:
		return d.dynamicValue(node.Interface(), desc)

	case schema.Pointer:
		ev, err := d.coerceNode(owner, node, *desc.Elem, key)
		if err != nil {
			return reflect.Value{}, err
		}
		pv := reflect.New(desc.Elem.Type)
		pv.Elem().Set(ev)
		return pv, nil

	case schema.Bool:
		return d.coerceBool(node, desc, key)

	case schema.Int:
		return d.coerceInt(node, desc, key)

	case schema.Uint:
		return d.coerceUint(node, desc, key)

	case schema.Float:
		return d.coerceFloat(node, desc, key)

	case schema.String:
		return d.coerceString(node, desc, key)

	case schema.Bytes:
		return d.coerceBytes(node, desc, key)

	case schema.Time:
		return d.coerceTime(owner, node, desc, key)

	case schema.URL:
		return d.coerceURL(node, desc, key)

	case schema.Slice, schema.Array, schema.Set:
		if node.Type != ir.ArrayType {
			return reflect.Value{}, &CoercionError{Key: key, Want: desc.Kind.String(), Got: node.Type.String()}
		}
		elems := make([]any, len(node.Values))
		for i, v := range node.Values {
			elems[i] = v
		}
		return d.buildSequence(owner, elems, desc, key)

	case schema.Map:
		return d.buildMap(owner, node, desc, key)

	case schema.Struct:
		return d.constructObject(owner, node, desc, key)
	}
	return reflect.Value{}, &CoercionError{Key: key, Want: desc.Kind.String(), Got: node.Type.String()}
}

// dynamicValue wraps a value for an untyped target. Non-empty interface
// targets are satisfied only if the natural rendering implements them.
func (d *Decoder) dynamicValue(val any, desc schema.Descriptor) (reflect.Value, error) {
	t := desc.Type
	if t == nil {
		t = anyType
	}
	if val == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(val)
	if t == anyType || rv.Type().AssignableTo(t) {
		return rv, nil
	}
	return reflect.Value{}, &CoercionError{Want: t.String(), Got: rv.Type().String()}
}

func (d *Decoder) coerceBool(node *ir.Node, desc schema.Descriptor, key string) (reflect.Value, error) {
	out := reflect.New(desc.Type).Elem()
	switch node.Type {
	case ir.BoolType:
		out.SetBool(node.Bool)
		return out, nil
	case ir.NumberType:
		f, err := nodeFloat(node)
		if err != nil {
			return reflect.Value{}, &CoercionError{Key: key, Want: "Bool", Got: "Number", Err: err}
		}
		out.SetBool(f != 0)
		return out, nil
	case ir.StringType:
		// Float-tolerant numeric parse first, then a literal truth
		// parse ("true"/"false", "t"/"f", "1"/"0" etc.).
		if f, err := strconv.ParseFloat(node.String, 64); err == nil {
			out.SetBool(f != 0)
			return out, nil
		}
		b, err := strconv.ParseBool(node.String)
		if err != nil {
			return reflect.Value{}, &CoercionError{Key: key, Want: "Bool", Got: "String", Err: err}
		}
		out.SetBool(b)
		return out, nil
	}
	return reflect.Value{}, &CoercionError{Key: key, Want: "Bool", Got: node.Type.String()}
}

func (d *Decoder) coerceInt(node *ir.Node, desc schema.Descriptor, key string) (reflect.Value, error) {
	var i int64
	switch node.Type {
	case ir.NumberType:
		switch {
		case node.Int64 != nil:
			i = *node.Int64
		case node.Float64 != nil:
			f := *node.Float64
			if f != math.Trunc(f) {
				return reflect.Value{}, &CoercionError{Key: key, Want: "Int", Got: "Number",
					Message: fmt.Sprintf("non-integral number %v", f)}
			}
			i = int64(f)
		default:
			parsed, err := strconv.ParseInt(node.Number, 10, 64)
			if err != nil {
				return reflect.Value{}, &CoercionError{Key: key, Want: "Int", Got: "Number", Err: err}
			}
			i = parsed
		}
	case ir.StringType:
		parsed, err := strconv.ParseInt(node.String, 10, 64)
		if err != nil {
			return reflect.Value{}, &CoercionError{Key: key, Want: "Int", Got: "String", Err: err}
		}
		i = parsed
	default:
		return reflect.Value{}, &CoercionError{Key: key, Want: "Int", Got: node.Type.String()}
	}
	out := reflect.New(desc.Type).Elem()
	if out.OverflowInt(i) {
		return reflect.Value{}, &CoercionError{Key: key, Want: desc.Type.String(), Got: "Number",
			Message: fmt.Sprintf("value %d overflows %s", i, desc.Type)}
	}
	out.SetInt(i)
	return out, nil
}

func (d *Decoder) coerceUint(node *ir.Node, desc schema.Descriptor, key string) (reflect.Value, error) {
	var u uint64
	switch node.Type {
	case ir.NumberType:
		switch {
		case node.Int64 != nil:
			if *node.Int64 < 0 {
				return reflect.Value{}, &CoercionError{Key: key, Want: "Uint", Got: "Number",
					Message: fmt.Sprintf("negative value %d", *node.Int64)}
			}
			u = uint64(*node.Int64)
		case node.Float64 != nil:
			f := *node.Float64
			if f < 0 || f != math.Trunc(f) {
				return reflect.Value{}, &CoercionError{Key: key, Want: "Uint", Got: "Number",
					Message: fmt.Sprintf("non-integral or negative number %v", f)}
			}
			u = uint64(f)
		default:
			parsed, err := strconv.ParseUint(node.Number, 10, 64)
			if err != nil {
				return reflect.Value{}, &CoercionError{Key: key, Want: "Uint", Got: "Number", Err: err}
			}
			u = parsed
		}
	case ir.StringType:
		// Integer-only parse: a float literal is not a valid unsigned
		// integer here.
		parsed, err := strconv.ParseUint(node.String, 10, 64)
		if err != nil {
			return reflect.Value{}, &CoercionError{Key: key, Want: "Uint", Got: "String", Err: err}
		}
		u = parsed
	default:
		return reflect.Value{}, &CoercionError{Key: key, Want: "Uint", Got: node.Type.String()}
	}
	out := reflect.New(desc.Type).Elem()
	if out.OverflowUint(u) {
		return reflect.Value{}, &CoercionError{Key: key, Want: desc.Type.String(), Got: "Number",
			Message: fmt.Sprintf("value %d overflows %s", u, desc.Type)}
	}
	out.SetUint(u)
	return out, nil
}

func (d *Decoder) coerceFloat(node *ir.Node, desc schema.Descriptor, key string) (reflect.Value, error) {
	var f float64
	switch node.Type {
	case ir.NumberType:
		parsed, err := nodeFloat(node)
		if err != nil {
			return reflect.Value{}, &CoercionError{Key: key, Want: "Float", Got: "Number", Err: err}
		}
		f = parsed
	case ir.StringType:
		// Locale-agnostic decimal parse; floats allowed.
		parsed, err := strconv.ParseFloat(node.String, 64)
		if err != nil {
			return reflect.Value{}, &CoercionError{Key: key, Want: "Float", Got: "String", Err: err}
		}
		f = parsed
	default:
		return reflect.Value{}, &CoercionError{Key: key, Want: "Float", Got: node.Type.String()}
	}
	out := reflect.New(desc.Type).Elem()
	out.SetFloat(f)
	return out, nil
}

func (d *Decoder) coerceString(node *ir.Node, desc schema.Descriptor, key string) (reflect.Value, error) {
	out := reflect.New(desc.Type).Elem()
	switch node.Type {
	case ir.StringType:
		out.SetString(node.String)
		return out, nil
	case ir.NumberType:
		// Canonical numeric-to-string rendering.
		switch {
		case node.Int64 != nil:
			out.SetString(strconv.FormatInt(*node.Int64, 10))
		case node.Float64 != nil:
			out.SetString(strconv.FormatFloat(*node.Float64, 'g', -1, 64))
		default:
			out.SetString(node.Number)
		}
		return out, nil
	}
	return reflect.Value{}, &CoercionError{Key: key, Want: "String", Got: node.Type.String()}
}

// base64Alphabet spans the characters the tolerant decoder keeps; every
// other input character is skipped, not fatal.
const base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

func (d *Decoder) coerceBytes(node *ir.Node, desc schema.Descriptor, key string) (reflect.Value, error) {
	if node.Type != ir.StringType {
		return reflect.Value{}, &CoercionError{Key: key, Want: "Bytes", Got: node.Type.String()}
	}
	s := node.String
	// Padding ends the data.
	if i := strings.IndexByte(s, '='); i >= 0 {
		s = s[:i]
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(base64Alphabet, s[i]) >= 0 {
			b.WriteByte(s[i])
		}
	}
	data, err := base64.RawStdEncoding.DecodeString(b.String())
	if err != nil {
		return reflect.Value{}, &CoercionError{Key: key, Want: "Bytes", Got: "String", Err: err}
	}
	return reflect.ValueOf(data), nil
}

func (d *Decoder) coerceTime(owner any, node *ir.Node, desc schema.Descriptor, key string) (reflect.Value, error) {
	switch node.Type {
	case ir.StringType:
		layout := d.layoutFor(owner)
		ts, err := time.Parse(layout, node.String)
		if err != nil {
			return reflect.Value{}, &CoercionError{Key: key, Want: "Time", Got: "String", Err: err}
		}
		return reflect.ValueOf(ts), nil
	case ir.NumberType:
		// Numbers are Unix epoch offsets in seconds.
		f, err := nodeFloat(node)
		if err != nil {
			return reflect.Value{}, &CoercionError{Key: key, Want: "Time", Got: "Number", Err: err}
		}
		sec, frac := math.Modf(f)
		return reflect.ValueOf(time.Unix(int64(sec), int64(frac*float64(time.Second)))), nil
	}
	return reflect.Value{}, &CoercionError{Key: key, Want: "Time", Got: node.Type.String()}
}

func (d *Decoder) coerceURL(node *ir.Node, desc schema.Descriptor, key string) (reflect.Value, error) {
	if node.Type != ir.StringType {
		return reflect.Value{}, &CoercionError{Key: key, Want: "URL", Got: node.Type.String()}
	}
	u, err := url.Parse(node.String)
	if err != nil {
		return reflect.Value{}, &CoercionError{Key: key, Want: "URL", Got: "String", Err: err}
	}
	return reflect.ValueOf(*u), nil
}

// buildSequence re-wraps a sequence into the target collection kind:
// order-preserving for slices and arrays, de-ordered for sets.
func (d *Decoder) buildSequence(owner any, elems []any, desc schema.Descriptor, key string) (reflect.Value, error) {
	switch desc.Kind {
	case schema.Slice:
		out := reflect.MakeSlice(desc.Type, 0, len(elems))
		for _, e := range elems {
			ev, err := d.coerceAny(owner, e, *desc.Elem, key)
			if err != nil {
				return reflect.Value{}, err
			}
			if !ev.IsValid() {
				ev = reflect.Zero(desc.Elem.Type)
			}
			out = reflect.Append(out, ev)
		}
		return out, nil
	case schema.Array:
		if desc.Type.Len() != len(elems) {
			return reflect.Value{}, &CoercionError{Key: key, Want: desc.Type.String(), Got: "Array",
				Message: fmt.Sprintf("array length mismatch: expected %d, got %d", desc.Type.Len(), len(elems))}
		}
		out := reflect.New(desc.Type).Elem()
		for i, e := range elems {
			ev, err := d.coerceAny(owner, e, *desc.Elem, key)
			if err != nil {
				return reflect.Value{}, err
			}
			if ev.IsValid() {
				out.Index(i).Set(ev)
			}
		}
		return out, nil
	case schema.Set:
		out := reflect.MakeMapWithSize(desc.Type, len(elems))
		member := reflect.ValueOf(struct{}{})
		for _, e := range elems {
			ev, err := d.coerceAny(owner, e, *desc.Elem, key)
			if err != nil {
				return reflect.Value{}, err
			}
			if ev.IsValid() {
				out.SetMapIndex(ev, member)
			}
		}
		return out, nil
	}
	return reflect.Value{}, &CoercionError{Key: key, Want: desc.Kind.String(), Got: "Array"}
}

func (d *Decoder) buildMap(owner any, node *ir.Node, desc schema.Descriptor, key string) (reflect.Value, error) {
	if node.Type != ir.ObjectType {
		return reflect.Value{}, &CoercionError{Key: key, Want: "Map", Got: node.Type.String()}
	}
	if desc.Type.Key().Kind() != reflect.String {
		return reflect.Value{}, &CoercionError{Key: key, Want: desc.Type.String(), Got: "Object",
			Message: "map keys must be strings"}
	}
	out := reflect.MakeMapWithSize(desc.Type, len(node.Fields))
	for i := range node.Fields {
		vv, err := d.coerceNode(owner, node.Values[i], *desc.Elem, key)
		if err != nil {
			return reflect.Value{}, err
		}
		if !vv.IsValid() {
			vv = reflect.Zero(desc.Elem.Type)
		}
		kv := reflect.ValueOf(node.Fields[i].String).Convert(desc.Type.Key())
		out.SetMapIndex(kv, vv)
	}
	return out, nil
}

// constructObject coerces an object payload into a new instance of the
// target class: the factory hook may supply (or abort) the instance;
// otherwise a fresh one is default-constructed and recursively populated
// from the source mapping.
func (d *Decoder) constructObject(owner any, node *ir.Node, desc schema.Descriptor, key string) (reflect.Value, error) {
	if node.Type != ir.ObjectType {
		return reflect.Value{}, &CoercionError{Key: key, Want: desc.Type.String(), Got: node.Type.String()}
	}
	inst, abort := d.willCreate(owner, desc.Type, node, key)
	if abort {
		return reflect.Value{}, &CoercionError{Key: key, Want: desc.Type.String(), Got: "Object",
			Message: "object creation aborted"}
	}
	var pv reflect.Value
	if inst != nil {
		pv = reflect.ValueOf(inst)
		if pv.Kind() != reflect.Pointer || pv.Type().Elem() != desc.Type {
			return reflect.Value{}, &CoercionError{Key: key, Want: "*" + desc.Type.String(), Got: pv.Type().String(),
				Message: fmt.Sprintf("factory returned %s, want *%s", pv.Type(), desc.Type)}
		}
	} else {
		pv = reflect.New(desc.Type)
		if _, err := d.DecodeKeyedValues(pv.Interface(), node); err != nil {
			return reflect.Value{}, &CoercionError{Key: key, Want: desc.Type.String(), Got: "Object", Err: err}
		}
	}
	d.didCreate(owner, pv.Interface(), key)
	return pv.Elem(), nil
}

// materialize converts any remaining payload nodes in a processed
// sequence to their natural Go values.
func materialize(elems []any) []any {
	out := make([]any, len(elems))
	for i, e := range elems {
		if n, ok := e.(*ir.Node); ok {
			out[i] = n.Interface()
			continue
		}
		out[i] = e
	}
	return out
}

func nodeFloat(node *ir.Node) (float64, error) {
	switch {
	case node.Float64 != nil:
		return *node.Float64, nil
	case node.Int64 != nil:
		return float64(*node.Int64), nil
	case node.Number != "":
		return strconv.ParseFloat(node.Number, 64)
	}
	return 0, fmt.Errorf("number node has no value")
}
