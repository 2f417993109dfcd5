package motis

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/ronanociosoig/Motis/debug"
	"github.com/ronanociosoig/Motis/ir"
	"github.com/ronanociosoig/Motis/registry"
	"github.com/ronanociosoig/Motis/schema"
)

// DecodeKeyedValues decodes payload into target using the default
// decoder. See Decoder.DecodeKeyedValues.
func DecodeKeyedValues(target any, payload *ir.Node) (*Result, error) {
	return defaultDecoder.DecodeKeyedValues(target, payload)
}

// SetValue decodes a single keyed value into target using the default
// decoder. See Decoder.SetValue.
func SetValue(target any, key string, value *ir.Node) error {
	return defaultDecoder.SetValue(target, key, value)
}

// GetValue reads the property mapped to key using the default decoder.
func GetValue(target any, key string) (any, bool) {
	return defaultDecoder.GetValue(target, key)
}

// DecodeJSON parses data as JSON and decodes it into target using the
// default decoder.
func DecodeJSON(target any, data []byte) (*Result, error) {
	return defaultDecoder.DecodeJSON(target, data)
}

// DecodeKeyedValues decodes every key of an object payload into the
// matching properties of target, which must be a non-nil pointer to a
// struct.
//
// For each payload key the per-type key path index yields zero or more
// key paths rooted at that key; each path is walked through the payload
// (abandoned silently if an intermediate segment is not an object) and
// the resolved non-null leaf feeds the property decode step. A payload
// key with no mapped paths is fed to the property step as itself, where
// the target's undefined-key policy decides.
//
// The returned error reports only misuse (nil target, non-object
// payload). Per-key validation and coercion failures never abort the
// decode of the remaining keys; they are reported through the hooks and
// collected in the Result.
func (d *Decoder) DecodeKeyedValues(target any, payload *ir.Node) (*Result, error) {
	v, t, err := targetValue(target)
	if err != nil {
		return nil, err
	}
	res := &Result{}
	if payload == nil {
		return res, nil
	}
	if payload.Type != ir.ObjectType {
		return nil, fmt.Errorf("motis: payload must be an object, got %s", payload.Type)
	}
	if debug.Decode() {
		debug.Logf("motis: decode %s from %d keys", t, len(payload.Fields))
	}
	for i := range payload.Fields {
		key := payload.Fields[i].String
		value := payload.Values[i]

		paths := registry.PathsRootedAt(t, key)
		if len(paths) == 0 {
			// Unmapped payload key: the undefined-key policy decides in
			// the property step.
			if value.Type == ir.NullType {
				continue
			}
			res.add(d.decodeProperty(target, v, t, key, value))
			continue
		}
		for _, kp := range paths {
			leaf, ok := kp.Resolve(payload)
			if !ok || leaf.Type == ir.NullType {
				continue
			}
			res.add(d.decodeProperty(target, v, t, kp.Raw(), leaf))
		}
	}
	return res, nil
}

// SetValue decodes one keyed value into target. A null value clears the
// mapped property. Unlike DecodeKeyedValues, validation and coercion
// failures are returned.
func (d *Decoder) SetValue(target any, key string, value *ir.Node) error {
	v, t, err := targetValue(target)
	if err != nil {
		return err
	}
	out := d.decodeProperty(target, v, t, key, value)
	return out.Err
}

// GetValue reads the current value of the property mapped to key. The
// mapping is used read-only; an unmapped key reads the property of the
// same name. ok is false when the target has no such property.
func (d *Decoder) GetValue(target any, key string) (any, bool) {
	v, t, err := targetValue(target)
	if err != nil {
		return nil, false
	}
	prop, mapped := registry.Mapping(t)[key]
	if !mapped {
		prop = key
	}
	p, ok := schema.PropertyNamed(t, prop)
	if !ok {
		return nil, false
	}
	return v.FieldByIndex(p.Index).Interface(), true
}

// DecodeJSON parses data as JSON and decodes it into target.
func (d *Decoder) DecodeJSON(target any, data []byte) (*Result, error) {
	node, err := ir.FromJSON(data)
	if err != nil {
		return nil, err
	}
	return d.DecodeKeyedValues(target, node)
}

// decodeProperty runs the per-property pipeline: mapped-name resolution,
// undefined-key policy, null normalization, sequence element fan-out,
// the validation hook, automatic coercion and finally assignment.
func (d *Decoder) decodeProperty(target any, v reflect.Value, t reflect.Type, key string, value *ir.Node) Outcome {
	prop, mapped := registry.Mapping(t)[key]
	if !mapped {
		if d.restricts(target) {
			err := &UndefinedKeyError{Key: key}
			d.undefinedKey(target, key)
			return Outcome{Key: key, Status: Skipped, Err: err}
		}
		prop = key
	}
	p, ok := schema.PropertyNamed(t, prop)
	if !ok {
		// Mapped or not, there is nothing to assign to; same signal as
		// an undefined mapping key.
		err := &UndefinedKeyError{Key: key}
		d.undefinedKey(target, key)
		return Outcome{Key: key, Status: Skipped, Err: err}
	}
	field := v.FieldByIndex(p.Index)

	// The payload's explicit null marker normalizes to the absence of a
	// value: the property is cleared, nothing else runs.
	if value == nil || value.Type == ir.NullType {
		field.Set(reflect.Zero(field.Type()))
		return Outcome{Key: key, Status: Applied}
	}

	// Sequence fan-out: per-element validation and declared-element-type
	// coercion, with rejected elements removed. The modified copy only
	// replaces the original when something actually changed.
	work := any(value)
	if value.Type == ir.ArrayType {
		if elems, changed := d.decodeElements(target, t, key, prop, value); changed {
			work = elems
		}
	}

	if val, ok := target.(Validator); ok {
		override, err := val.MotisValidateValue(key, work)
		if err != nil {
			verr := &ValidationError{Key: key, Err: err}
			d.invalidValue(target, key, value, verr)
			return Outcome{Key: key, Status: Rejected, Original: value, Err: verr}
		}
		if override != nil {
			// The hook replaced the value; assign it without automatic
			// coercion.
			ov := reflect.ValueOf(override)
			if !ov.Type().AssignableTo(field.Type()) {
				cerr := &CoercionError{
					Key:     key,
					Want:    field.Type().String(),
					Got:     ov.Type().String(),
					Message: fmt.Sprintf("validation override %s is not assignable to %s", ov.Type(), field.Type()),
				}
				d.invalidValue(target, key, value, cerr)
				return Outcome{Key: key, Status: Rejected, Original: value, Err: cerr}
			}
			field.Set(ov)
			return Outcome{Key: key, Status: Applied, Value: override}
		}
	}

	coerced, err := d.coerceAny(target, work, p.Desc, key)
	if err != nil {
		d.invalidValue(target, key, value, err)
		return Outcome{Key: key, Status: Rejected, Original: value, Err: err}
	}
	if !coerced.IsValid() {
		coerced = reflect.Zero(field.Type())
	}
	field.Set(coerced)
	return Outcome{Key: key, Status: Applied, Value: coerced.Interface()}
}

// decodeElements runs the element stage over an array payload value in
// reverse index order, mirroring in-place removal: dropping an element
// never perturbs the indices not yet visited. It returns the surviving
// elements (original order) and whether anything changed.
func (d *Decoder) decodeElements(target any, t reflect.Type, key, prop string, arr *ir.Node) ([]any, bool) {
	elemDesc, hasElemType := registry.ElementType(t, prop)
	validator, hasHook := target.(ElementValidator)
	if !hasElemType && !hasHook {
		return nil, false
	}

	out := make([]any, 0, len(arr.Values))
	changed := false
	for i := len(arr.Values) - 1; i >= 0; i-- {
		elem := arr.Values[i]
		if hasHook {
			override, err := validator.MotisValidateArrayElement(key, i, elem)
			if err != nil {
				eerr := &ArrayElementError{Key: key, Index: i, Err: err}
				d.invalidElement(target, key, i, elem, eerr)
				changed = true
				continue
			}
			if override != nil {
				// Hook replaced the element; declared element coercion
				// does not run on replacements.
				out = append(out, override)
				changed = true
				continue
			}
		}
		if hasElemType {
			cv, err := d.coerceNode(target, elem, elemDesc, key)
			if err != nil {
				eerr := &ArrayElementError{Key: key, Index: i, Err: err}
				d.invalidElement(target, key, i, elem, eerr)
				changed = true
				continue
			}
			out = append(out, cv.Interface())
			changed = true
			continue
		}
		out = append(out, elem)
	}
	slices.Reverse(out)
	return out, changed
}

func targetValue(target any) (reflect.Value, reflect.Type, error) {
	if target == nil {
		return reflect.Value{}, nil, fmt.Errorf("motis: target cannot be nil")
	}
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return reflect.Value{}, nil, fmt.Errorf("motis: target must be a non-nil pointer to a struct, got %T", target)
	}
	ev := rv.Elem()
	if ev.Kind() != reflect.Struct {
		return reflect.Value{}, nil, fmt.Errorf("motis: target must point to a struct, got %T", target)
	}
	return ev, ev.Type(), nil
}
