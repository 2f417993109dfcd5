package motis

import (
	"reflect"

	"github.com/ronanociosoig/Motis/ir"
	"github.com/ronanociosoig/Motis/schema"
)

// The hook interfaces below are optional override points implemented by
// target types, in the manner of encoding.TextUnmarshaler: the decoder
// asserts each one on the target being populated and falls back to an
// accept-everything default when absent. Function-valued equivalents can
// be installed on a Decoder for non-intrusive wiring; when both are
// present the Decoder-level function wins.

// Validator vets a property value before automatic coercion.
//
// value is the raw payload value (*ir.Node), or []any when the sequence
// element stage already produced a modified copy. Returning a non-nil
// override assigns that value as-is and skips coercion. Returning an
// error rejects the value: nothing is assigned and the invalid-value
// hook fires. Returning (nil, nil) accepts the value unchanged and
// proceeds with coercion.
type Validator interface {
	MotisValidateValue(key string, value any) (override any, err error)
}

// ElementValidator vets one element of a sequence-valued property. The
// same override/reject/accept protocol as Validator applies, except that
// a rejected element is removed from the sequence rather than failing
// the property.
type ElementValidator interface {
	MotisValidateArrayElement(key string, index int, element *ir.Node) (override any, err error)
}

// Factory intercepts construction of nested objects. Returning a non-nil
// instance uses it as the coerced value without populating it from src.
// Returning abort fails the coercion of this one property.
type Factory interface {
	MotisWillCreateObject(t reflect.Type, src *ir.Node, key string) (instance any, abort bool)
}

// Observer is notified after a nested object has been constructed and
// populated.
type Observer interface {
	MotisDidCreateObject(instance any, key string)
}

// UndefinedKeyObserver is notified of payload keys rejected by the
// undefined-key policy.
type UndefinedKeyObserver interface {
	MotisUndefinedKey(key string)
}

// InvalidValueObserver is notified when validation or coercion rejects a
// property value.
type InvalidValueObserver interface {
	MotisInvalidValue(key string, value *ir.Node, err error)
}

// InvalidElementObserver is notified for each sequence element removed
// by validation or element coercion.
type InvalidElementObserver interface {
	MotisInvalidArrayElement(key string, index int, element *ir.Node, err error)
}

func (d *Decoder) restricts(target any) bool {
	if d.restrict != nil {
		return *d.restrict
	}
	return schema.RestrictsKeys(target)
}

func (d *Decoder) layoutFor(owner any) string {
	if d.dateLayout != "" {
		return d.dateLayout
	}
	return schema.DateLayout(owner)
}

func (d *Decoder) willCreate(owner any, t reflect.Type, src *ir.Node, key string) (any, bool) {
	if d.onWillCreate != nil {
		return d.onWillCreate(t, src, key)
	}
	if f, ok := owner.(Factory); ok {
		return f.MotisWillCreateObject(t, src, key)
	}
	return nil, false
}

func (d *Decoder) didCreate(owner any, instance any, key string) {
	if d.onDidCreate != nil {
		d.onDidCreate(instance, key)
		return
	}
	if o, ok := owner.(Observer); ok {
		o.MotisDidCreateObject(instance, key)
	}
}

func (d *Decoder) undefinedKey(target any, key string) {
	if d.onUndefinedKey != nil {
		d.onUndefinedKey(key)
		return
	}
	if o, ok := target.(UndefinedKeyObserver); ok {
		o.MotisUndefinedKey(key)
	}
}

func (d *Decoder) invalidValue(target any, key string, value *ir.Node, err error) {
	if d.onInvalidValue != nil {
		d.onInvalidValue(key, value, err)
		return
	}
	if o, ok := target.(InvalidValueObserver); ok {
		o.MotisInvalidValue(key, value, err)
	}
}

func (d *Decoder) invalidElement(target any, key string, index int, element *ir.Node, err error) {
	if d.onInvalidElement != nil {
		d.onInvalidElement(key, index, element, err)
		return
	}
	if o, ok := target.(InvalidElementObserver); ok {
		o.MotisInvalidArrayElement(key, index, element, err)
	}
}
