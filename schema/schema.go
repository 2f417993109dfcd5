package schema

import "reflect"

// DefaultDateLayout is the layout used to parse date-typed properties
// from text when the target type declares none.
const DefaultDateLayout = "2006-01-02 15:04:05"

// KeyMapper is implemented by target types that declare a mapping from
// payload keys (possibly dotted key paths) to property names. Types that
// do not implement it have an empty declared mapping.
type KeyMapper interface {
	MotisKeyMapping() map[string]string
}

// ElementMapper is implemented by target types whose sequence-valued
// properties declare a concrete element type. Elements of such
// properties are coerced to the declared type; sequence properties not
// listed here keep their elements dynamic.
type ElementMapper interface {
	MotisElementTypes() map[string]reflect.Type
}

// KeyPolicy is implemented by target types that reject payload keys with
// no mapping entry. The default policy accepts unmapped keys, treating
// the payload key itself as the property name.
type KeyPolicy interface {
	MotisRestrictsKeys() bool
}

// DateLayouter overrides the layout used when coercing text into this
// type's date properties.
type DateLayouter interface {
	MotisDateLayout() string
}

// New returns a probe instance (*T as any) of a struct type, used to
// query the declared-mapping collaborator methods above when only the
// reflect.Type is at hand.
func New(t reflect.Type) any {
	return reflect.New(t).Interface()
}

// RestrictsKeys reports the effective undefined-key policy for v.
func RestrictsKeys(v any) bool {
	if kp, ok := v.(KeyPolicy); ok {
		return kp.MotisRestrictsKeys()
	}
	return false
}

// DateLayout reports the effective date layout for v.
func DateLayout(v any) string {
	if dl, ok := v.(DateLayouter); ok {
		if layout := dl.MotisDateLayout(); layout != "" {
			return layout
		}
	}
	return DefaultDateLayout
}
