package schema

import (
	"net/url"
	"reflect"
	"time"
)

// Kind classifies what a property expects, collapsing reflect.Kind and a
// few well-known classes into the cases the coercion table handles.
type Kind int

const (
	// Dynamic is an untyped target: any payload value satisfies it
	// unchanged.
	Dynamic Kind = iota
	Bool
	Int
	Uint
	Float
	String
	// Bytes is a binary blob ([]byte), filled from base64 text.
	Bytes
	// Time is a date/time target (time.Time), filled from formatted
	// text or epoch seconds.
	Time
	// URL is a url.URL target, filled from URI text.
	URL
	// Slice is an ordered, growable sequence target.
	Slice
	// Array is an ordered, fixed-length sequence target.
	Array
	// Set is a de-ordered sequence target, modeled as map[T]struct{}.
	Set
	Map
	Struct
	Pointer
)

func (k Kind) String() string {
	s, ok := map[Kind]string{
		Dynamic: "Dynamic",
		Bool:    "Bool",
		Int:     "Int",
		Uint:    "Uint",
		Float:   "Float",
		String:  "String",
		Bytes:   "Bytes",
		Time:    "Time",
		URL:     "URL",
		Slice:   "Slice",
		Array:   "Array",
		Set:     "Set",
		Map:     "Map",
		Struct:  "Struct",
		Pointer: "Pointer",
	}[k]
	if ok {
		return s
	}
	return "<unknown kind>"
}

// Descriptor describes the type a property expects: the concrete Go type
// plus its coercion kind and, for containers and pointers, the element
// descriptor. Descriptors are immutable once computed.
type Descriptor struct {
	Type reflect.Type
	Kind Kind
	Elem *Descriptor
}

var (
	timeType     = reflect.TypeOf(time.Time{})
	urlType      = reflect.TypeOf(url.URL{})
	byteSlice    = reflect.TypeOf([]byte(nil))
	emptyStruct  = reflect.TypeOf(struct{}{})
	anyInterface = reflect.TypeOf((*any)(nil)).Elem()
)

// DescriptorOf computes the descriptor for a Go type. A nil type is the
// Dynamic descriptor.
func DescriptorOf(t reflect.Type) Descriptor {
	if t == nil || t == anyInterface {
		return Descriptor{Type: t, Kind: Dynamic}
	}
	switch t {
	case timeType:
		return Descriptor{Type: t, Kind: Time}
	case urlType:
		return Descriptor{Type: t, Kind: URL}
	case byteSlice:
		return Descriptor{Type: t, Kind: Bytes}
	}
	switch t.Kind() {
	case reflect.Bool:
		return Descriptor{Type: t, Kind: Bool}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Descriptor{Type: t, Kind: Int}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Descriptor{Type: t, Kind: Uint}
	case reflect.Float32, reflect.Float64:
		return Descriptor{Type: t, Kind: Float}
	case reflect.String:
		return Descriptor{Type: t, Kind: String}
	case reflect.Slice:
		elem := DescriptorOf(t.Elem())
		return Descriptor{Type: t, Kind: Slice, Elem: &elem}
	case reflect.Array:
		elem := DescriptorOf(t.Elem())
		return Descriptor{Type: t, Kind: Array, Elem: &elem}
	case reflect.Map:
		if t.Elem() == emptyStruct {
			elem := DescriptorOf(t.Key())
			return Descriptor{Type: t, Kind: Set, Elem: &elem}
		}
		elem := DescriptorOf(t.Elem())
		return Descriptor{Type: t, Kind: Map, Elem: &elem}
	case reflect.Struct:
		return Descriptor{Type: t, Kind: Struct}
	case reflect.Pointer:
		elem := DescriptorOf(t.Elem())
		return Descriptor{Type: t, Kind: Pointer, Elem: &elem}
	case reflect.Interface:
		return Descriptor{Type: t, Kind: Dynamic}
	}
	return Descriptor{Type: t, Kind: Dynamic}
}

// Satisfies reports whether the described type (or a pointer to it)
// implements the capability interface.
func (d Descriptor) Satisfies(capability reflect.Type) bool {
	if d.Type == nil || capability == nil || capability.Kind() != reflect.Interface {
		return false
	}
	if d.Type.Implements(capability) {
		return true
	}
	return reflect.PointerTo(d.Type).Implements(capability)
}
