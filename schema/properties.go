package schema

import (
	"reflect"
	"sync"
)

// Property is one settable field of a target struct type: its name, the
// index path used for reflective access (embedded fields have multi-step
// paths), and its type descriptor.
type Property struct {
	Name  string
	Index []int
	Desc  Descriptor
}

var (
	propMu    sync.RWMutex
	propCache = make(map[reflect.Type]map[string]Property)
)

// Properties returns the exported properties of a struct type, keyed by
// field name. Fields of anonymous embedded structs are promoted unless
// shadowed by an outer field. The result is computed once per type,
// cached for the process lifetime, and must be treated as read-only.
func Properties(t reflect.Type) map[string]Property {
	propMu.RLock()
	props, ok := propCache[t]
	propMu.RUnlock()
	if ok {
		return props
	}

	propMu.Lock()
	defer propMu.Unlock()
	// Re-check under lock: a concurrent first build must resolve to a
	// single canonical cached value.
	if props, ok := propCache[t]; ok {
		return props
	}
	props = make(map[string]Property)
	collectProperties(t, nil, props)
	propCache[t] = props
	return props
}

// PropertyNamed looks up a single property by name.
func PropertyNamed(t reflect.Type, name string) (Property, bool) {
	p, ok := Properties(t)[name]
	return p, ok
}

func collectProperties(t reflect.Type, prefix []int, props map[string]Property) {
	if t.Kind() != reflect.Struct {
		return
	}
	// Own fields first so they shadow promoted embedded fields of the
	// same name.
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() || field.Anonymous {
			continue
		}
		if _, exists := props[field.Name]; exists {
			continue
		}
		props[field.Name] = Property{
			Name:  field.Name,
			Index: append(append([]int(nil), prefix...), i),
			Desc:  DescriptorOf(field.Type),
		}
	}
	// Value-embedded structs are flattened recursively. Pointer-embedded
	// structs are not promoted: their index paths would traverse
	// possibly-nil pointers.
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.Anonymous || field.Type.Kind() != reflect.Struct {
			continue
		}
		collectProperties(field.Type, append(append([]int(nil), prefix...), i), props)
	}
}
