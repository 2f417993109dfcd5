package registry

import (
	"maps"
	"reflect"
	"slices"
	"sync"

	"github.com/ronanociosoig/Motis/debug"
	"github.com/ronanociosoig/Motis/kpath"
	"github.com/ronanociosoig/Motis/schema"
)

// typeMapping is the effective payload-key to property-name mapping of
// one target type: ancestor entries merged first, then the type's own
// declared entries. keys preserves merge order; a key redeclared by a
// more derived type keeps its original position but takes the derived
// value.
type typeMapping struct {
	keys  []string
	byKey map[string]string
}

func (m *typeMapping) put(key, prop string) {
	if _, ok := m.byKey[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.byKey[key] = prop
}

var (
	mu       sync.RWMutex
	mappings = make(map[reflect.Type]*typeMapping)
	elems    = make(map[reflect.Type]map[string]schema.Descriptor)
	indexes  = make(map[reflect.Type]map[string][]*kpath.KPath)
)

// Mapping returns the effective payload-key to property-name mapping for
// a target struct type. Built once per type on first use, then shared;
// callers must treat the result as read-only. An absent entry is valid
// and means "this key is not mapped".
func Mapping(t reflect.Type) map[string]string {
	return mappingOf(t).byKey
}

// MappedKeys returns every mapped payload key in merge order: ancestor
// entries first, then the type's own entries (sorted within one type, as
// Go maps carry no declaration order).
func MappedKeys(t reflect.Type) []string {
	return mappingOf(t).keys
}

func mappingOf(t reflect.Type) *typeMapping {
	mu.RLock()
	m, ok := mappings[t]
	mu.RUnlock()
	if ok {
		return m
	}
	mu.Lock()
	defer mu.Unlock()
	return mappingLocked(t)
}

func mappingLocked(t reflect.Type) *typeMapping {
	if m, ok := mappings[t]; ok {
		return m
	}
	m := &typeMapping{byKey: make(map[string]string)}
	if t.Kind() == reflect.Struct {
		for _, anc := range ancestors(t) {
			am := mappingLocked(anc)
			for _, key := range am.keys {
				m.put(key, am.byKey[key])
			}
		}
		if km, ok := schema.New(t).(schema.KeyMapper); ok {
			own := km.MotisKeyMapping()
			for _, key := range slices.Sorted(maps.Keys(own)) {
				m.put(key, own[key])
			}
		}
	}
	if debug.Keys() {
		debug.Logf("registry: mapping for %s: %s", t, debug.Dump(m.byKey))
	}
	mappings[t] = m
	return m
}

// ElementType returns the declared element descriptor for a
// sequence-valued property, if any.
func ElementType(t reflect.Type, property string) (schema.Descriptor, bool) {
	mu.RLock()
	em, ok := elems[t]
	mu.RUnlock()
	if !ok {
		mu.Lock()
		em = elemsLocked(t)
		mu.Unlock()
	}
	desc, ok := em[property]
	return desc, ok
}

func elemsLocked(t reflect.Type) map[string]schema.Descriptor {
	if em, ok := elems[t]; ok {
		return em
	}
	em := make(map[string]schema.Descriptor)
	if t.Kind() == reflect.Struct {
		for _, anc := range ancestors(t) {
			maps.Copy(em, elemsLocked(anc))
		}
		if emap, ok := schema.New(t).(schema.ElementMapper); ok {
			for prop, et := range emap.MotisElementTypes() {
				em[prop] = schema.DescriptorOf(et)
			}
		}
	}
	elems[t] = em
	return em
}

// PathsRootedAt returns the key paths of t's mapping whose first segment
// is first, in merge order. A payload key with no mapped paths rooted at
// it yields nil.
func PathsRootedAt(t reflect.Type, first string) []*kpath.KPath {
	mu.RLock()
	idx, ok := indexes[t]
	mu.RUnlock()
	if !ok {
		mu.Lock()
		idx = indexLocked(t)
		mu.Unlock()
	}
	return idx[first]
}

func indexLocked(t reflect.Type) map[string][]*kpath.KPath {
	if idx, ok := indexes[t]; ok {
		return idx
	}
	idx := make(map[string][]*kpath.KPath)
	for _, key := range mappingLocked(t).keys {
		kp := kpath.Parse(key)
		idx[kp.First()] = append(idx[kp.First()], kp)
	}
	indexes[t] = idx
	return idx
}

// ancestors returns the immediate supertypes of t: the types of its
// anonymous embedded struct fields, in declaration order.
func ancestors(t reflect.Type) []reflect.Type {
	var res []reflect.Type
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.Anonymous {
			continue
		}
		ft := field.Type
		if ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if ft.Kind() == reflect.Struct {
			res = append(res, ft)
		}
	}
	return res
}
