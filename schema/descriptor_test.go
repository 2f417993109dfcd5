package schema

import (
	"net/url"
	"reflect"
	"testing"
	"time"
)

func TestDescriptorOf(t *testing.T) {
	cases := []struct {
		name string
		typ  reflect.Type
		kind Kind
	}{
		{"bool", reflect.TypeOf(false), Bool},
		{"int", reflect.TypeOf(0), Int},
		{"int8", reflect.TypeOf(int8(0)), Int},
		{"uint32", reflect.TypeOf(uint32(0)), Uint},
		{"float64", reflect.TypeOf(0.0), Float},
		{"string", reflect.TypeOf(""), String},
		{"bytes", reflect.TypeOf([]byte(nil)), Bytes},
		{"time", reflect.TypeOf(time.Time{}), Time},
		{"url", reflect.TypeOf(url.URL{}), URL},
		{"slice", reflect.TypeOf([]string(nil)), Slice},
		{"array", reflect.TypeOf([3]int{}), Array},
		{"set", reflect.TypeOf(map[string]struct{}{}), Set},
		{"map", reflect.TypeOf(map[string]int{}), Map},
		{"struct", reflect.TypeOf(struct{ X int }{}), Struct},
		{"pointer", reflect.TypeOf((*int)(nil)), Pointer},
		{"any", reflect.TypeOf((*any)(nil)).Elem(), Dynamic},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d := DescriptorOf(c.typ)
			if d.Kind != c.kind {
				t.Errorf("DescriptorOf(%s).Kind = %s, want %s", c.typ, d.Kind, c.kind)
			}
		})
	}
}

func TestDescriptorElem(t *testing.T) {
	d := DescriptorOf(reflect.TypeOf([]int(nil)))
	if d.Elem == nil || d.Elem.Kind != Int {
		t.Fatalf("slice elem = %+v", d.Elem)
	}
	d = DescriptorOf(reflect.TypeOf(map[string]struct{}{}))
	if d.Elem == nil || d.Elem.Kind != String {
		t.Fatalf("set elem = %+v", d.Elem)
	}
	d = DescriptorOf(reflect.TypeOf((*time.Time)(nil)))
	if d.Kind != Pointer || d.Elem == nil || d.Elem.Kind != Time {
		t.Fatalf("pointer-to-time = %+v", d)
	}
}

type stringish interface {
	String() string
}

func TestSatisfies(t *testing.T) {
	cap := reflect.TypeOf((*stringish)(nil)).Elem()
	if !DescriptorOf(reflect.TypeOf(time.Time{})).Satisfies(cap) {
		t.Errorf("time.Time should satisfy String()")
	}
	// url.URL's String method has a pointer receiver.
	if !DescriptorOf(reflect.TypeOf(url.URL{})).Satisfies(cap) {
		t.Errorf("url.URL should satisfy String() via pointer receiver")
	}
	if DescriptorOf(reflect.TypeOf(0)).Satisfies(cap) {
		t.Errorf("int should not satisfy String()")
	}
}
