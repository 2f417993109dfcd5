package motis

import (
	"errors"
	"net/url"
	"reflect"
	"testing"
	"time"

	"github.com/ronanociosoig/Motis/ir"
)

type person struct {
	Name   string
	Age    int
	Height float64
	Adult  bool
	Born   time.Time
	Site   url.URL
	Blob   []byte
	Tags   []string
	Extra  any
}

func (person) MotisKeyMapping() map[string]string {
	return map[string]string{
		"name":   "Name",
		"age":    "Age",
		"height": "Height",
		"adult":  "Adult",
		"born":   "Born",
		"site":   "Site",
		"blob":   "Blob",
		"tags":   "Tags",
		"extra":  "Extra",
	}
}

type strictPerson struct {
	Name string
}

func (strictPerson) MotisKeyMapping() map[string]string {
	return map[string]string{"name": "Name"}
}

func (strictPerson) MotisRestrictsKeys() bool { return true }

type flatUser struct {
	City string
	Zip  string
}

func (flatUser) MotisKeyMapping() map[string]string {
	return map[string]string{
		"address.city": "City",
		"address.zip":  "Zip",
	}
}

type address struct {
	City string
}

func (address) MotisKeyMapping() map[string]string {
	return map[string]string{"city": "City"}
}

type resident struct {
	Name    string
	Home    address
	HomePtr *address
}

func (resident) MotisKeyMapping() map[string]string {
	return map[string]string{
		"name":     "Name",
		"home":     "Home",
		"home_ptr": "HomePtr",
	}
}

type numbered struct {
	Values []int
}

func (numbered) MotisKeyMapping() map[string]string {
	return map[string]string{"values": "Values"}
}

func (numbered) MotisElementTypes() map[string]reflect.Type {
	return map[string]reflect.Type{"Values": reflect.TypeOf(0)}
}

type vetted struct {
	Age int
}

func (vetted) MotisKeyMapping() map[string]string {
	return map[string]string{"age": "Age"}
}

func (*vetted) MotisValidateValue(key string, value any) (any, error) {
	if key != "age" {
		return nil, nil
	}
	node := value.(*ir.Node)
	if node.Int64 != nil && *node.Int64 < 0 {
		return nil, errors.New("age cannot be negative")
	}
	if node.Int64 != nil && *node.Int64 > 150 {
		return 150, nil
	}
	return nil, nil
}

type baseEntity struct {
	ID int64
}

func (baseEntity) MotisKeyMapping() map[string]string {
	return map[string]string{"id": "ID"}
}

type subUser struct {
	baseEntity
	Name string
}

func (subUser) MotisKeyMapping() map[string]string {
	return map[string]string{"name": "Name"}
}

func mustJSON(t *testing.T, s string) *ir.Node {
	t.Helper()
	node, err := ir.FromJSON([]byte(s))
	if err != nil {
		t.Fatal(err)
	}
	return node
}

func TestDecodeKeyedValues(t *testing.T) {
	payload := mustJSON(t, `{
		"name": "gopher",
		"age": "7",
		"height": 0.3,
		"adult": 1,
		"blob": "aGVsbG8=",
		"site": "https://example.com/x",
		"tags": ["a", "b"],
		"extra": {"free": true}
	}`)

	var p person
	res, err := DecodeKeyedValues(&p, payload)
	if err != nil {
		t.Fatal(err)
	}
	if err := res.Err(); err != nil {
		t.Fatalf("rejected keys: %v", err)
	}
	if p.Name != "gopher" || p.Age != 7 || p.Height != 0.3 || !p.Adult {
		t.Errorf("scalars: %+v", p)
	}
	if string(p.Blob) != "hello" {
		t.Errorf("Blob = %q", p.Blob)
	}
	if p.Site.Host != "example.com" || p.Site.Path != "/x" {
		t.Errorf("Site = %v", p.Site)
	}
	if !reflect.DeepEqual(p.Tags, []string{"a", "b"}) {
		t.Errorf("Tags = %v", p.Tags)
	}
	want := map[string]any{"free": true}
	if !reflect.DeepEqual(p.Extra, want) {
		t.Errorf("Extra = %v", p.Extra)
	}
	if len(res.Applied()) != 8 {
		t.Errorf("applied %d keys, want 8", len(res.Applied()))
	}
}

func TestDecodeIsIdempotent(t *testing.T) {
	payload := mustJSON(t, `{"name":"gopher","age":7,"tags":["a"]}`)
	var a, b person
	if _, err := DecodeKeyedValues(&a, payload); err != nil {
		t.Fatal(err)
	}
	if _, err := DecodeKeyedValues(&b, payload); err != nil {
		t.Fatal(err)
	}
	if _, err := DecodeKeyedValues(&b, payload); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("repeated decode diverged:\n%+v\n%+v", a, b)
	}
}

func TestDecodeRejectsBadTarget(t *testing.T) {
	payload := mustJSON(t, `{"name":"x"}`)
	if _, err := DecodeKeyedValues(nil, payload); err == nil {
		t.Errorf("nil target must fail")
	}
	var p person
	if _, err := DecodeKeyedValues(p, payload); err == nil {
		t.Errorf("non-pointer target must fail")
	}
	var np *person
	if _, err := DecodeKeyedValues(np, payload); err == nil {
		t.Errorf("nil pointer target must fail")
	}
	if _, err := DecodeKeyedValues(&p, ir.FromString("scalar")); err == nil {
		t.Errorf("non-object payload must fail")
	}
}

func TestDecodeNilPayload(t *testing.T) {
	var p person
	res, err := DecodeKeyedValues(&p, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Outcomes) != 0 {
		t.Errorf("expected empty result, got %d outcomes", len(res.Outcomes))
	}
}

func TestDecodeBadValueDoesNotAbort(t *testing.T) {
	payload := mustJSON(t, `{"age":"not a number","name":"still here"}`)
	var p person
	res, err := DecodeKeyedValues(&p, payload)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "still here" {
		t.Errorf("later key was not decoded: %+v", p)
	}
	if p.Age != 0 {
		t.Errorf("rejected value must leave the property unmodified, got %d", p.Age)
	}
	rej := res.Rejected()
	if len(rej) != 1 || rej[0].Key != "age" {
		t.Fatalf("rejected = %+v", rej)
	}
	var cerr *CoercionError
	if !errors.As(rej[0].Err, &cerr) {
		t.Errorf("expected CoercionError, got %T", rej[0].Err)
	}
}

func TestUndefinedKeyPolicy(t *testing.T) {
	payload := mustJSON(t, `{"name":"a","mystery":1}`)

	// The default policy accepts unmapped keys as property names.
	var open struct {
		Name    string
		Mystery int
	}
	openPayload := mustJSON(t, `{"Name":"a","Mystery":1}`)
	res, err := DecodeKeyedValues(&open, openPayload)
	if err != nil {
		t.Fatal(err)
	}
	if open.Name != "a" || open.Mystery != 1 {
		t.Errorf("open decode: %+v, outcomes %+v", open, res.Outcomes)
	}

	// A restricting type skips unmapped keys.
	var strict strictPerson
	res, err = DecodeKeyedValues(&strict, payload)
	if err != nil {
		t.Fatal(err)
	}
	if strict.Name != "a" {
		t.Errorf("mapped key must still decode: %+v", strict)
	}
	var skipped []Outcome
	for _, o := range res.Outcomes {
		if o.Status == Skipped {
			skipped = append(skipped, o)
		}
	}
	if len(skipped) != 1 || skipped[0].Key != "mystery" {
		t.Fatalf("skipped = %+v", skipped)
	}
	var uerr *UndefinedKeyError
	if !errors.As(skipped[0].Err, &uerr) || uerr.Key != "mystery" {
		t.Errorf("expected UndefinedKeyError for mystery, got %v", skipped[0].Err)
	}

	// The decoder-wide option overrides the type's policy.
	relaxed := NewDecoder(WithRestrictKeys(false))
	var s2 strictPerson
	res, err = relaxed.DecodeKeyedValues(&s2, mustJSON(t, `{"Name":"b"}`))
	if err != nil {
		t.Fatal(err)
	}
	if s2.Name != "b" {
		t.Errorf("relaxed decode: %+v, outcomes %+v", s2, res.Outcomes)
	}
}

func TestDottedKeyPaths(t *testing.T) {
	var u flatUser
	res, err := DecodeKeyedValues(&u, mustJSON(t, `{"address":{"city":"Dublin","zip":"D02"}}`))
	if err != nil {
		t.Fatal(err)
	}
	if u.City != "Dublin" || u.Zip != "D02" {
		t.Errorf("decoded %+v, outcomes %+v", u, res.Outcomes)
	}

	// A path through a non-object intermediate is silently abandoned.
	var u2 flatUser
	res, err = DecodeKeyedValues(&u2, mustJSON(t, `{"address":"just text"}`))
	if err != nil {
		t.Fatal(err)
	}
	if u2.City != "" || len(res.Outcomes) != 0 {
		t.Errorf("dead-end path must contribute nothing: %+v, %+v", u2, res.Outcomes)
	}
}

func TestNestedObjects(t *testing.T) {
	var r resident
	_, err := DecodeKeyedValues(&r, mustJSON(t,
		`{"name":"x","home":{"city":"Cork"},"home_ptr":{"city":"Galway"}}`))
	if err != nil {
		t.Fatal(err)
	}
	if r.Home.City != "Cork" {
		t.Errorf("Home = %+v", r.Home)
	}
	if r.HomePtr == nil || r.HomePtr.City != "Galway" {
		t.Errorf("HomePtr = %+v", r.HomePtr)
	}
}

func TestElementCoercionDropsBadElements(t *testing.T) {
	var dropped []int
	d := NewDecoder(WithInvalidArrayElementHook(func(key string, index int, element *ir.Node, err error) {
		dropped = append(dropped, index)
	}))

	var n numbered
	res, err := d.DecodeKeyedValues(&n, mustJSON(t, `{"values":[1,"bad",3]}`))
	if err != nil {
		t.Fatal(err)
	}
	if err := res.Err(); err != nil {
		t.Fatalf("property must still apply: %v", err)
	}
	if !reflect.DeepEqual(n.Values, []int{1, 3}) {
		t.Errorf("Values = %v", n.Values)
	}
	if !reflect.DeepEqual(dropped, []int{1}) {
		t.Errorf("dropped indices = %v", dropped)
	}
}

func TestElementCoercionConvertsStrings(t *testing.T) {
	var n numbered
	_, err := DecodeKeyedValues(&n, mustJSON(t, `{"values":["1","2"]}`))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(n.Values, []int{1, 2}) {
		t.Errorf("Values = %v", n.Values)
	}
}

func TestValidationHook(t *testing.T) {
	var v vetted
	res, err := DecodeKeyedValues(&v, mustJSON(t, `{"age":-4}`))
	if err != nil {
		t.Fatal(err)
	}
	rej := res.Rejected()
	if len(rej) != 1 {
		t.Fatalf("rejected = %+v", res.Outcomes)
	}
	var verr *ValidationError
	if !errors.As(rej[0].Err, &verr) {
		t.Errorf("expected ValidationError, got %T", rej[0].Err)
	}
	if v.Age != 0 {
		t.Errorf("rejected value assigned: %d", v.Age)
	}

	// Hook override replaces the value and skips coercion.
	if _, err := DecodeKeyedValues(&v, mustJSON(t, `{"age":1000}`)); err != nil {
		t.Fatal(err)
	}
	if v.Age != 150 {
		t.Errorf("override not applied: %d", v.Age)
	}

	// In-range values pass through untouched.
	if _, err := DecodeKeyedValues(&v, mustJSON(t, `{"age":30}`)); err != nil {
		t.Fatal(err)
	}
	if v.Age != 30 {
		t.Errorf("Age = %d", v.Age)
	}
}

func TestInheritedMappings(t *testing.T) {
	var u subUser
	_, err := DecodeKeyedValues(&u, mustJSON(t, `{"id":7,"name":"gopher"}`))
	if err != nil {
		t.Fatal(err)
	}
	if u.ID != 7 || u.Name != "gopher" {
		t.Errorf("decoded %+v", u)
	}
}

func TestSetValue(t *testing.T) {
	p := person{Name: "before"}
	if err := SetValue(&p, "name", ir.FromString("after")); err != nil {
		t.Fatal(err)
	}
	if p.Name != "after" {
		t.Errorf("Name = %q", p.Name)
	}

	// Null clears the property.
	if err := SetValue(&p, "name", ir.Null()); err != nil {
		t.Fatal(err)
	}
	if p.Name != "" {
		t.Errorf("null must clear the property, got %q", p.Name)
	}

	// Unlike the bulk decode, a bad value is reported.
	if err := SetValue(&p, "age", ir.FromString("nope")); err == nil {
		t.Errorf("expected error for uncoercible value")
	}
}

func TestGetValue(t *testing.T) {
	p := person{Name: "gopher", Age: 7}
	if v, ok := GetValue(&p, "name"); !ok || v != "gopher" {
		t.Errorf("GetValue(name) = %v, %v", v, ok)
	}
	// Unmapped keys read the property of the same name.
	if v, ok := GetValue(&p, "Age"); !ok || v != 7 {
		t.Errorf("GetValue(Age) = %v, %v", v, ok)
	}
	if _, ok := GetValue(&p, "nothing"); ok {
		t.Errorf("expected miss for unknown key")
	}
}

func TestDecodeJSON(t *testing.T) {
	var p person
	res, err := DecodeJSON(&p, []byte(`{"name":"gopher"}`))
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "gopher" || len(res.Applied()) != 1 {
		t.Errorf("decoded %+v", p)
	}
	if _, err := DecodeJSON(&p, []byte(`{broken`)); err == nil {
		t.Errorf("expected parse error")
	}
}

func TestFactoryHooks(t *testing.T) {
	premade := &address{City: "Prebuilt"}
	var created []any
	d := NewDecoder(
		WithWillCreateObject(func(typ reflect.Type, src *ir.Node, key string) (any, bool) {
			if key == "home_ptr" {
				return premade, false
			}
			return nil, false
		}),
		WithDidCreateObject(func(instance any, key string) {
			created = append(created, instance)
		}),
	)

	var r resident
	_, err := d.DecodeKeyedValues(&r, mustJSON(t,
		`{"home":{"city":"Cork"},"home_ptr":{"city":"ignored"}}`))
	if err != nil {
		t.Fatal(err)
	}
	// The factory's instance is used as-is, not populated from the
	// payload.
	if r.HomePtr == nil || r.HomePtr.City != "Prebuilt" {
		t.Errorf("HomePtr = %+v", r.HomePtr)
	}
	if r.Home.City != "Cork" {
		t.Errorf("Home = %+v", r.Home)
	}
	if len(created) != 2 {
		t.Errorf("didCreate fired %d times, want 2", len(created))
	}
}

func TestFactoryAbort(t *testing.T) {
	d := NewDecoder(WithWillCreateObject(func(typ reflect.Type, src *ir.Node, key string) (any, bool) {
		return nil, true
	}))
	var r resident
	res, err := d.DecodeKeyedValues(&r, mustJSON(t, `{"home":{"city":"Cork"}}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Rejected()) != 1 {
		t.Errorf("aborted construction must reject the key: %+v", res.Outcomes)
	}
	if r.Home.City != "" {
		t.Errorf("Home = %+v", r.Home)
	}
}

func TestUndefinedKeyObserver(t *testing.T) {
	var seen []string
	d := NewDecoder(WithUndefinedKeyHook(func(key string) {
		seen = append(seen, key)
	}))
	var s strictPerson
	if _, err := d.DecodeKeyedValues(&s, mustJSON(t, `{"name":"a","x":1,"y":2}`)); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(seen, []string{"x", "y"}) {
		t.Errorf("seen = %v", seen)
	}
}
