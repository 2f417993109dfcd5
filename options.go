package motis

import (
	"reflect"

	"github.com/ronanociosoig/Motis/ir"
)

// Decoder drives the decode of payloads into target objects. The zero
// Decoder (and the package-level functions, which share one) uses the
// target types' own declared mappings, policies and hooks; options
// override them decoder-wide.
//
// A Decoder is stateless apart from its configuration and is safe for
// concurrent use on distinct target instances.
type Decoder struct {
	dateLayout string
	restrict   *bool

	onWillCreate     func(t reflect.Type, src *ir.Node, key string) (any, bool)
	onDidCreate      func(instance any, key string)
	onUndefinedKey   func(key string)
	onInvalidValue   func(key string, value *ir.Node, err error)
	onInvalidElement func(key string, index int, element *ir.Node, err error)
}

// Option configures a Decoder.
type Option func(*Decoder)

// NewDecoder builds a Decoder with the given options applied.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// defaultDecoder backs the package-level entry points.
var defaultDecoder = NewDecoder()

// WithDateLayout overrides the date parse layout for every target type,
// taking precedence over per-type DateLayouter declarations.
func WithDateLayout(layout string) Option {
	return func(d *Decoder) {
		d.dateLayout = layout
	}
}

// WithRestrictKeys overrides the undefined-key policy for every target
// type. true rejects unmapped payload keys; false accepts them, using
// the payload key itself as the property name.
func WithRestrictKeys(restrict bool) Option {
	return func(d *Decoder) {
		d.restrict = &restrict
	}
}

// WithWillCreateObject installs a decoder-wide object factory hook,
// shadowing any Factory implementation on target types.
func WithWillCreateObject(fn func(t reflect.Type, src *ir.Node, key string) (any, bool)) Option {
	return func(d *Decoder) {
		d.onWillCreate = fn
	}
}

// WithDidCreateObject installs a decoder-wide post-construction hook.
func WithDidCreateObject(fn func(instance any, key string)) Option {
	return func(d *Decoder) {
		d.onDidCreate = fn
	}
}

// WithUndefinedKeyHook installs a decoder-wide undefined-key observer.
func WithUndefinedKeyHook(fn func(key string)) Option {
	return func(d *Decoder) {
		d.onUndefinedKey = fn
	}
}

// WithInvalidValueHook installs a decoder-wide invalid-value observer.
func WithInvalidValueHook(fn func(key string, value *ir.Node, err error)) Option {
	return func(d *Decoder) {
		d.onInvalidValue = fn
	}
}

// WithInvalidArrayElementHook installs a decoder-wide observer for
// removed sequence elements.
func WithInvalidArrayElementHook(fn func(key string, index int, element *ir.Node, err error)) Option {
	return func(d *Decoder) {
		d.onInvalidElement = fn
	}
}
