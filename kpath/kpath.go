package kpath

import (
	"strings"

	"github.com/ronanociosoig/Motis/ir"
)

// Separator splits a raw key into path segments.
const Separator = "."

// KPath is a dotted key decomposed into ordered traversal segments over
// nested payload mappings. Values are immutable once created; identity
// is the raw string.
type KPath struct {
	raw      string
	segments []string
}

// Parse splits raw on the separator. A plain (non-dotted) key produces a
// one-segment path whose single segment equals the key itself.
func Parse(raw string) *KPath {
	return &KPath{
		raw:      raw,
		segments: strings.Split(raw, Separator),
	}
}

// Raw returns the original dotted key.
func (p *KPath) Raw() string {
	return p.raw
}

// First returns the first segment.
func (p *KPath) First() string {
	return p.segments[0]
}

// Len returns the number of segments.
func (p *KPath) Len() int {
	return len(p.segments)
}

// Segments returns a copy of the path segments.
func (p *KPath) Segments() []string {
	res := make([]string, len(p.segments))
	copy(res, p.segments)
	return res
}

// Equal reports whether two paths address the same raw key.
func (p *KPath) Equal(o *KPath) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.raw == o.raw
}

func (p *KPath) String() string {
	return p.raw
}

// Resolve walks the path through payload. At each non-final segment the
// current value must itself be an object; otherwise the walk is
// abandoned and ok is false. There is deliberately no error: a path that
// dead-ends on a non-mapping intermediate is silently skipped, another
// path or key may still apply.
func (p *KPath) Resolve(payload *ir.Node) (leaf *ir.Node, ok bool) {
	cur := payload
	for i, seg := range p.segments {
		if cur == nil || cur.Type != ir.ObjectType {
			return nil, false
		}
		next := ir.Get(cur, seg)
		if next == nil {
			return nil, false
		}
		if i == len(p.segments)-1 {
			return next, true
		}
		cur = next
	}
	return nil, false
}
