package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/nichefmt"
	"github.com/wippyai/nichefmt/formatter"
	"github.com/wippyai/nichefmt/present"
)

const unreadable = "<unreadable>"

// maxChildrenCeiling bounds the children listed per value when max_children
// is 0. Counts come from target memory and may be corrupted.
const maxChildrenCeiling = 4096

// childLimit maps the configured max_children to the limit expand uses.
func childLimit(n int) int {
	if n == 0 || n > maxChildrenCeiling {
		return maxChildrenCeiling
	}
	return n
}

// entry is one printable row: a value, a provider field, or both.
type entry struct {
	value   nichefmt.Value
	name    string
	typ     string
	summary string
}

// expandable reports whether the row can be opened.
func (e entry) expandable(in *inspector) bool {
	return e.value != nil && in.hasChildren(e.value)
}

// node is the serialized form of an inspected value.
type node struct {
	Name     string `yaml:"name" cbor:"name"`
	Type     string `yaml:"type,omitempty" cbor:"type,omitempty"`
	Summary  string `yaml:"summary" cbor:"summary"`
	Children []node `yaml:"children,omitempty" cbor:"children,omitempty"`
	Omitted  int    `yaml:"omitted,omitempty" cbor:"omitted,omitempty"`
}

// report is what --format yaml and --format cbor print.
type report struct {
	Values []node `yaml:"values" cbor:"values"`
}

// inspector renders values through the formatter registry, falling back
// to the declared structure for types nothing is registered for.
type inspector struct {
	reg         *formatter.Registry
	maxChildren int
	maxDepth    int
}

func newInspector(reg *formatter.Registry, maxChildren, maxDepth int) *inspector {
	return &inspector{reg: reg, maxChildren: maxChildren, maxDepth: maxDepth}
}

func (in *inspector) entry(v nichefmt.Value) entry {
	e := entry{value: v, name: v.Name(), summary: in.summarize(v)}
	if t := v.Type(); t != nil {
		e.typ = t.Name()
	}
	return e
}

func (in *inspector) summarize(v nichefmt.Value) string {
	if s, ok := in.reg.Summarize(v); ok {
		return s
	}
	if _, ok := v.ChildAt(0); ok {
		return "{...}"
	}
	n, err := v.Unsigned()
	if err != nil {
		return unreadable
	}
	if isPointer(v.Type()) {
		return fmt.Sprintf("0x%x", n)
	}
	return strconv.FormatUint(n, 10)
}

func (in *inspector) hasChildren(v nichefmt.Value) bool {
	if p, ok := in.reg.Provider(v); ok {
		return p.HasChildren() && p.NumChildren() > 0
	}
	_, ok := v.ChildAt(0)
	return ok
}

// expand lists up to limit children of v. omitted counts the rest; it is
// -1 when structural children were cut off without being counted.
func (in *inspector) expand(v nichefmt.Value, limit int) (rows []entry, omitted int) {
	if p, ok := in.reg.Provider(v); ok {
		n := p.NumChildren()
		for i := 0; i < n; i++ {
			if len(rows) == limit {
				return rows, n - limit
			}
			c, ok := p.ChildAt(i)
			if !ok {
				break
			}
			rows = append(rows, in.child(c))
		}
		return rows, 0
	}

	counted, isCounted := v.(interface{ NumChildren() int })
	for i := 0; ; i++ {
		if len(rows) == limit {
			if isCounted {
				return rows, max(counted.NumChildren()-limit, 0)
			}
			if _, ok := v.ChildAt(i); !ok {
				return rows, 0
			}
			return rows, -1
		}
		c, ok := v.ChildAt(i)
		if !ok {
			return rows, 0
		}
		rows = append(rows, in.entry(c))
	}
}

func (in *inspector) child(c present.Child) entry {
	switch c.Kind {
	case present.KindElement:
		e := in.entry(c.Value)
		e.name = c.Name
		return e
	case present.KindBytes:
		// the quoted text already shows every byte; keep it a leaf
		e := entry{name: c.Name, summary: quote(c.Text)}
		if c.Value != nil && c.Value.Type() != nil {
			e.typ = c.Value.Type().Name()
		}
		return e
	case present.KindUnsigned:
		return entry{name: c.Name, summary: strconv.FormatUint(c.Unsigned, 10)}
	case present.KindAddress:
		return entry{name: c.Name, summary: fmt.Sprintf("0x%x", c.Unsigned)}
	default:
		if c.Name == present.ChildContent {
			return entry{name: c.Name, summary: quote(c.Text)}
		}
		return entry{name: c.Name, summary: c.Text}
	}
}

// tree builds the full node for v down to maxDepth.
func (in *inspector) tree(v nichefmt.Value) node {
	return in.node(in.entry(v), 0)
}

func (in *inspector) node(e entry, depth int) node {
	n := node{Name: e.name, Type: e.typ, Summary: e.summary}
	if e.value == nil || depth >= in.maxDepth || !in.hasChildren(e.value) {
		return n
	}
	rows, omitted := in.expand(e.value, in.maxChildren)
	for _, r := range rows {
		n.Children = append(n.Children, in.node(r, depth+1))
	}
	n.Omitted = max(omitted, 0)
	return n
}

func quote(s string) string {
	return `"` + s + `"`
}

func isPointer(t nichefmt.Type) bool {
	if t == nil {
		return false
	}
	name := t.Canonical().Name()
	return strings.HasPrefix(name, "*") || strings.HasPrefix(name, "&")
}
