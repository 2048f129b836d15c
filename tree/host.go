package tree

import (
	"sort"
	"sync"

	"github.com/wippyai/nichefmt"
)

// Host owns the type table and named variables for one inspected address
// space. It implements nichefmt.Target.
type Host struct {
	mem   nichefmt.Memory
	types map[string]*Type
	vars  map[string]*Value
	order []string
	mu    sync.RWMutex
}

// NewHost creates a host over mem with the builtin types defined.
func NewHost(mem nichefmt.Memory) *Host {
	return &Host{
		mem:   mem,
		types: Builtins(),
		vars:  make(map[string]*Value),
	}
}

// Memory returns the backing memory.
func (h *Host) Memory() nichefmt.Memory { return h.mem }

// SetMemory swaps the backing memory. Existing values see the new memory.
func (h *Host) SetMemory(mem nichefmt.Memory) { h.mem = mem }

// Define adds t to the type table, replacing any type with the same name.
func (h *Host) Define(t *Type) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.types[t.name] = t
}

// LookupType finds a defined type by name.
func (h *Host) LookupType(name string) (*Type, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	t, ok := h.types[name]
	return t, ok
}

// TypeNames lists defined type names in sorted order.
func (h *Host) TypeNames() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := make([]string, 0, len(h.types))
	for n := range h.types {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Bind declares a named variable of type t at addr.
func (h *Host) Bind(name string, addr uint64, t *Type) *Value {
	v := h.at(name, addr, t)
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.vars[name]; !exists {
		h.order = append(h.order, name)
	}
	h.vars[name] = v
	return v
}

// Variable returns a bound variable.
func (h *Host) Variable(name string) (*Value, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	v, ok := h.vars[name]
	return v, ok
}

// Variables returns bound variables in bind order.
func (h *Host) Variables() []*Value {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Value, 0, len(h.order))
	for _, n := range h.order {
		out = append(out, h.vars[n])
	}
	return out
}

func (h *Host) at(name string, addr uint64, t *Type) *Value {
	return &Value{host: h, typ: t, name: name, addr: addr}
}

// BasicType implements nichefmt.Target.
func (h *Host) BasicType(kind nichefmt.BasicKind) nichefmt.Type {
	switch kind {
	case nichefmt.BasicChar:
		return Char
	case nichefmt.BasicU8:
		return U8
	case nichefmt.BasicU16:
		return U16
	case nichefmt.BasicU32:
		return U32
	case nichefmt.BasicU64:
		return U64
	case nichefmt.BasicUsize:
		return Usize
	case nichefmt.BasicPointer:
		return BytePtr
	default:
		return nil
	}
}

// ArrayOf implements nichefmt.Target.
func (h *Host) ArrayOf(elem nichefmt.Type, count uint64) nichefmt.Type {
	return Array(h.declared(elem), count)
}

// ValueAt implements nichefmt.Target.
func (h *Host) ValueAt(name string, addr uint64, t nichefmt.Type) nichefmt.Value {
	return h.at(name, addr, h.declared(t))
}

// Scalar implements nichefmt.Target.
func (h *Host) Scalar(name string, v uint64, t nichefmt.Type) nichefmt.Value {
	return &Value{host: h, typ: h.declared(t), name: name, constant: v, isConst: true}
}

// declared converts a foreign type into a scalar of the same name and size.
func (h *Host) declared(t nichefmt.Type) *Type {
	switch tt := t.(type) {
	case *Type:
		if tt != nil {
			return tt
		}
	case nil:
	default:
		if known, ok := h.LookupType(tt.Name()); ok {
			return known
		}
		return Scalar(tt.Name(), tt.ByteSize())
	}
	return Scalar("void", 0)
}
