package layout

import (
	"strings"

	"github.com/wippyai/nichefmt"
	"github.com/wippyai/nichefmt/errors"
)

// Path is a sequence of child member names.
type Path []string

func (p Path) String() string {
	return strings.Join(p, ".")
}

// Join returns a new path with more appended.
func (p Path) Join(more ...string) Path {
	out := make(Path, 0, len(p)+len(more))
	out = append(out, p...)
	return append(out, more...)
}

// TryResolve walks p starting at v.
// An empty path resolves to v itself.
func TryResolve(v nichefmt.Value, p Path) (nichefmt.Value, error) {
	if v == nil {
		return nil, errors.FieldMissing(nil, "<value>")
	}
	cur := v
	for i, name := range p {
		next, ok := cur.Child(name)
		if !ok || next == nil {
			return nil, errors.FieldMissing(p[:i+1], name)
		}
		cur = next
	}
	return cur, nil
}

// Unsigned resolves p and reads the result as an unsigned integer.
func Unsigned(v nichefmt.Value, p Path) (uint64, error) {
	child, err := TryResolve(v, p)
	if err != nil {
		return 0, err
	}
	n, err := child.Unsigned()
	if err != nil {
		return 0, errors.New(errors.PhaseRead, errors.KindReadFailed).
			Path(p...).
			Detail("integer value unavailable").
			Cause(err).
			Build()
	}
	return n, nil
}

// LoadAddress resolves p and returns the address of the child itself.
// A child without an address is reported as missing.
func LoadAddress(v nichefmt.Value, p Path) (uint64, error) {
	child, err := TryResolve(v, p)
	if err != nil {
		return 0, err
	}
	addr := child.LoadAddress()
	if addr == 0 {
		return 0, errors.NullPointer(p)
	}
	return addr, nil
}

// First returns the first structural child of v's raw-layout view.
func First(v nichefmt.Value) (nichefmt.Value, error) {
	if v == nil {
		return nil, errors.FieldMissing(nil, "<value>")
	}
	raw := v.NonSynthetic()
	if raw == nil {
		raw = v
	}
	child, ok := raw.ChildAt(0)
	if !ok || child == nil {
		return nil, errors.FieldMissing(Path{"[0]"}, "[0]")
	}
	return child, nil
}
