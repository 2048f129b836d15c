package scene

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/nichefmt/errors"
	"github.com/wippyai/nichefmt/tree"
)

// resolver turns type expressions into declared types, defining each one
// in the host the first time it is built.
type resolver struct {
	host     *tree.Host
	decls    map[string]TypeDecl
	building map[string]bool
}

func newResolver(host *tree.Host, decls []TypeDecl) (*resolver, error) {
	r := &resolver{
		host:     host,
		decls:    make(map[string]TypeDecl, len(decls)),
		building: make(map[string]bool),
	}
	for _, d := range decls {
		if d.Name == "" {
			return nil, errors.InvalidData(errors.PhaseLoad, []string{"types"}, "type declaration without a name")
		}
		if _, dup := r.decls[d.Name]; dup {
			return nil, errors.InvalidData(errors.PhaseLoad, []string{"types", d.Name}, "type declared twice")
		}
		r.decls[d.Name] = d
	}
	return r, nil
}

// resolve understands declared and builtin names, pointers (*const T,
// *mut T, &T), arrays ([T; N]) and smallvec::SmallVec<T, N> or
// smallvec::SmallVec<[T; N]>.
func (r *resolver) resolve(expr string) (*tree.Type, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, errors.InvalidData(errors.PhaseLoad, nil, "empty type expression")
	}
	if t, ok := r.host.LookupType(expr); ok {
		return t, nil
	}
	if d, ok := r.decls[expr]; ok {
		return r.build(d)
	}

	switch {
	case strings.HasPrefix(expr, "*const "), strings.HasPrefix(expr, "*mut "), strings.HasPrefix(expr, "&"):
		return tree.Pointer(expr), nil
	case strings.HasPrefix(expr, "[") && strings.HasSuffix(expr, "]"):
		elem, n, err := r.array(expr)
		if err != nil {
			return nil, err
		}
		return tree.Array(elem, n), nil
	}

	base, args, ok := splitGeneric(expr)
	if !ok {
		return nil, errors.NotFound(errors.PhaseLoad, "type", expr)
	}
	switch base {
	case "smallvec::SmallVec":
		t, err := r.smallVec(expr, args)
		if err != nil {
			return nil, err
		}
		r.host.Define(t)
		return t, nil
	default:
		return nil, errors.Unsupported(errors.PhaseLoad, "generic type "+base)
	}
}

func (r *resolver) build(d TypeDecl) (*tree.Type, error) {
	if r.building[d.Name] {
		return nil, errors.InvalidData(errors.PhaseLoad, []string{"types", d.Name}, "type refers to itself")
	}
	r.building[d.Name] = true
	defer delete(r.building, d.Name)

	var t *tree.Type
	if d.Typedef != "" {
		target, err := r.resolve(d.Typedef)
		if err != nil {
			return nil, err
		}
		t = tree.Typedef(d.Name, target)
	} else {
		fields := make([]tree.Field, 0, len(d.Fields))
		size := d.Size
		for _, f := range d.Fields {
			ft, err := r.resolve(f.Type)
			if err != nil {
				return nil, err
			}
			fields = append(fields, tree.F(f.Name, f.Offset, ft))
			size = max(size, f.Offset+ft.ByteSize())
		}
		t = tree.Struct(d.Name, size, fields...)

		if len(d.Args) > 0 {
			args := make([]*tree.Type, 0, len(d.Args))
			for _, a := range d.Args {
				at, err := r.resolve(a)
				if err != nil {
					return nil, err
				}
				args = append(args, at)
			}
			t.WithArgs(args...)
		}
	}

	r.host.Define(t)
	return t, nil
}

func (r *resolver) array(expr string) (*tree.Type, uint64, error) {
	parts := splitTop(expr[1:len(expr)-1], ';')
	if len(parts) != 2 {
		return nil, 0, errors.InvalidData(errors.PhaseLoad, nil, fmt.Sprintf("array type %q needs the form [T; N]", expr))
	}
	n, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 0, 64)
	if err != nil {
		return nil, 0, errors.InvalidData(errors.PhaseLoad, nil, fmt.Sprintf("array length in %q: %v", expr, err))
	}
	elem, err := r.resolve(parts[0])
	if err != nil {
		return nil, 0, err
	}
	return elem, n, nil
}

func (r *resolver) smallVec(expr string, args []string) (*tree.Type, error) {
	switch len(args) {
	case 1:
		inner := strings.TrimSpace(args[0])
		if !strings.HasPrefix(inner, "[") || !strings.HasSuffix(inner, "]") {
			break
		}
		elem, n, err := r.array(inner)
		if err != nil {
			return nil, err
		}
		return tree.SmallVecType(elem, n), nil
	case 2:
		n, err := strconv.ParseUint(strings.TrimSpace(args[1]), 0, 64)
		if err != nil {
			return nil, errors.InvalidData(errors.PhaseLoad, nil, fmt.Sprintf("inline capacity in %q: %v", expr, err))
		}
		elem, err := r.resolve(args[0])
		if err != nil {
			return nil, err
		}
		return tree.SmallVecType(elem, n), nil
	}
	return nil, errors.InvalidData(errors.PhaseLoad, nil,
		fmt.Sprintf("%q needs the form smallvec::SmallVec<T, N> or smallvec::SmallVec<[T; N]>", expr))
}

// splitGeneric splits "base<a, b>" into base and its top-level arguments.
func splitGeneric(expr string) (string, []string, bool) {
	open := strings.IndexByte(expr, '<')
	if open <= 0 || !strings.HasSuffix(expr, ">") {
		return "", nil, false
	}
	inner := expr[open+1 : len(expr)-1]
	if strings.TrimSpace(inner) == "" {
		return "", nil, false
	}
	return expr[:open], splitTop(inner, ','), true
}

// splitTop splits s at sep, ignoring separators nested in brackets.
func splitTop(s string, sep byte) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '[', '(':
			depth++
		case '>', ']', ')':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	return append(parts, strings.TrimSpace(s[start:]))
}
