package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseResolve  Phase = "resolve"  // field lookup on a value handle
	PhaseRead     Phase = "read"     // memory access
	PhaseDecode   Phase = "decode"   // bytes to semantic record
	PhasePresent  Phase = "present"  // record to children/summary
	PhaseRegister Phase = "register" // formatter registration
	PhaseLoad     Phase = "load"     // images, scenes, wasm modules
	PhaseConfig   Phase = "config"   // configuration parsing
)

// Kind categorizes the error
type Kind string

const (
	KindFieldMissing  Kind = "field_missing"
	KindReadFailed    Kind = "read_failed"
	KindInvalidUTF8   Kind = "invalid_utf8"
	KindInvalidType   Kind = "invalid_type"
	KindInvalidLayout Kind = "invalid_layout"
	KindInvalidData   Kind = "invalid_data"
	KindNotFound      Kind = "not_found"
	KindRegistration  Kind = "registration"
	KindUnsupported   Kind = "unsupported"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value    any
	Cause    error
	Phase    Phase
	Kind     Kind
	TypeName string
	Detail   string
	Path     []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.TypeName != "" {
		b.WriteString(": type ")
		b.WriteString(e.TypeName)
	}

	if e.Detail != "" {
		if e.TypeName != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// TypeName sets the inspected type name
func (b *Builder) TypeName(t string) *Builder {
	b.err.TypeName = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// FieldMissing creates a missing field error
func FieldMissing(path []string, fieldName string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindFieldMissing,
		Path:   path,
		Detail: fmt.Sprintf("required field %q not found", fieldName),
	}
}

// ReadFailed creates a memory read failure error
func ReadFailed(path []string, addr, length uint64, cause error) *Error {
	return &Error{
		Phase:  PhaseRead,
		Kind:   KindReadFailed,
		Path:   path,
		Detail: fmt.Sprintf("read %d bytes at 0x%x", length, addr),
		Value:  addr,
		Cause:  cause,
	}
}

// InvalidUTF8 creates an invalid UTF-8 error
func InvalidUTF8(path []string, data []byte, cause error) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindInvalidUTF8,
		Path:   path,
		Detail: fmt.Sprintf("undecodable byte sequence: %x", preview),
		Cause:  cause,
	}
}

// InvalidType creates an error for an unusable type descriptor
func InvalidType(path []string, typeName, detail string) *Error {
	return &Error{
		Phase:    PhaseResolve,
		Kind:     KindInvalidType,
		Path:     path,
		TypeName: typeName,
		Detail:   detail,
	}
}

// NullPointer creates an error for a pointer that resolved to address 0
func NullPointer(path []string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindFieldMissing,
		Path:   path,
		Detail: "pointer is null",
		Value:  uint64(0),
	}
}

// InvalidLayout creates an error for inconsistent layout constants
func InvalidLayout(path []string, detail string) *Error {
	return &Error{
		Phase:  PhaseConfig,
		Kind:   KindInvalidLayout,
		Path:   path,
		Detail: detail,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Registration creates a registration error
func Registration(category, typeName string, cause error) *Error {
	return &Error{
		Phase:    PhaseRegister,
		Kind:     KindRegistration,
		TypeName: typeName,
		Detail:   fmt.Sprintf("register in category %q", category),
		Cause:    cause,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Load creates a loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Outcome is the coarse result of one decode step.
type Outcome int

const (
	OutcomeOk Outcome = iota
	OutcomeFieldMissing
	OutcomeReadFailed
	OutcomeDecodeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOk:
		return "ok"
	case OutcomeFieldMissing:
		return "field_missing"
	case OutcomeReadFailed:
		return "read_failed"
	case OutcomeDecodeFailed:
		return "decode_failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// OutcomeOf classifies err. Errors that are not *Error count as DecodeFailed.
func OutcomeOf(err error) Outcome {
	if err == nil {
		return OutcomeOk
	}
	var e *Error
	if !stderrors.As(err, &e) {
		return OutcomeDecodeFailed
	}
	switch e.Kind {
	case KindFieldMissing, KindInvalidType:
		return OutcomeFieldMissing
	case KindReadFailed:
		return OutcomeReadFailed
	default:
		return OutcomeDecodeFailed
	}
}
