package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:    PhaseResolve,
				Kind:     KindFieldMissing,
				Path:     []string{"$variants$", "$variant$24", "$discr$"},
				TypeName: "smol_str::SmolStr",
				Detail:   "not present",
			},
			contains: []string{"[resolve]", "field_missing", "$variants$.$variant$24.$discr$", "smol_str::SmolStr", "not present"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseRead,
				Kind:  KindReadFailed,
			},
			contains: []string{"[read]", "read_failed"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseLoad,
				Kind:   KindInvalidData,
				Detail: "segment",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[load]", "invalid_data", "segment", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := ReadFailed([]string{"buf"}, 0x1000, 4, cause)

	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should see through to the cause")
	}
}

func TestError_Is(t *testing.T) {
	err := FieldMissing([]string{"raw"}, "raw")

	if !errors.Is(err, &Error{Phase: PhaseResolve, Kind: KindFieldMissing}) {
		t.Error("expected match on phase and kind")
	}
	if errors.Is(err, &Error{Phase: PhaseRead, Kind: KindFieldMissing}) {
		t.Error("different phase should not match")
	}
	if errors.Is(err, &Error{Phase: PhaseResolve, Kind: KindReadFailed}) {
		t.Error("different kind should not match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("boom")
	err := New(PhaseDecode, KindInvalidUTF8).
		Path("content").
		TypeName("smol_str::SmolStr").
		Value(3).
		Cause(cause).
		Detail("bad byte at %d", 2).
		Build()

	if err.Phase != PhaseDecode || err.Kind != KindInvalidUTF8 {
		t.Errorf("unexpected phase/kind: %s/%s", err.Phase, err.Kind)
	}
	if len(err.Path) != 1 || err.Path[0] != "content" {
		t.Errorf("unexpected path: %v", err.Path)
	}
	if err.TypeName != "smol_str::SmolStr" {
		t.Errorf("unexpected type name: %s", err.TypeName)
	}
	if err.Value != 3 {
		t.Errorf("unexpected value: %v", err.Value)
	}
	if err.Detail != "bad byte at 2" {
		t.Errorf("unexpected detail: %q", err.Detail)
	}
	if err.Cause != cause {
		t.Error("cause not set")
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		err   *Error
		phase Phase
		kind  Kind
	}{
		{FieldMissing(nil, "len"), PhaseResolve, KindFieldMissing},
		{ReadFailed(nil, 1, 2, nil), PhaseRead, KindReadFailed},
		{InvalidUTF8(nil, []byte{0xff}, nil), PhaseDecode, KindInvalidUTF8},
		{InvalidType(nil, "T", "zero size"), PhaseResolve, KindInvalidType},
		{NullPointer(nil), PhaseResolve, KindFieldMissing},
		{InvalidLayout(nil, "x"), PhaseConfig, KindInvalidLayout},
		{InvalidData(PhaseLoad, nil, "x"), PhaseLoad, KindInvalidData},
		{NotFound(PhaseLoad, "value", "x"), PhaseLoad, KindNotFound},
		{Registration("rust", "T", nil), PhaseRegister, KindRegistration},
		{Unsupported(PhasePresent, "x"), PhasePresent, KindUnsupported},
		{Load("x", nil), PhaseLoad, KindInvalidData},
		{Wrap(PhaseConfig, KindInvalidData, nil, "x"), PhaseConfig, KindInvalidData},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if tt.err.Phase != tt.phase {
				t.Errorf("phase = %s, want %s", tt.err.Phase, tt.phase)
			}
			if tt.err.Kind != tt.kind {
				t.Errorf("kind = %s, want %s", tt.err.Kind, tt.kind)
			}
			if tt.err.Error() == "" {
				t.Error("empty message")
			}
		})
	}
}

func TestInvalidUTF8_TruncatesPreview(t *testing.T) {
	data := make([]byte, 100)
	err := InvalidUTF8(nil, data, nil)
	if strings.Count(err.Detail, "00") != 32 {
		t.Errorf("expected 32 byte preview, got %q", err.Detail)
	}
}

func TestOutcomeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Outcome
	}{
		{"nil", nil, OutcomeOk},
		{"field missing", FieldMissing(nil, "raw"), OutcomeFieldMissing},
		{"invalid type", InvalidType(nil, "T", "zero size"), OutcomeFieldMissing},
		{"null pointer", NullPointer(nil), OutcomeFieldMissing},
		{"read failed", ReadFailed(nil, 0, 1, nil), OutcomeReadFailed},
		{"wrapped read", fmt.Errorf("outer: %w", ReadFailed(nil, 0, 1, nil)), OutcomeReadFailed},
		{"utf8", InvalidUTF8(nil, nil, nil), OutcomeDecodeFailed},
		{"foreign", errors.New("plain"), OutcomeDecodeFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OutcomeOf(tt.err); got != tt.want {
				t.Errorf("OutcomeOf = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestOutcome_String(t *testing.T) {
	if OutcomeReadFailed.String() != "read_failed" {
		t.Errorf("unexpected: %s", OutcomeReadFailed)
	}
	if Outcome(42).String() != "outcome(42)" {
		t.Errorf("unexpected: %s", Outcome(42))
	}
}
