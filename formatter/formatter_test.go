package formatter

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/nichefmt"
	"github.com/wippyai/nichefmt/present"
	"github.com/wippyai/nichefmt/tree"
)

func TestSpecifier_Matches(t *testing.T) {
	vec := MustRegex(`^smallvec::SmallVec<.+>$`)
	tests := []struct {
		spec Specifier
		name string
		want bool
	}{
		{Exact("smol_str::SmolStr"), "smol_str::SmolStr", true},
		{Exact("smol_str::SmolStr"), "smol_str::SmolStr2", false},
		{Exact("smol_str::SmolStr"), "&smol_str::SmolStr", false},
		{vec, "smallvec::SmallVec<u8, 4>", true},
		{vec, "smallvec::SmallVec<[u64; 2]>", true},
		{vec, "smallvec::SmallVec<>", false},
		{vec, "other::smallvec::SmallVec<u8, 4>", false},
		{Specifier{Pattern: "x", Match: MatchRegex}, "x", false},
	}
	for _, tt := range tests {
		if got := tt.spec.Matches(tt.name); got != tt.want {
			t.Errorf("%s.Matches(%q) = %v, want %v", tt.spec, tt.name, got, tt.want)
		}
	}
}

func TestRegex_Invalid(t *testing.T) {
	if _, err := Regex("(["); err == nil {
		t.Error("expected error for invalid pattern")
	}
}

func TestRegistry_Categories(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Category("rust"); ok {
		t.Fatal("new registry should be empty")
	}
	a := r.CreateCategory("a")
	if a.Enabled() {
		t.Error("new categories start disabled")
	}
	if r.CreateCategory("a") != a {
		t.Error("CreateCategory should return the existing category")
	}
	r.CreateCategory("b")

	cats := r.Categories()
	if len(cats) != 2 || cats[0].Name() != "a" || cats[1].Name() != "b" {
		t.Errorf("categories = %v", cats)
	}
}

func TestRegistry_DisabledCategoryIgnored(t *testing.T) {
	r := NewRegistry()
	c := r.CreateCategory("c")
	_ = c.AddSummary(Exact("u64"), Summary{Func: func(nichefmt.Value) string { return "x" }})

	if _, ok := r.FindSummary(tree.U64); ok {
		t.Error("disabled category should not match")
	}
	c.SetEnabled(true)
	if _, ok := r.FindSummary(tree.U64); !ok {
		t.Error("enabled category should match")
	}
}

func TestRegistry_Cascade(t *testing.T) {
	r := NewRegistry()
	c := r.CreateCategory("c")
	c.SetEnabled(true)
	_ = c.AddSummary(Exact("Inner"), Summary{Func: func(nichefmt.Value) string { return "cascade" }, Options: Cascade})
	_ = c.AddSynthetic(Exact("Inner"), Synthetic{New: func() present.Provider { return present.NewStringProvider(nil) }})

	inner := tree.Struct("Inner", 8)
	alias := tree.Typedef("Alias", inner)

	if _, ok := r.FindSummary(alias); !ok {
		t.Error("cascading summary should match the alias")
	}
	if _, ok := r.FindSynthetic(inner); !ok {
		t.Error("synthetic should match the type itself")
	}
	if _, ok := r.FindSynthetic(alias); ok {
		t.Error("non-cascading synthetic must not match the alias")
	}
	if _, ok := r.FindSummary(nil); ok {
		t.Error("nil type should not match")
	}
}

func TestCategory_AddReplaces(t *testing.T) {
	r := NewRegistry()
	c := r.CreateCategory("c")
	c.SetEnabled(true)
	_ = c.AddSummary(Exact("u8"), Summary{Func: func(nichefmt.Value) string { return "one" }})
	_ = c.AddSummary(Exact("u8"), Summary{Func: func(nichefmt.Value) string { return "two" }})

	sums, _ := c.Specifiers()
	if len(sums) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(sums))
	}
	s, _ := r.FindSummary(tree.U8)
	if s.Func(nil) != "two" {
		t.Error("later registration should win")
	}

	if err := c.AddSummary(Exact("u16"), Summary{}); err == nil {
		t.Error("expected error for nil summary function")
	}
	if err := c.AddSynthetic(Exact("u16"), Synthetic{}); err == nil {
		t.Error("expected error for nil provider constructor")
	}
}

func TestInstall(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(zap.NewNop())

	r := NewRegistry()
	if err := Install(r); err != nil {
		t.Fatalf("Install failed: %v", err)
	}

	cat, ok := r.Category(CategoryName)
	if !ok || !cat.Enabled() {
		t.Fatal("rust category should exist and be enabled")
	}
	sums, syns := cat.Specifiers()
	if len(sums) != 2 || len(syns) != 2 {
		t.Fatalf("expected 2 summaries and 2 synthetics, got %d and %d", len(sums), len(syns))
	}
	if sums[0].Match != MatchExact || sums[1].Match != MatchRegex {
		t.Errorf("unexpected specifiers %v", sums)
	}
	if logs.FilterMessage("formatters installed").Len() != 1 {
		t.Error("expected install log entry")
	}

	// installing twice keeps one entry per specifier
	if err := Install(r); err != nil {
		t.Fatal(err)
	}
	sums, _ = cat.Specifiers()
	if len(sums) != 2 {
		t.Errorf("reinstall duplicated entries: %v", sums)
	}
}

func TestInstall_KeepsExistingCategoryState(t *testing.T) {
	r := NewRegistry()
	r.CreateCategory(CategoryName)
	if err := Install(r); err != nil {
		t.Fatal(err)
	}
	cat, _ := r.Category(CategoryName)
	if cat.Enabled() {
		t.Error("Install must not enable an existing category")
	}
}

func TestInstall_EndToEnd(t *testing.T) {
	r := NewRegistry()
	if err := Install(r); err != nil {
		t.Fatal(err)
	}

	f := tree.NewFixture()
	s, _ := f.SmolStr("s", "hello", tree.StorageInline)
	vec, _ := f.SmallVec("v", tree.U32, 2, []uint64{1, 2, 3})
	alias := f.Host.Bind("name", s.LoadAddress(), tree.Typedef("Name", tree.SmolStrType()))

	tests := []struct {
		v        nichefmt.Value
		summary  string
		children int
	}{
		{s, `"hello"`, 3},
		{vec, "size=3", 3},
		{alias, `"hello"`, 3},
	}
	for _, tt := range tests {
		t.Run(tt.v.Name(), func(t *testing.T) {
			got, ok := r.Summarize(tt.v)
			if !ok || got != tt.summary {
				t.Errorf("Summarize = %q, %v; want %q", got, ok, tt.summary)
			}
			p, ok := r.Provider(tt.v)
			if !ok {
				t.Fatal("no provider")
			}
			if p.NumChildren() != tt.children {
				t.Errorf("NumChildren = %d, want %d", p.NumChildren(), tt.children)
			}
		})
	}

	plain := f.Host.Bind("n", tree.StackBase, tree.U64)
	if _, ok := r.Summarize(plain); ok {
		t.Error("u64 should have no summary")
	}
	if _, ok := r.Provider(plain); ok {
		t.Error("u64 should have no provider")
	}
}
