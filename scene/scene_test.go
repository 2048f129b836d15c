package scene

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"

	"github.com/wippyai/nichefmt/memory"
	"github.com/wippyai/nichefmt/smallvec"
	"github.com/wippyai/nichefmt/smolstr"
	"github.com/wippyai/nichefmt/tree"
)

const sampleScene = `
segments:
  - base: 0x100000
    text: "hello world"
  - base: 0x200000
    hex: "2a000000"
  - base: 0x300000
    size: 64
types:
  - name: Counter
    fields:
      - {name: value, type: u32, offset: 0}
  - name: Id
    typedef: Counter
  - name: Args
    typedef: smallvec::SmallVec<u64, 2>
values:
  - name: counter
    type: Id
    address: 0x200000
  - name: blank
    type: "[u8; 4]"
    address: 0x300000
fixtures:
  - name: greeting
    smolstr: hello
  - name: big
    smolstr: "this string is far too long to be stored inline"
    storage: heap
  - name: empty_static
    smolstr: ""
    storage: static
  - name: nums
    smallvec:
      element: u32
      inline: 2
      items: [1, 2, 3]
`

func TestBuild_YAML(t *testing.T) {
	s, err := Decode([]byte(sampleScene), FormatYAML)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	b, err := s.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	text, err := b.Image.Read(0x100006, 5)
	if err != nil || string(text) != "world" {
		t.Errorf("text segment = %q, %v", text, err)
	}

	counter, ok := b.Host.Variable("counter")
	if !ok {
		t.Fatal("counter not bound")
	}
	if counter.Type().Name() != "Id" || counter.Type().Canonical().Name() != "Counter" {
		t.Errorf("counter type = %s", counter.Type().Name())
	}
	field, _ := counter.Child("value")
	if n, _ := field.Unsigned(); n != 42 {
		t.Errorf("counter.value = %d", n)
	}

	blank, _ := b.Host.Variable("blank")
	if blank.NumChildren() != 4 {
		t.Errorf("blank children = %d", blank.NumChildren())
	}

	if _, ok := b.Host.LookupType("Args"); !ok {
		t.Error("unused declaration should still be defined")
	}

	greeting, _ := b.Host.Variable("greeting")
	if rec := smolstr.Decode(greeting); rec.Content != "hello" || rec.Variant != smolstr.VariantInline {
		t.Errorf("greeting = %+v", rec)
	}
	big, _ := b.Host.Variable("big")
	if rec := smolstr.Decode(big); rec.Variant != smolstr.VariantHeap || rec.Length != 47 {
		t.Errorf("big = %+v", rec)
	}
	empty, _ := b.Host.Variable("empty_static")
	if rec := smolstr.Decode(empty); rec.Variant != smolstr.VariantStatic || rec.Length != 0 {
		t.Errorf("empty_static = %+v", rec)
	}

	nums, _ := b.Host.Variable("nums")
	rec := smallvec.Decode(nums)
	if rec.Length != 3 || rec.Storage != smallvec.StorageHeap {
		t.Errorf("nums = %+v", rec)
	}

	names := make([]string, 0)
	for _, v := range b.Host.Variables() {
		names = append(names, v.Name())
	}
	want := []string{"counter", "blank", "greeting", "big", "empty_static", "nums"}
	if len(names) != len(want) {
		t.Fatalf("variables = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("variable %d = %s, want %s", i, names[i], want[i])
		}
	}
}

func TestEncode_CBORRoundTrip(t *testing.T) {
	s, err := Decode([]byte(sampleScene), FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	data, err := s.Encode(FormatCBOR)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	back, err := Decode(data, FormatCBOR)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(back.Segments) != 3 || back.Segments[1].Hex != "2a000000" || back.Segments[0].Base != 0x100000 {
		t.Errorf("segments = %+v", back.Segments)
	}
	if len(back.Fixtures) != 4 || back.Fixtures[3].SmallVec == nil || len(back.Fixtures[3].SmallVec.Items) != 3 {
		t.Errorf("fixtures = %+v", back.Fixtures)
	}
	if _, err := back.Build(); err != nil {
		t.Errorf("Build of decoded CBOR scene failed: %v", err)
	}
}

func TestLoad_SegmentFiles(t *testing.T) {
	dir := t.TempDir()
	payload := []byte("compressed segment payload")

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatal(err)
	}
	compressed := enc.EncodeAll(payload, nil)
	_ = enc.Close()
	if err := os.WriteFile(filepath.Join(dir, "seg.bin.zst"), compressed, 0o644); err != nil {
		t.Fatal(err)
	}

	scene := "segments:\n  - base: 0x500000\n    file: seg.bin.zst\n    checksum: " + memory.Checksum(payload) + "\n"
	path := filepath.Join(dir, "scene.yaml")
	if err := os.WriteFile(path, []byte(scene), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	b, err := s.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	got, err := b.Image.Read(0x500000, uint64(len(payload)))
	if err != nil || string(got) != string(payload) {
		t.Errorf("segment = %q, %v", got, err)
	}
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name  string
		scene string
	}{
		{"two sources", "segments:\n  - {base: 0x100000, text: a, hex: '00'}\n"},
		{"no source", "segments:\n  - {base: 0x100000}\n"},
		{"bad hex", "segments:\n  - {base: 0x100000, hex: zz}\n"},
		{"checksum mismatch", "segments:\n  - {base: 0x100000, text: a, checksum: '00'}\n"},
		{"huge size", "segments:\n  - {base: 0x100000, size: 0xffffffffffff}\n"},
		{"overlaps fixtures", "segments:\n  - {base: 0x10000, size: 16}\n"},
		{"unknown type", "values:\n  - {name: x, type: Missing, address: 0x1}\n"},
		{"self reference", "types:\n  - {name: A, typedef: A}\n"},
		{"duplicate type", "types:\n  - {name: A, size: 1}\n  - {name: A, size: 2}\n"},
		{"unnamed value", "values:\n  - {type: u8, address: 0x1}\n"},
		{"empty fixture", "fixtures:\n  - {name: f}\n"},
		{"bad storage", "fixtures:\n  - {name: f, smolstr: x, storage: stack}\n"},
		{"oversized inline", "fixtures:\n  - {name: f, smolstr: 'this string is far too long to be inline', storage: inline}\n"},
		{"wide element", "fixtures:\n  - name: f\n    smallvec: {element: '[u64; 2]', inline: 1, items: [1]}\n"},
		{"unsupported generic", "values:\n  - {name: x, type: 'Vec<u8>', address: 0x1}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Decode([]byte(tt.scene), FormatYAML)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if _, err := s.Build(); err == nil {
				t.Error("expected Build error")
			}
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	if _, err := Decode([]byte("segments: {"), FormatYAML); err == nil {
		t.Error("expected YAML error")
	}
	if _, err := Decode([]byte{0xff, 0x00}, FormatCBOR); err == nil {
		t.Error("expected CBOR error")
	}
	if _, err := Decode(nil, Format("toml")); err == nil {
		t.Error("expected unsupported format error")
	}
}

func TestFormatFor(t *testing.T) {
	for path, want := range map[string]Format{
		"a.yaml": FormatYAML,
		"a.yml":  FormatYAML,
		"a.CBOR": FormatCBOR,
		"a":      FormatYAML,
	} {
		if got := FormatFor(path); got != want {
			t.Errorf("FormatFor(%q) = %s, want %s", path, got, want)
		}
	}
}

func TestResolve_Expressions(t *testing.T) {
	h := tree.NewHost(memory.NewImage())
	r, err := newResolver(h, []TypeDecl{
		{Name: "Pair", Fields: []FieldDecl{{Name: "a", Type: "u32"}, {Name: "b", Type: "u64", Offset: 8}}},
	})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		expr string
		name string
		size uint64
	}{
		{"u16", "u16", 2},
		{"Pair", "Pair", 16},
		{"*const Pair", "*const Pair", 8},
		{"&str", "&str", 8},
		{"[Pair; 3]", "[Pair; 3]", 48},
		{"[[u8; 2]; 2]", "[[u8; 2]; 2]", 4},
		{"smallvec::SmallVec<u32, 4>", "smallvec::SmallVec<u32, 4>", 24},
		{"smallvec::SmallVec<[u8; 32]>", "smallvec::SmallVec<u8, 32>", 40},
		{"smallvec::SmallVec<[u16; 2], 1>", "smallvec::SmallVec<[u16; 2], 1>", 24},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := r.resolve(tt.expr)
			if err != nil {
				t.Fatalf("resolve failed: %v", err)
			}
			if got.Name() != tt.name || got.ByteSize() != tt.size {
				t.Errorf("resolve = %s (%d bytes), want %s (%d bytes)", got.Name(), got.ByteSize(), tt.name, tt.size)
			}
		})
	}

	for _, bad := range []string{"", "[u8]", "[u8; x]", "smallvec::SmallVec<u8>", "smallvec::SmallVec<u8, n>", "Nope<>"} {
		if _, err := r.resolve(bad); err == nil {
			t.Errorf("resolve(%q) should fail", bad)
		}
	}
}

func TestSplitTop(t *testing.T) {
	got := splitTop("[u8; 2], smallvec::SmallVec<a, b>, c", ',')
	if len(got) != 3 || got[0] != "[u8; 2]" || got[1] != "smallvec::SmallVec<a, b>" || got[2] != "c" {
		t.Errorf("splitTop = %q", got)
	}
}
