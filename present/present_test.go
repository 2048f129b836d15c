package present

import (
	"os"
	"testing"

	"github.com/wippyai/nichefmt"
	"github.com/wippyai/nichefmt/memory"
	"github.com/wippyai/nichefmt/smallvec"
	"github.com/wippyai/nichefmt/smolstr"
	"github.com/wippyai/nichefmt/tree"
)

func childNames(p Provider) []string {
	var names []string
	for _, c := range Children(p) {
		names = append(names, c.Name)
	}
	return names
}

func TestStringProvider_Inline(t *testing.T) {
	f := tree.NewFixture()
	v, err := f.SmolStr("s", "hello", tree.StorageInline)
	if err != nil {
		t.Fatal(err)
	}

	p := NewStringProvider(nil)
	p.Update(v)

	if got := p.Summary(); got != `"hello"` {
		t.Errorf("Summary = %s", got)
	}
	if p.NumChildren() != 3 {
		t.Fatalf("NumChildren = %d, want 3", p.NumChildren())
	}
	if names := childNames(p); len(names) != 3 || names[0] != "variant" || names[1] != "length" || names[2] != "content" {
		t.Errorf("children = %v", names)
	}

	variant, _ := p.ChildAt(0)
	if variant.Kind != KindText || variant.Text != "Inline" {
		t.Errorf("variant = %+v", variant)
	}
	length, _ := p.ChildAt(1)
	if length.Kind != KindUnsigned || length.Unsigned != 5 {
		t.Errorf("length = %+v", length)
	}

	content, _ := p.ChildAt(2)
	if content.Kind != KindBytes || content.Text != "hello" {
		t.Fatalf("content = %+v", content)
	}
	if content.Value.LoadAddress() != v.LoadAddress()+1 {
		t.Errorf("content at 0x%x, want inline buffer 0x%x", content.Value.LoadAddress(), v.LoadAddress()+1)
	}
	if content.Value.Type().ByteSize() != 5 {
		t.Errorf("content array size = %d", content.Value.Type().ByteSize())
	}
	b, err := content.Value.(*tree.Value).Bytes()
	if err != nil || string(b) != "hello" {
		t.Errorf("content bytes = %q, %v", b, err)
	}

	if _, ok := p.ChildAt(3); ok {
		t.Error("inline string must not expose a pointer")
	}
	if !p.HasChildren() {
		t.Error("strings always have children")
	}
}

func TestStringProvider_Heap(t *testing.T) {
	f := tree.NewFixture()
	v, err := f.SmolStr("h", "abc", tree.StorageHeap)
	if err != nil {
		t.Fatal(err)
	}

	p := NewStringProvider(nil)
	p.Update(v)

	if p.Summary() != `"abc"` {
		t.Errorf("Summary = %s", p.Summary())
	}
	if p.NumChildren() != 4 {
		t.Fatalf("NumChildren = %d, want 4", p.NumChildren())
	}
	rec := p.Record()
	ptr, ok := p.ChildAt(p.ChildIndex("pointer"))
	if !ok || ptr.Kind != KindAddress || ptr.Unsigned != rec.Pointer {
		t.Errorf("pointer = %+v", ptr)
	}
	content, _ := p.ChildAt(2)
	if content.Value == nil || content.Value.LoadAddress() != rec.Pointer+16 {
		t.Errorf("content = %+v", content)
	}
	variant, _ := p.ChildAt(0)
	if variant.Text != "Heap" {
		t.Errorf("variant = %s", variant.Text)
	}
}

func TestStringProvider_Empty(t *testing.T) {
	for _, storage := range []tree.StringStorage{tree.StorageInline, tree.StorageStatic, tree.StorageHeap} {
		t.Run(storage.String(), func(t *testing.T) {
			f := tree.NewFixture()
			v, _ := f.SmolStr("e", "", storage)
			p := NewStringProvider(nil)
			p.Update(v)

			if p.Summary() != `""` {
				t.Errorf("Summary = %s", p.Summary())
			}
			content, ok := p.ChildAt(2)
			if !ok || content.Kind != KindText || content.Text != "" || content.Value != nil {
				t.Errorf("content = %+v", content)
			}
			wantChildren := 3
			if storage != tree.StorageInline {
				wantChildren = 4
			}
			if p.NumChildren() != wantChildren {
				t.Errorf("NumChildren = %d, want %d", p.NumChildren(), wantChildren)
			}
		})
	}
}

func TestStringProvider_Unreadable(t *testing.T) {
	f := tree.NewFixture()
	broken := tree.Struct("smol_str::SmolStr", 24, tree.F("__0", 0, tree.Struct("Repr", 24)))
	v := f.Host.Bind("b", tree.StackBase, broken)

	p := NewStringProvider(nil)
	p.Update(v)
	if p.Summary() != `""` {
		t.Errorf("Summary = %s", p.Summary())
	}
	variant, _ := p.ChildAt(0)
	length, _ := p.ChildAt(1)
	if variant.Text != "" || length.Unsigned != 0 {
		t.Errorf("unexpected children %+v %+v", variant, length)
	}
	if p.NumChildren() != 3 {
		t.Errorf("NumChildren = %d", p.NumChildren())
	}
}

func TestStringProvider_ChildIndex(t *testing.T) {
	p := NewStringProvider(nil)
	for name, want := range map[string]int{"variant": 0, "length": 1, "content": 2, "pointer": 3, "other": -1} {
		if got := p.ChildIndex(name); got != want {
			t.Errorf("ChildIndex(%q) = %d, want %d", name, got, want)
		}
	}
	if _, ok := p.ChildAt(-1); ok {
		t.Error("ChildAt(-1) should fail")
	}
}

func TestVectorProvider_Heap(t *testing.T) {
	f := tree.NewFixture()
	v, err := f.SmallVec("v", tree.U64, 2, []uint64{3, 5, 8})
	if err != nil {
		t.Fatal(err)
	}

	p := NewVectorProvider(nil)
	p.Update(v)

	if p.Summary() != "size=3" {
		t.Errorf("Summary = %s", p.Summary())
	}
	if p.NumChildren() != 3 || !p.HasChildren() {
		t.Fatalf("NumChildren = %d", p.NumChildren())
	}

	rec := p.Record()
	want := []uint64{3, 5, 8}
	for i, c := range Children(p) {
		if c.Kind != KindElement || c.Name != smallvec.ElementName(uint64(i)) {
			t.Errorf("child %d = %+v", i, c)
		}
		if c.Value.LoadAddress() != rec.BaseAddress+uint64(i)*8 {
			t.Errorf("[%d] at 0x%x", i, c.Value.LoadAddress())
		}
		n, _ := c.Value.Unsigned()
		if n != want[i] {
			t.Errorf("[%d] = %d, want %d", i, n, want[i])
		}
	}

	if p.ChildIndex("[2]") != 2 || p.ChildIndex("[3]") != -1 || p.ChildIndex("len") != -1 {
		t.Error("unexpected ChildIndex results")
	}
	if _, ok := p.ChildAt(3); ok {
		t.Error("ChildAt(3) should be out of range")
	}
}

func TestVectorProvider_Empty(t *testing.T) {
	f := tree.NewFixture()
	v, _ := f.SmallVec("v", tree.U8, 4, nil)
	p := NewVectorProvider(nil)
	p.Update(v)

	if p.Summary() != "size=0" || p.HasChildren() || p.NumChildren() != 0 {
		t.Errorf("summary %s, children %d", p.Summary(), p.NumChildren())
	}
}

func TestVectorProvider_Unreadable(t *testing.T) {
	tests := []struct {
		name    string
		typ     *tree.Type
		summary string
	}{
		{
			name:    "no length field",
			typ:     tree.Struct("smallvec::SmallVec<u8, 4>", 16, tree.F("raw", 8, tree.U64)).WithArgs(tree.U8),
			summary: "size=?",
		},
		{
			name: "no raw storage",
			typ: tree.Struct("smallvec::SmallVec<u8, 4>", 16,
				tree.F("len", 0, tree.Struct("smallvec::TaggedLen", 8, tree.F("__0", 0, tree.Usize)))).WithArgs(tree.U8),
			summary: "size=0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tree.NewFixture()
			_ = f.PutUint(tree.StackBase, 8, 4<<1)
			v := f.Host.Bind("b", tree.StackBase, tt.typ)

			p := NewVectorProvider(nil)
			p.Update(v)
			if p.Summary() != tt.summary {
				t.Errorf("Summary = %s, want %s", p.Summary(), tt.summary)
			}
			if p.NumChildren() != 0 || p.HasChildren() {
				t.Error("unreadable vector must have no children")
			}
		})
	}
}

func TestSummaries(t *testing.T) {
	if s := SummarizeString(smolstr.Record{}); s != `""` {
		t.Errorf("empty string summary = %s", s)
	}
	if s := SummarizeString(smolstr.Record{Content: "a b"}); s != `"a b"` {
		t.Errorf("summary = %s", s)
	}
	if s := SummarizeVector(smallvec.Record{}); s != "size=?" {
		t.Errorf("unknown vector summary = %s", s)
	}
	if s := SummarizeVector(smallvec.Record{Length: 12, LengthKnown: true}); s != "size=12" {
		t.Errorf("vector summary = %s", s)
	}
}

func TestProvider_UpdateRecomputes(t *testing.T) {
	f := tree.NewFixture()
	v, _ := f.SmolStr("s", "first", tree.StorageInline)
	p := NewStringProvider(nil)
	p.Update(v)

	if err := f.WriteSmolStr(v.LoadAddress(), "second one", tree.StorageHeap); err != nil {
		t.Fatal(err)
	}
	if p.Summary() != `"first"` {
		t.Error("record must not change before Update")
	}
	p.Update(v)
	if p.Summary() != `"second one"` || p.NumChildren() != 4 {
		t.Errorf("after update: %s, %d children", p.Summary(), p.NumChildren())
	}
}

// sizingMemory records how many reads were made and the largest one.
type sizingMemory struct {
	nichefmt.Memory
	reads   int
	largest uint64
}

func (m *sizingMemory) Read(addr, length uint64) ([]byte, error) {
	m.reads++
	m.largest = max(m.largest, length)
	return m.Memory.Read(addr, length)
}

// liveBacking layers the fixture image over this process's own memory,
// which serves any address the image does not map.
func liveBacking(t *testing.T, f *tree.Fixture) nichefmt.Memory {
	t.Helper()
	proc, err := memory.OpenProcess(os.Getpid())
	if err != nil {
		return f.Image
	}
	t.Cleanup(func() { proc.Close() })
	return memory.Layered(f.Image, proc)
}

func TestStringProvider_CorruptedLength(t *testing.T) {
	tests := []struct {
		name    string
		storage tree.StringStorage
	}{
		{"static", tree.StorageStatic},
		{"heap", tree.StorageHeap},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tree.NewFixture()
			v, err := f.SmolStr("s", "intact", tt.storage)
			if err != nil {
				t.Fatal(err)
			}
			if err := f.PutUint(v.LoadAddress()+16, 8, 1<<62); err != nil {
				t.Fatal(err)
			}
			mem := &sizingMemory{Memory: liveBacking(t, f)}
			f.Host.SetMemory(mem)

			p := NewStringProvider(nil)
			p.Update(v)
			if p.Summary() != `""` {
				t.Errorf("Summary = %s", p.Summary())
			}
			if p.NumChildren() != 3 {
				t.Errorf("NumChildren = %d, want 3", p.NumChildren())
			}
			content, _ := p.ChildAt(2)
			if content.Kind != KindText || content.Text != "" || content.Value != nil {
				t.Errorf("content = %+v", content)
			}
			if mem.largest > 24 {
				t.Errorf("read %d bytes at once", mem.largest)
			}
		})
	}
}

func TestVectorProvider_CorruptedLength(t *testing.T) {
	f := tree.NewFixture()
	v, err := f.SmallVec("v", tree.U32, 2, []uint64{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	const count = 1 << 61
	if err := f.PutUint(v.LoadAddress(), 8, count<<1|1); err != nil {
		t.Fatal(err)
	}
	mem := &sizingMemory{Memory: liveBacking(t, f)}
	f.Host.SetMemory(mem)

	p := NewVectorProvider(nil)
	p.Update(v)
	if p.Summary() != "size=2305843009213693952" {
		t.Errorf("Summary = %s", p.Summary())
	}
	if p.NumChildren() != count || !p.HasChildren() {
		t.Errorf("NumChildren = %d", p.NumChildren())
	}
	if mem.reads > 4 || mem.largest > 8 {
		t.Errorf("Update made %d reads, largest %d bytes", mem.reads, mem.largest)
	}

	// elements stay on demand
	first, ok := p.ChildAt(0)
	if !ok {
		t.Fatal("ChildAt(0) failed")
	}
	if n, err := first.Value.Unsigned(); err != nil || n != 1 {
		t.Errorf("[0] = %d, %v", n, err)
	}
	if mem.largest > 8 {
		t.Errorf("largest read %d bytes", mem.largest)
	}
}
