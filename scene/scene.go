// Package scene describes an inspected address space in a file: memory
// segments, declared types, bound values and generated fixtures.
//
// Scenes are YAML or CBOR (chosen by file extension). A scene builds a
// tree.Host whose variables are the values the CLI inspects.
//
//	segments:
//	  - base: 0x100000
//	    file: heap.bin.zst
//	    checksum: 9f2c...
//	types:
//	  - name: Args
//	    typedef: smallvec::SmallVec<u64, 4>
//	values:
//	  - name: args
//	    type: Args
//	    address: 0x100040
//	fixtures:
//	  - name: greeting
//	    smolstr: hello
//	    storage: heap
package scene

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/nichefmt/errors"
)

// Format is a scene encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatCBOR Format = "cbor"
)

// FormatFor picks the encoding from a file extension. Unknown extensions are YAML.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cbor":
		return FormatCBOR
	default:
		return FormatYAML
	}
}

// Scene is the decoded file.
type Scene struct {
	Segments []Segment     `yaml:"segments" cbor:"segments"`
	Types    []TypeDecl    `yaml:"types" cbor:"types"`
	Values   []ValueDecl   `yaml:"values" cbor:"values"`
	Fixtures []FixtureDecl `yaml:"fixtures" cbor:"fixtures"`

	// dir resolves relative segment files.
	dir string
}

// Segment maps bytes at Base. Exactly one of File, Hex, Text or Size is set.
type Segment struct {
	File     string `yaml:"file,omitempty" cbor:"file,omitempty"`
	Hex      string `yaml:"hex,omitempty" cbor:"hex,omitempty"`
	Text     string `yaml:"text,omitempty" cbor:"text,omitempty"`
	Checksum string `yaml:"checksum,omitempty" cbor:"checksum,omitempty"`
	Base     uint64 `yaml:"base" cbor:"base"`
	Size     uint64 `yaml:"size,omitempty" cbor:"size,omitempty"`
}

// TypeDecl declares a struct or an alias.
type TypeDecl struct {
	Name    string      `yaml:"name" cbor:"name"`
	Typedef string      `yaml:"typedef,omitempty" cbor:"typedef,omitempty"`
	Fields  []FieldDecl `yaml:"fields,omitempty" cbor:"fields,omitempty"`
	Args    []string    `yaml:"args,omitempty" cbor:"args,omitempty"`
	Size    uint64      `yaml:"size,omitempty" cbor:"size,omitempty"`
}

// FieldDecl is one struct member.
type FieldDecl struct {
	Name   string `yaml:"name" cbor:"name"`
	Type   string `yaml:"type" cbor:"type"`
	Offset uint64 `yaml:"offset" cbor:"offset"`
}

// ValueDecl binds a name to a typed address.
type ValueDecl struct {
	Name    string `yaml:"name" cbor:"name"`
	Type    string `yaml:"type" cbor:"type"`
	Address uint64 `yaml:"address" cbor:"address"`
}

// FixtureDecl generates a canonical SmolStr or SmallVec layout.
type FixtureDecl struct {
	SmolStr  *string     `yaml:"smolstr,omitempty" cbor:"smolstr,omitempty"`
	SmallVec *VecFixture `yaml:"smallvec,omitempty" cbor:"smallvec,omitempty"`
	Name     string      `yaml:"name" cbor:"name"`
	Storage  string      `yaml:"storage,omitempty" cbor:"storage,omitempty"`
}

// VecFixture describes SmallVec<Element, Inline> holding Items.
type VecFixture struct {
	Element string   `yaml:"element" cbor:"element"`
	Items   []uint64 `yaml:"items" cbor:"items"`
	Inline  uint64   `yaml:"inline" cbor:"inline"`
}

// Load reads and decodes a scene file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load("read scene "+path, err)
	}
	s, err := Decode(data, FormatFor(path))
	if err != nil {
		return nil, err
	}
	s.dir = filepath.Dir(path)
	return s, nil
}

// Decode decodes a scene. Relative segment files resolve against the
// working directory; use Load to resolve them next to the scene file.
func Decode(data []byte, format Format) (*Scene, error) {
	var s Scene
	var err error
	switch format {
	case FormatCBOR:
		err = cbor.Unmarshal(data, &s)
	case FormatYAML:
		err = yaml.Unmarshal(data, &s)
	default:
		return nil, errors.Unsupported(errors.PhaseLoad, "scene format "+string(format))
	}
	if err != nil {
		return nil, errors.Load("decode "+string(format)+" scene", err)
	}
	return &s, nil
}

// Encode writes s in the given format.
func (s *Scene) Encode(format Format) ([]byte, error) {
	switch format {
	case FormatCBOR:
		return cbor.Marshal(s)
	case FormatYAML:
		return yaml.Marshal(s)
	default:
		return nil, errors.Unsupported(errors.PhaseLoad, "scene format "+string(format))
	}
}
