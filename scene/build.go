package scene

import (
	"encoding/hex"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/wippyai/nichefmt/errors"
	"github.com/wippyai/nichefmt/memory"
	"github.com/wippyai/nichefmt/tree"
)

// MaxSegmentSize bounds a zero-filled segment declared with size.
const MaxSegmentSize = 1 << 30

// Built is the result of Build.
type Built struct {
	Host  *tree.Host
	Image *memory.Image
}

// Build maps the segments, declares the types, binds the values and lays
// out the fixtures. Fixtures occupy the tree fixture regions, so segments
// must not overlap them.
func (s *Scene) Build() (*Built, error) {
	f := tree.NewFixture()
	f.Host.Define(tree.SmolStrType())

	for i, seg := range s.Segments {
		data, err := s.segmentData(seg)
		if err != nil {
			return nil, errors.Load(fmt.Sprintf("segment %d", i), err)
		}
		if err := f.Image.Map(seg.Base, data); err != nil {
			return nil, errors.Load(fmt.Sprintf("map segment %d", i), err)
		}
		Logger().Debug("segment mapped",
			zap.Int("index", i),
			zap.Uint64("base", seg.Base),
			zap.Int("size", len(data)))
	}

	r, err := newResolver(f.Host, s.Types)
	if err != nil {
		return nil, err
	}
	// declare everything up front so unused declarations are still checked
	for _, d := range s.Types {
		if _, err := r.resolve(d.Name); err != nil {
			return nil, err
		}
	}

	for _, v := range s.Values {
		if v.Name == "" {
			return nil, errors.InvalidData(errors.PhaseLoad, []string{"values"}, "value without a name")
		}
		t, err := r.resolve(v.Type)
		if err != nil {
			return nil, err
		}
		f.Host.Bind(v.Name, v.Address, t)
	}

	for _, fx := range s.Fixtures {
		if err := buildFixture(f, r, fx); err != nil {
			return nil, err
		}
	}

	return &Built{Host: f.Host, Image: f.Image}, nil
}

func buildFixture(f *tree.Fixture, r *resolver, fx FixtureDecl) error {
	path := []string{"fixtures", fx.Name}
	if fx.Name == "" {
		return errors.InvalidData(errors.PhaseLoad, []string{"fixtures"}, "fixture without a name")
	}

	switch {
	case fx.SmolStr != nil && fx.SmallVec != nil:
		return errors.InvalidData(errors.PhaseLoad, path, "fixture sets both smolstr and smallvec")

	case fx.SmolStr != nil:
		storage, err := tree.ParseStringStorage(fx.Storage)
		if err != nil {
			return errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "fixture "+fx.Name)
		}
		if _, err := f.SmolStr(fx.Name, *fx.SmolStr, storage); err != nil {
			return errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "fixture "+fx.Name)
		}
		return nil

	case fx.SmallVec != nil:
		elem, err := r.resolve(fx.SmallVec.Element)
		if err != nil {
			return err
		}
		if elem.ByteSize() == 0 || elem.ByteSize() > 8 {
			return errors.InvalidData(errors.PhaseLoad, path,
				fmt.Sprintf("element type %s must be an integer of 1 to 8 bytes", elem.Name()))
		}
		if _, err := f.SmallVec(fx.Name, elem, fx.SmallVec.Inline, fx.SmallVec.Items); err != nil {
			return errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "fixture "+fx.Name)
		}
		return nil

	default:
		return errors.InvalidData(errors.PhaseLoad, path, "fixture sets neither smolstr nor smallvec")
	}
}

func (s *Scene) segmentData(seg Segment) ([]byte, error) {
	sources := 0
	for _, set := range []bool{seg.File != "", seg.Hex != "", seg.Text != "", seg.Size != 0} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return nil, fmt.Errorf("segment at 0x%x needs exactly one of file, hex, text or size", seg.Base)
	}

	var data []byte
	switch {
	case seg.File != "":
		path := seg.File
		if !filepath.IsAbs(path) && s.dir != "" {
			path = filepath.Join(s.dir, path)
		}
		return memory.LoadSegment(path, seg.Checksum)
	case seg.Hex != "":
		b, err := hex.DecodeString(seg.Hex)
		if err != nil {
			return nil, err
		}
		data = b
	case seg.Text != "":
		data = []byte(seg.Text)
	default:
		if seg.Size > MaxSegmentSize {
			return nil, fmt.Errorf("segment at 0x%x: size %d exceeds the %d byte limit", seg.Base, seg.Size, MaxSegmentSize)
		}
		data = make([]byte, seg.Size)
	}

	if err := memory.VerifyChecksum(data, seg.Checksum); err != nil {
		return nil, err
	}
	return data, nil
}
