package formatter

import (
	"go.uber.org/zap"

	"github.com/wippyai/nichefmt"
	"github.com/wippyai/nichefmt/present"
	"github.com/wippyai/nichefmt/smallvec"
	"github.com/wippyai/nichefmt/smolstr"
)

// CategoryName is the category the Rust formatters live in.
const CategoryName = "rust"

type installConfig struct {
	strings *smolstr.Decoder
	vectors *smallvec.Decoder
}

// InstallOption configures Install.
type InstallOption func(*installConfig)

// WithStringDecoder sets the decoder behind the SmolStr entries.
func WithStringDecoder(d *smolstr.Decoder) InstallOption {
	return func(c *installConfig) {
		c.strings = d
	}
}

// WithVectorDecoder sets the decoder behind the SmallVec entries.
func WithVectorDecoder(d *smallvec.Decoder) InstallOption {
	return func(c *installConfig) {
		c.vectors = d
	}
}

// Install registers the SmolStr and SmallVec formatters in the rust
// category of reg. A missing category is created and enabled; an existing
// one keeps its enabled state.
func Install(reg *Registry, opts ...InstallOption) error {
	cfg := installConfig{strings: smolstr.NewDecoder(), vectors: smallvec.NewDecoder()}
	for _, opt := range opts {
		opt(&cfg)
	}

	cat, ok := reg.Category(CategoryName)
	if !ok {
		cat = reg.CreateCategory(CategoryName)
		cat.SetEnabled(true)
	}

	strSpec := Exact(smolstr.TypeName)
	vecSpec, err := Regex(smallvec.TypeNamePattern)
	if err != nil {
		return err
	}

	strDec, vecDec := cfg.strings, cfg.vectors
	if strDec == nil {
		strDec = smolstr.NewDecoder()
	}
	if vecDec == nil {
		vecDec = smallvec.NewDecoder()
	}

	if err := cat.AddSummary(strSpec, Summary{
		Func:    func(v nichefmt.Value) string { return present.SummarizeString(strDec.Decode(v)) },
		Options: Cascade,
	}); err != nil {
		return err
	}
	if err := cat.AddSynthetic(strSpec, Synthetic{
		New:     func() present.Provider { return present.NewStringProvider(strDec) },
		Options: Cascade,
	}); err != nil {
		return err
	}
	if err := cat.AddSummary(vecSpec, Summary{
		Func:    func(v nichefmt.Value) string { return present.SummarizeVector(vecDec.Decode(v)) },
		Options: Cascade,
	}); err != nil {
		return err
	}
	if err := cat.AddSynthetic(vecSpec, Synthetic{
		New:     func() present.Provider { return present.NewVectorProvider(vecDec) },
		Options: Cascade,
	}); err != nil {
		return err
	}

	Logger().Debug("formatters installed",
		zap.String("category", CategoryName),
		zap.Stringer("string", strSpec),
		zap.Stringer("vector", vecSpec))
	return nil
}
