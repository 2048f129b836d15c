package formatter

import (
	"fmt"
	"regexp"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/nichefmt"
	"github.com/wippyai/nichefmt/errors"
	"github.com/wippyai/nichefmt/present"
)

// Match selects how a Specifier compares type names.
type Match int

const (
	MatchExact Match = iota
	MatchRegex
)

func (m Match) String() string {
	if m == MatchRegex {
		return "regex"
	}
	return "exact"
}

// Options are per-entry flags.
type Options uint8

const (
	// Cascade applies the entry to typedefs of the matched type.
	Cascade Options = 1 << iota
)

// Specifier names the types an entry applies to.
type Specifier struct {
	re      *regexp.Regexp
	Pattern string
	Match   Match
}

// Exact matches one type name.
func Exact(name string) Specifier {
	return Specifier{Pattern: name, Match: MatchExact}
}

// Regex matches every type name the pattern matches.
func Regex(pattern string) (Specifier, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Specifier{}, errors.New(errors.PhaseRegister, errors.KindRegistration).
			Detail("invalid type name pattern %q", pattern).
			Cause(err).
			Build()
	}
	return Specifier{Pattern: pattern, Match: MatchRegex, re: re}, nil
}

// MustRegex is Regex that panics on an invalid pattern.
func MustRegex(pattern string) Specifier {
	s, err := Regex(pattern)
	if err != nil {
		panic(err)
	}
	return s
}

// Matches reports whether name is covered by s.
func (s Specifier) Matches(name string) bool {
	if s.Match == MatchRegex {
		return s.re != nil && s.re.MatchString(name)
	}
	return s.Pattern == name
}

func (s Specifier) String() string {
	return s.Match.String() + ":" + s.Pattern
}

// SummaryFunc renders the one-line summary of a value.
type SummaryFunc func(v nichefmt.Value) string

// SyntheticFunc creates a fresh provider for one value.
type SyntheticFunc func() present.Provider

// Summary is a registered summary provider.
type Summary struct {
	Func    SummaryFunc
	Options Options
}

// Synthetic is a registered synthetic-children provider.
type Synthetic struct {
	New     SyntheticFunc
	Options Options
}

type summaryEntry struct {
	spec Specifier
	Summary
}

type syntheticEntry struct {
	spec Specifier
	Synthetic
}

// Category is a named, independently enabled group of entries.
type Category struct {
	name       string
	summaries  []summaryEntry
	synthetics []syntheticEntry
	mu         sync.RWMutex
	enabled    bool
}

// Name returns the category name.
func (c *Category) Name() string { return c.name }

// Enabled reports whether lookups consider this category.
func (c *Category) Enabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enabled
}

// SetEnabled turns the category on or off.
func (c *Category) SetEnabled(on bool) {
	c.mu.Lock()
	c.enabled = on
	c.mu.Unlock()
}

// AddSummary registers a summary provider. A later entry for the same
// specifier replaces the earlier one.
func (c *Category) AddSummary(spec Specifier, s Summary) error {
	if s.Func == nil {
		return errors.Registration(c.name, spec.Pattern, fmt.Errorf("nil summary function"))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, e := range c.summaries {
		if e.spec.Match == spec.Match && e.spec.Pattern == spec.Pattern {
			c.summaries[i].Summary = s
			return nil
		}
	}
	c.summaries = append(c.summaries, summaryEntry{spec: spec, Summary: s})
	return nil
}

// AddSynthetic registers a synthetic-children provider. A later entry for
// the same specifier replaces the earlier one.
func (c *Category) AddSynthetic(spec Specifier, s Synthetic) error {
	if s.New == nil {
		return errors.Registration(c.name, spec.Pattern, fmt.Errorf("nil provider constructor"))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, e := range c.synthetics {
		if e.spec.Match == spec.Match && e.spec.Pattern == spec.Pattern {
			c.synthetics[i].Synthetic = s
			return nil
		}
	}
	c.synthetics = append(c.synthetics, syntheticEntry{spec: spec, Synthetic: s})
	return nil
}

// Specifiers lists the registered summary and synthetic specifiers.
func (c *Category) Specifiers() (summaries, synthetics []Specifier) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.summaries {
		summaries = append(summaries, e.spec)
	}
	for _, e := range c.synthetics {
		synthetics = append(synthetics, e.spec)
	}
	return summaries, synthetics
}

func (c *Category) findSummary(name string, cascaded bool) (Summary, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.summaries {
		if cascaded && e.Options&Cascade == 0 {
			continue
		}
		if e.spec.Matches(name) {
			return e.Summary, true
		}
	}
	return Summary{}, false
}

func (c *Category) findSynthetic(name string, cascaded bool) (Synthetic, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.synthetics {
		if cascaded && e.Options&Cascade == 0 {
			continue
		}
		if e.spec.Matches(name) {
			return e.Synthetic, true
		}
	}
	return Synthetic{}, false
}

// Registry owns the categories.
type Registry struct {
	byName map[string]*Category
	order  []*Category
	mu     sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Category)}
}

// Category returns the named category.
func (r *Registry) Category(name string) (*Category, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byName[name]
	return c, ok
}

// CreateCategory creates a disabled category, or returns the existing one.
func (r *Registry) CreateCategory(name string) *Category {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.byName[name]; ok {
		return c
	}
	c := &Category{name: name}
	r.byName[name] = c
	r.order = append(r.order, c)
	Logger().Debug("category created", zap.String("category", name))
	return c
}

// Categories returns the categories in creation order.
func (r *Registry) Categories() []*Category {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Category, len(r.order))
	copy(out, r.order)
	return out
}

// FindSummary returns the summary provider for t.
func (r *Registry) FindSummary(t nichefmt.Type) (Summary, bool) {
	var found Summary
	ok := r.lookup(t, func(c *Category, name string, cascaded bool) bool {
		var hit bool
		found, hit = c.findSummary(name, cascaded)
		return hit
	})
	return found, ok
}

// FindSynthetic returns the synthetic-children provider for t.
func (r *Registry) FindSynthetic(t nichefmt.Type) (Synthetic, bool) {
	var found Synthetic
	ok := r.lookup(t, func(c *Category, name string, cascaded bool) bool {
		var hit bool
		found, hit = c.findSynthetic(name, cascaded)
		return hit
	})
	return found, ok
}

// lookup tries t's own name first, then its canonical name for cascading entries.
func (r *Registry) lookup(t nichefmt.Type, try func(c *Category, name string, cascaded bool) bool) bool {
	if t == nil {
		return false
	}
	names := []string{t.Name()}
	if canon := t.Canonical(); canon != nil && canon.Name() != t.Name() {
		names = append(names, canon.Name())
	}

	for _, c := range r.Categories() {
		if !c.Enabled() {
			continue
		}
		for i, name := range names {
			if try(c, name, i > 0) {
				return true
			}
		}
	}
	return false
}

// Summarize renders v with its registered summary provider.
func (r *Registry) Summarize(v nichefmt.Value) (string, bool) {
	if v == nil {
		return "", false
	}
	s, ok := r.FindSummary(v.Type())
	if !ok {
		return "", false
	}
	return s.Func(v), true
}

// Provider creates and updates the synthetic provider for v.
func (r *Registry) Provider(v nichefmt.Value) (present.Provider, bool) {
	if v == nil {
		return nil, false
	}
	s, ok := r.FindSynthetic(v.Type())
	if !ok {
		return nil, false
	}
	p := s.New()
	p.Update(v)
	return p, true
}
