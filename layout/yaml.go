package layout

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML accepts either a sequence of member names or a single
// dotted string such as "$variant$24.value.__0".
func (p *Path) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		var s string
		if err := n.Decode(&s); err != nil {
			return err
		}
		if s == "" {
			*p = nil
			return nil
		}
		*p = strings.Split(s, ".")
		return nil
	case yaml.SequenceNode:
		var parts []string
		if err := n.Decode(&parts); err != nil {
			return err
		}
		*p = parts
		return nil
	default:
		return fmt.Errorf("line %d: field path must be a string or a list of names", n.Line)
	}
}

// MarshalYAML writes the dotted form.
func (p Path) MarshalYAML() (any, error) {
	return p.String(), nil
}
