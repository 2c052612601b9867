package tiers

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Descriptor derives tiers from a node attribute.
type Descriptor struct {
	// Group is the attribute path whose value names a node's tier.
	Group string `json:"group" yaml:"group" toml:"group"`
	// Rank lists group values in tier order. Every listed group must exist.
	Rank []string `json:"rank,omitempty" yaml:"rank,omitempty" toml:"rank,omitempty"`
	// OrderNodesBy is the attribute path of a within-tier ordering key.
	OrderNodesBy string `json:"order_nodes_by,omitempty" yaml:"order_nodes_by,omitempty" toml:"order_nodes_by,omitempty"`
}

// Spec is a tier configuration: either an explicit array of tiers or a
// descriptor. The zero value means no tiers.
type Spec struct {
	Explicit   [][]string
	Descriptor *Descriptor
}

// Explicit returns a Spec with fixed tiers.
func Explicit(tiers ...[]string) Spec { return Spec{Explicit: tiers} }

// ByGroup returns a Spec that groups nodes by the value at path.
func ByGroup(path string, rank ...string) Spec {
	return Spec{Descriptor: &Descriptor{Group: path, Rank: rank}}
}

// IsZero reports whether no tiers are configured.
func (s Spec) IsZero() bool { return s.Explicit == nil && s.Descriptor == nil }

// OrderPath returns the within-tier ordering path, if any.
func (s Spec) OrderPath() string {
	if s.Descriptor == nil {
		return ""
	}
	return s.Descriptor.OrderNodesBy
}

// MarshalJSON writes the array or descriptor form; the zero Spec is null.
func (s Spec) MarshalJSON() ([]byte, error) {
	switch {
	case s.Descriptor != nil:
		return json.Marshal(s.Descriptor)
	case s.Explicit != nil:
		return json.Marshal(s.Explicit)
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts null, an array of string arrays, or a descriptor
// object.
func (s *Spec) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*s = Spec{}
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		return nil
	case data[0] == '[':
		return json.Unmarshal(data, &s.Explicit)
	case data[0] == '{':
		var d Descriptor
		if err := json.Unmarshal(data, &d); err != nil {
			return err
		}
		if d.Group == "" {
			return fmt.Errorf("tiers descriptor: group is required")
		}
		s.Descriptor = &d
		return nil
	}
	return fmt.Errorf("tiers: expected array or object, got %s", data)
}
