// Package registry holds the static list of monitored protocols.
package registry

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed protocols.yaml
var protocolsYAML []byte

// Protocol describes one monitored DeFi protocol. Identity is the slug;
// entries are never mutated at runtime.
type Protocol struct {
	Name        string `yaml:"name" json:"name"`
	Slug        string `yaml:"slug" json:"slug"`
	Address     string `yaml:"address" json:"address"`
	TokenSymbol string `yaml:"token_symbol" json:"tokenSymbol"`
	Category    string `yaml:"category" json:"category"`
	RiskLevel   string `yaml:"risk_level" json:"riskLevel"`
}

type Registry struct {
	protocols []Protocol
	bySlug    map[string]Protocol
}

// Load parses the embedded protocol list.
func Load() (*Registry, error) {
	var file struct {
		Protocols []Protocol `yaml:"protocols"`
	}
	if err := yaml.Unmarshal(protocolsYAML, &file); err != nil {
		return nil, fmt.Errorf("parse protocols.yaml: %w", err)
	}
	if len(file.Protocols) == 0 {
		return nil, fmt.Errorf("protocols.yaml contains no protocols")
	}

	bySlug := make(map[string]Protocol, len(file.Protocols))
	for _, p := range file.Protocols {
		if p.Slug == "" {
			return nil, fmt.Errorf("protocol %q has no slug", p.Name)
		}
		if _, dup := bySlug[p.Slug]; dup {
			return nil, fmt.Errorf("duplicate protocol slug %q", p.Slug)
		}
		bySlug[p.Slug] = p
	}

	return &Registry{protocols: file.Protocols, bySlug: bySlug}, nil
}

// List returns all registered protocols in file order.
func (r *Registry) List() []Protocol {
	out := make([]Protocol, len(r.protocols))
	copy(out, r.protocols)
	return out
}

// BySlug looks up a protocol by its slug.
func (r *Registry) BySlug(slug string) (Protocol, bool) {
	p, ok := r.bySlug[slug]
	return p, ok
}
