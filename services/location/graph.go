package location

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// MaxTier is the largest distance tier a suburb pair can carry.
const MaxTier = 4

// Entry is one suburb-pair distance within a town.
type Entry struct {
	Town    string `mapstructure:"town"`
	SuburbA string `mapstructure:"a"`
	SuburbB string `mapstructure:"b"`
	Tier    int    `mapstructure:"tier"`
}

// Graph is a static map of (town, suburbA, suburbB) to a distance tier.
// It is read-only after load; an unknown pair is reported as not found, never
// defaulted to some reachable tier.
type Graph struct {
	tiers map[string]int
}

// NewGraph builds a graph from entries. Pairs are stored symmetrically.
func NewGraph(entries []Entry) *Graph {
	g := &Graph{tiers: make(map[string]int, len(entries))}
	for _, e := range entries {
		if e.Tier < 0 || e.Tier > MaxTier {
			continue
		}
		g.tiers[pairKey(e.Town, e.SuburbA, e.SuburbB)] = e.Tier
	}
	return g
}

// LoadGraph reads the distance graph from a yaml file of the form:
//
//	entries:
//	  - { town: windhoek, a: olympia, b: klein windhoek, tier: 1 }
func LoadGraph(path string) (*Graph, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read location graph file %s: %w", path, err)
	}
	var entries []Entry
	if err := v.UnmarshalKey("entries", &entries); err != nil {
		return nil, fmt.Errorf("failed to parse location graph file %s: %w", path, err)
	}
	return NewGraph(entries), nil
}

// Tier returns the distance tier between two suburbs of a town. The same
// suburb is always tier 0, whether or not the file lists it. The second
// return is false when the pair is unknown.
func (g *Graph) Tier(town, suburbA, suburbB string) (int, bool) {
	if strings.EqualFold(strings.TrimSpace(suburbA), strings.TrimSpace(suburbB)) {
		return 0, true
	}
	tier, ok := g.tiers[pairKey(town, suburbA, suburbB)]
	return tier, ok
}

// pairKey normalizes the suburb pair so lookups are order-independent.
func pairKey(town, a, b string) string {
	town = normalize(town)
	a, b = normalize(a), normalize(b)
	if b < a {
		a, b = b, a
	}
	return town + "|" + a + "|" + b
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
