package contract

import (
	"fmt"
	"os"
	"sort"

	"github.com/pulseboard/pulseboard/schema"
	"gopkg.in/yaml.v3"
)

// DashboardConfig declares how the aggregated table is displayed: column
// ordering, display aliases, hidden keys, and squad-to-repo groupings.
// Loaded once per run and treated as immutable for the duration of a render.
type DashboardConfig struct {
	CheckOrder []string            `yaml:"check_order"`
	KeyAliases map[string]string   `yaml:"key_aliases"`
	HiddenKeys []string            `yaml:"hidden_keys"`
	Squads     map[string][]string `yaml:"squads"`
}

// LoadDashboardConfig reads and validates the dashboard configuration YAML.
// Any failure is a ConfigError, fatal to the invoking run.
func LoadDashboardConfig(path string) (*DashboardConfig, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &schema.ConfigError{Path: path, Err: err}
	}

	var cfg DashboardConfig
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, &schema.ConfigError{Path: path, Err: err}
	}

	for squad, repos := range cfg.Squads {
		if squad == "" {
			return nil, &schema.ConfigError{Path: path, Err: fmt.Errorf("squads contains an empty squad name")}
		}
		if len(repos) == 0 {
			return nil, &schema.ConfigError{Path: path, Err: fmt.Errorf("squad %q lists no repositories", squad)}
		}
	}

	return &cfg, nil
}

// OrderedColumns arranges the superset of metric keys for display:
// check_order keys first (those actually present in the data), then the
// remaining keys sorted, minus anything hidden.
func (c *DashboardConfig) OrderedColumns(superset []string) []string {
	present := make(map[string]struct{}, len(superset))
	for _, key := range superset {
		present[key] = struct{}{}
	}
	hidden := make(map[string]struct{}, len(c.HiddenKeys))
	for _, key := range c.HiddenKeys {
		hidden[key] = struct{}{}
	}

	var ordered []string
	taken := make(map[string]struct{})
	for _, key := range c.CheckOrder {
		if _, ok := present[key]; !ok {
			continue
		}
		if _, ok := hidden[key]; ok {
			continue
		}
		if _, ok := taken[key]; ok {
			continue
		}
		ordered = append(ordered, key)
		taken[key] = struct{}{}
	}

	var rest []string
	for _, key := range superset {
		if _, ok := taken[key]; ok {
			continue
		}
		if _, ok := hidden[key]; ok {
			continue
		}
		rest = append(rest, key)
	}
	sort.Strings(rest)

	return append(ordered, rest...)
}

// AliasFor maps a metric key to its display alias, falling back to the key.
func (c *DashboardConfig) AliasFor(key string) string {
	if alias, ok := c.KeyAliases[key]; ok {
		return alias
	}
	return key
}

// SquadNames returns the configured squad names, sorted.
func (c *DashboardConfig) SquadNames() []string {
	names := make([]string, 0, len(c.Squads))
	for name := range c.Squads {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveSquads expands squad names into the set of repositories they cover.
// An empty filter returns nil, meaning "show all". A name with no
// configuration behind it is a FilterError.
func (c *DashboardConfig) ResolveSquads(names []string) (map[string]struct{}, error) {
	if len(names) == 0 {
		return nil, nil
	}
	repos := make(map[string]struct{})
	for _, name := range names {
		members, ok := c.Squads[name]
		if !ok {
			return nil, &schema.FilterError{Squad: name}
		}
		for _, repo := range members {
			repos[repo] = struct{}{}
		}
	}
	return repos, nil
}

// SquadsOf returns the squads a repository belongs to, sorted. Used by the
// web view to annotate rows.
func (c *DashboardConfig) SquadsOf(repo string) []string {
	var squads []string
	for name, members := range c.Squads {
		for _, member := range members {
			if member == repo {
				squads = append(squads, name)
				break
			}
		}
	}
	sort.Strings(squads)
	return squads
}
