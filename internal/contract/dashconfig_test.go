package contract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pulseboard/pulseboard/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dashboardYAML = `check_order:
  - open_source_capable
  - docs.readme
key_aliases:
  docs.readme: README
hidden_keys:
  - internal.scratch
squads:
  arch:
    - edx-platform
    - course-discovery
  platform:
    - credentials
`

func writeDashboardConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dashboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDashboardConfig(t *testing.T) {
	cfg, err := LoadDashboardConfig(writeDashboardConfig(t, dashboardYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"open_source_capable", "docs.readme"}, cfg.CheckOrder)
	assert.Equal(t, "README", cfg.KeyAliases["docs.readme"])
	assert.Equal(t, []string{"arch", "platform"}, cfg.SquadNames())
}

func TestLoadDashboardConfigErrors(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"bad yaml", "squads: [unclosed"},
		{"empty squad name", "squads:\n  \"\":\n    - repo-a\n"},
		{"squad without members", "squads:\n  arch: []\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadDashboardConfig(writeDashboardConfig(t, tc.content))
			var cerr *schema.ConfigError
			assert.ErrorAs(t, err, &cerr)
		})
	}

	_, err := LoadDashboardConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	var cerr *schema.ConfigError
	assert.ErrorAs(t, err, &cerr)
}

func TestOrderedColumns(t *testing.T) {
	cfg := &DashboardConfig{
		CheckOrder: []string{"b", "absent-from-data", "a", "b"},
		HiddenKeys: []string{"hidden"},
	}
	superset := []string{"a", "b", "c", "hidden", "z"}

	// check_order keys present in the data lead, duplicates collapse,
	// hidden keys drop, and the remainder is sorted.
	assert.Equal(t, []string{"b", "a", "c", "z"}, cfg.OrderedColumns(superset))
}

func TestOrderedColumnsNoConfig(t *testing.T) {
	cfg := &DashboardConfig{}
	assert.Equal(t, []string{"a", "b"}, cfg.OrderedColumns([]string{"b", "a"}))
}

func TestAliasFor(t *testing.T) {
	cfg := &DashboardConfig{KeyAliases: map[string]string{"docs.readme": "README"}}
	assert.Equal(t, "README", cfg.AliasFor("docs.readme"))
	assert.Equal(t, "ci.passing", cfg.AliasFor("ci.passing"))
}

func TestResolveSquads(t *testing.T) {
	cfg, err := LoadDashboardConfig(writeDashboardConfig(t, dashboardYAML))
	require.NoError(t, err)

	// Empty filter means no restriction.
	repos, err := cfg.ResolveSquads(nil)
	require.NoError(t, err)
	assert.Nil(t, repos)

	repos, err = cfg.ResolveSquads([]string{"arch", "platform"})
	require.NoError(t, err)
	assert.Len(t, repos, 3)
	assert.Contains(t, repos, "edx-platform")
	assert.Contains(t, repos, "credentials")

	_, err = cfg.ResolveSquads([]string{"arch", "nonexistent"})
	var ferr *schema.FilterError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "nonexistent", ferr.Squad)
}

func TestSquadsOf(t *testing.T) {
	cfg := &DashboardConfig{Squads: map[string][]string{
		"arch":     {"edx-platform"},
		"platform": {"edx-platform", "credentials"},
	}}
	assert.Equal(t, []string{"arch", "platform"}, cfg.SquadsOf("edx-platform"))
	assert.Equal(t, []string{"platform"}, cfg.SquadsOf("credentials"))
	assert.Empty(t, cfg.SquadsOf("unknown"))
}
