package manifest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lessonforge/internal/catalog"
)

const sampleManifest = `
version: 1
lessons:
  max_id: 20
  content_dir: content/lessons
loader:
  ttl: 10m
  sweep_interval: 5m
  batch_size: 5
  batch_pause: 100ms
  medium_delay: 2s
  low_delay: 5s
groups:
  - name: basics
    range: [1, 10]
    priority: high
  - name: advanced
    range: [11, 20]
    priority: low
registry:
  - range: [1, 10]
    names:
      1: lesson_01
      2: lesson_02
  - range: [11, 20]
    names:
      11: advanced/lesson_11
`

func writeManifest(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lessonforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad(t *testing.T) {
	m, err := Load(writeManifest(t, sampleManifest))
	require.NoError(t, err)

	assert.Equal(t, 20, m.Lessons.MaxID)
	assert.Equal(t, "content/lessons", m.Lessons.ContentDir)

	wantGroups := []GroupEntry{
		{Name: "basics", Range: []int{1, 10}, Priority: "high"},
		{Name: "advanced", Range: []int{11, 20}, Priority: "low"},
	}
	if diff := cmp.Diff(wantGroups, m.Groups); diff != "" {
		t.Errorf("groups mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing max_id", "groups: []\n"},
		{"bad yaml", ":\n  - ["},
		{"inverted group range", `
lessons: {max_id: 20}
groups:
  - {name: a, range: [10, 1], priority: high}
`},
		{"duplicate group name", `
lessons: {max_id: 20}
groups:
  - {name: a, range: [1, 5], priority: high}
  - {name: a, range: [6, 9], priority: low}
`},
		{"bad priority", `
lessons: {max_id: 20}
groups:
  - {name: a, range: [1, 5], priority: urgent}
`},
		{"registry range not a pair", `
lessons: {max_id: 20}
registry:
  - {range: [1], names: {1: x}}
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeManifest(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestManifest_Catalog(t *testing.T) {
	m, err := Load(writeManifest(t, sampleManifest))
	require.NoError(t, err)

	cat := m.Catalog()
	assert.Equal(t, "basics", cat.GroupOf(1).Name)
	assert.Equal(t, catalog.PriorityHigh, cat.GroupOf(1).Priority)
	assert.Equal(t, "advanced", cat.GroupOf(15).Name)
	assert.Equal(t, "extras", cat.GroupOf(999).Name, "unclaimed ids use the fallback group")
}

func TestManifest_Registry(t *testing.T) {
	m, err := Load(writeManifest(t, sampleManifest))
	require.NoError(t, err)

	reg := m.Registry()
	d, err := reg.Resolve(11)
	require.NoError(t, err)
	assert.Equal(t, "advanced/lesson_11", d.Name)
	assert.Equal(t, 3, reg.Len())
}

func TestManifest_ServiceConfig(t *testing.T) {
	m, err := Load(writeManifest(t, sampleManifest))
	require.NoError(t, err)

	cfg, err := m.ServiceConfig()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, cfg.TTL)
	assert.Equal(t, 5*time.Minute, cfg.SweepInterval)
	assert.Equal(t, 5, cfg.BatchSize)
	assert.Equal(t, 100*time.Millisecond, cfg.BatchPause)
	assert.Equal(t, 20, cfg.MaxID)
}

func TestManifest_ServiceConfig_Defaults(t *testing.T) {
	m, err := Load(writeManifest(t, "lessons: {max_id: 120}\n"))
	require.NoError(t, err)

	cfg, err := m.ServiceConfig()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, cfg.TTL)
	assert.Equal(t, 5, cfg.BatchSize)
	assert.Equal(t, 120, cfg.MaxID)
}

func TestManifest_ServiceConfig_BadDuration(t *testing.T) {
	m, err := Load(writeManifest(t, `
lessons: {max_id: 20}
loader: {ttl: soon}
`))
	require.NoError(t, err)

	_, err = m.ServiceConfig()
	assert.Error(t, err)
}

func TestManifest_Validate(t *testing.T) {
	m, err := Load(writeManifest(t, `
lessons: {max_id: 20}
groups:
  - {name: a, range: [1, 15], priority: high}
  - {name: b, range: [10, 25], priority: low}
registry:
  - range: [1, 10]
    names:
      1: x
      15: out_of_range
`))
	require.NoError(t, err)

	warnings := m.Validate()
	assert.Len(t, warnings, 3) // b exceeds bounds, a/b overlap, name outside table range
}

func TestDefault(t *testing.T) {
	m := Default()
	require.NoError(t, m.check())
	assert.Empty(t, m.Validate())
	assert.Equal(t, 120, m.Lessons.MaxID)
	assert.Equal(t, 120, m.Registry().Len(), "every lesson id is named")

	// The whole id space is claimed by the declared groups.
	cat := m.Catalog()
	for id := 1; id <= 120; id++ {
		if cat.GroupOf(id).Name == "extras" {
			t.Fatalf("lesson %d falls through to the fallback group", id)
		}
	}
}
