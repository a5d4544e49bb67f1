package migrate

import (
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	v, err := parseVersion("0001_create_presets.sql")
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	_, err = parseVersion("create.sql")
	assert.Error(t, err)
	_, err = parseVersion("abc_create.sql")
	assert.Error(t, err)
}

func TestEmbeddedMigrationsAreVersioned(t *testing.T) {
	files, err := fs.Glob(migrationsFS, "sql/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	seen := map[int]bool{}
	for _, f := range files {
		v, err := parseVersion(f[len("sql/"):])
		require.NoError(t, err, f)
		assert.False(t, seen[v], "duplicate version %d", v)
		seen[v] = true
	}
}

func TestPending_SkipsAppliedAndOrdersByVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/0010_tags.sql":    {Data: []byte("ALTER TABLE timer_presets ADD x INT;")},
		"sql/0002_runs.sql":    {Data: []byte("CREATE TABLE runs (id INT);")},
		"sql/0001_presets.sql": {Data: []byte("CREATE TABLE timer_presets (name TEXT);")},
	}

	got, err := pending(fsys, map[int]bool{1: true})

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].version)
	assert.Equal(t, "0002_runs.sql", got[0].name)
	assert.Equal(t, "CREATE TABLE runs (id INT);", got[0].body)
	assert.Equal(t, 10, got[1].version)
}

func TestPending_RejectsDuplicateAndUnnumberedFiles(t *testing.T) {
	_, err := pending(fstest.MapFS{
		"sql/0001_a.sql": {Data: []byte("SELECT 1;")},
		"sql/1_b.sql":    {Data: []byte("SELECT 1;")},
	}, nil)
	assert.ErrorContains(t, err, "share version 1")

	_, err = pending(fstest.MapFS{"sql/presets.sql": {Data: []byte("SELECT 1;")}}, nil)
	assert.ErrorContains(t, err, "invalid migration filename")
}

func TestPending_EmbeddedSchemaFromScratch(t *testing.T) {
	got, err := pending(migrationsFS, map[int]bool{})
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, 1, got[0].version)
	assert.Contains(t, got[0].body, "timer_presets")
}
