package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/inventory/migrations"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add reorder columns", "add_reorder_columns"},
		{"Add-Reorder-Columns", "add_reorder_columns"},
		{"ADD__ALERT__INDEX", "add_alert_index"},
		{"  spaces  ", "spaces"},
		{"drop!@#index", "dropindex"},
		{"_leading and trailing_", "leading_and_trailing"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	t.Run("first migration in an empty directory is 000001", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "migrations")

		mf, err := CreateMigration(dir, "create locations", "Location registry table")
		require.NoError(t, err)
		assert.Equal(t, "000001", mf.Version)
		assert.Equal(t, filepath.Join(dir, "000001_create_locations.up.sql"), mf.UpPath)
		assert.Equal(t, filepath.Join(dir, "000001_create_locations.down.sql"), mf.DownPath)

		up, err := os.ReadFile(mf.UpPath)
		require.NoError(t, err)
		assert.Contains(t, string(up), "000001_create_locations (up)")
		assert.Contains(t, string(up), "Location registry table")

		down, err := os.ReadFile(mf.DownPath)
		require.NoError(t, err)
		assert.Contains(t, string(down), "Reverts 000001_create_locations")
	})

	t.Run("numbers after the highest existing version", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{"000001_a.up.sql", "000001_a.down.sql", "000007_b.up.sql", "000007_b.down.sql"} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
		}

		mf, err := CreateMigration(dir, "add alert index", "")
		require.NoError(t, err)
		assert.Equal(t, "000008", mf.Version)
	})

	t.Run("rejects a name without usable characters", func(t *testing.T) {
		_, err := CreateMigration(t.TempDir(), "!!!", "")
		require.Error(t, err)
	})
}

func TestListMigrations(t *testing.T) {
	t.Run("missing directory is empty", func(t *testing.T) {
		names, err := ListMigrations(filepath.Join(t.TempDir(), "absent"))
		require.NoError(t, err)
		assert.Empty(t, names)
	})

	t.Run("lists up files in version order", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{"000002_b.up.sql", "000002_b.down.sql", "000001_a.up.sql", "000001_a.down.sql", "README.md"} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
		}
		require.NoError(t, os.Mkdir(filepath.Join(dir, "000003_dir.up.sql"), 0o755))

		names, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"000001_a", "000002_b"}, names)
	})
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := migrations.FS.ReadDir(".")
	require.NoError(t, err)

	files := make(map[string]bool, len(entries))
	for _, e := range entries {
		files[e.Name()] = true
	}
	require.True(t, files["000001_create_inventory_schema.up.sql"])

	for name := range files {
		if base, ok := strings.CutSuffix(name, ".up.sql"); ok {
			assert.True(t, files[base+".down.sql"], "missing down migration for %s", base)
		}
	}
}
