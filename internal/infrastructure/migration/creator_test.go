package migration

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add invoice index", "add_invoice_index"},
		{"Add-Ledger-Kind", "add_ledger_kind"},
		{"ADD_SUMMARY_TABLE", "add_summary_table"},
		{"add__payments", "add_payments"},
		{"Sequence 2", "sequence_2"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "sql")

	mf, err := CreateMigration(dir, "add invoice due date", "Invoices get a due date")
	require.NoError(t, err)
	assert.Len(t, mf.Version, 14)

	upBase := strings.TrimSuffix(filepath.Base(mf.UpPath), ".up.sql")
	downBase := strings.TrimSuffix(filepath.Base(mf.DownPath), ".down.sql")
	assert.Equal(t, upBase, downBase)
	assert.True(t, strings.HasSuffix(upBase, "_add_invoice_due_date"))

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "Invoices get a due date")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "(Rollback)")

	listed, err := ListMigrations(os.DirFS(dir))
	require.NoError(t, err)
	assert.Equal(t, []string{upBase}, listed)
}

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"20261016090100_b.up.sql":   {Data: []byte("--")},
		"20261016090100_b.down.sql": {Data: []byte("--")},
		"20261016090000_a.up.sql":   {Data: []byte("--")},
		"20261016090000_a.down.sql": {Data: []byte("--")},
		"README.md":                 {Data: []byte("x")},
		"dir.up.sql/inner.sql":      {Data: []byte("x")},
	}

	migrations, err := ListMigrations(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"20261016090000_a", "20261016090100_b"}, migrations)

	migrations, err = ListMigrations(os.DirFS(filepath.Join(t.TempDir(), "missing")))
	require.NoError(t, err)
	assert.Empty(t, migrations)
}

func TestEmbeddedSchema_IsPaired(t *testing.T) {
	schema := Schema()
	migrations, err := ListMigrations(schema)
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	for _, base := range migrations {
		_, err := fs.Stat(schema, base+".down.sql")
		assert.NoError(t, err, "missing down migration for %s", base)
	}
}
