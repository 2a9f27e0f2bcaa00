package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(MigrationFiles, "*.up.sql")
	require.NoError(t, err)
	require.NotEmpty(t, ups)

	for _, up := range ups {
		down := strings.TrimSuffix(up, ".up.sql") + ".down.sql"
		_, err := fs.Stat(MigrationFiles, down)
		require.NoError(t, err, "missing down migration for %s", up)
	}
}

func TestInitialSchemaHasOverlapConstraint(t *testing.T) {
	body, err := fs.ReadFile(MigrationFiles, "001_init.up.sql")
	require.NoError(t, err)

	sql := string(body)
	require.Contains(t, sql, "btree_gist")
	require.Contains(t, sql, "commitments_no_overlap EXCLUDE USING gist")
	require.Contains(t, sql, "daterange(start_date, end_date, '[)') WITH &&")
	require.Contains(t, sql, "status NOT IN ('cancelled', 'draft')")
}

func TestPreviousVersion(t *testing.T) {
	prev, err := previousVersion(1)
	require.NoError(t, err)
	require.Equal(t, -1, prev)
}
