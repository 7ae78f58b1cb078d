package migrate

import (
	"errors"
	"io"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMigrationsArePaired(t *testing.T) {
	src, err := newSource()
	require.NoError(t, err)
	defer src.Close()

	version, err := src.First()
	require.NoError(t, err)

	count := 0
	for {
		count++
		up, _, err := src.ReadUp(version)
		require.NoError(t, err, "up %d", version)
		body, err := io.ReadAll(up)
		require.NoError(t, err)
		require.NotEmpty(t, strings.TrimSpace(string(body)))
		_ = up.Close()

		down, _, err := src.ReadDown(version)
		require.NoError(t, err, "down %d", version)
		_ = down.Close()

		next, err := src.Next(version)
		if errors.Is(err, fs.ErrNotExist) {
			break
		}
		require.NoError(t, err)
		version = next
	}
	require.Equal(t, 3, count)
}

// The repositories map unique violations back to a column by index name.
func TestUniqueIndexesFollowNamingScheme(t *testing.T) {
	raw, err := FS.ReadFile("migrations/000001_create_users.up.sql")
	require.NoError(t, err)
	for _, col := range []string{"email", "username", "telephone"} {
		require.Contains(t, string(raw), "idx_users_"+col+" ON users ("+col+")")
	}

	raw, err = FS.ReadFile("migrations/000002_create_catalog.up.sql")
	require.NoError(t, err)
	require.Contains(t, string(raw), "idx_categories_name ON categories (name)")
	require.Contains(t, string(raw), "idx_products_product_name ON products (product_name)")
}
