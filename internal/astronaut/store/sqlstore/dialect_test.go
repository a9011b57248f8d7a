package sqlstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRebind(t *testing.T) {
	q := `SELECT a FROM t WHERE x = ? AND y = ?`
	assert.Equal(t, `SELECT a FROM t WHERE x = $1 AND y = $2`, Postgres.rebind(q))
	assert.Equal(t, q, SQLite.rebind(q))
}

func TestUpSection(t *testing.T) {
	content := "-- +migrate Up\nCREATE TABLE a (id INT);\n-- +migrate Down\nDROP TABLE a;\n"
	assert.Equal(t, "\nCREATE TABLE a (id INT);\n", upSection(content))
	assert.Equal(t, "CREATE TABLE b (id INT);", upSection("CREATE TABLE b (id INT);"))
}

func TestDriverName(t *testing.T) {
	assert.Equal(t, "pgx", Postgres.DriverName())
	assert.Equal(t, "sqlite", SQLite.DriverName())
}
