package database

import (
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestBuildDSN(t *testing.T) {
	dsn := buildDSN("crm", "secret", "db.local", "3306", "trainercrm")

	assert.True(t, strings.HasPrefix(dsn, "crm:secret@tcp(db.local:3306)/trainercrm?"), dsn)

	cfg, err := mysql.ParseDSN(dsn)
	assert.NoError(t, err)
	assert.True(t, cfg.ParseTime)

	// Matched rows, not changed rows: a no-op UPDATE of an existing row
	// must still count, or ownership-scoped updates would report the row
	// as missing.
	assert.True(t, cfg.ClientFoundRows)
}

func TestBuildDSNWithoutPassword(t *testing.T) {
	dsn := buildDSN("crm", "", "localhost", "3306", "trainercrm")
	assert.True(t, strings.HasPrefix(dsn, "crm@tcp(localhost:3306)/trainercrm?"), dsn)
}
