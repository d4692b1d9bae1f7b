package sqlstore

import (
	"database/sql"
	"os"
	"testing"

	"github.com/battlesnakeio/gridsnake/controller/testsuite"
	"github.com/stretchr/testify/require"
)

func mustExec(db *sql.DB, sq string) {
	if _, err := db.Exec(sq); err != nil {
		panic(err)
	}
}

func TestSQLStore(t *testing.T) {
	url := os.Getenv("GRIDSNAKE_TEST_POSTGRES")
	if url == "" {
		t.Skip("GRIDSNAKE_TEST_POSTGRES not set")
	}

	s, err := NewSQLStore(url)
	require.NoError(t, err)
	defer s.Close()

	testsuite.Suite(t, s, func() {
		mustExec(s.db, "TRUNCATE games CASCADE")
	})
}

func TestNewSQLStoreUnreachable(t *testing.T) {
	_, err := NewSQLStore("postgres://nobody@127.0.0.1:1/none?sslmode=disable&connect_timeout=1")
	require.Error(t, err)
}
