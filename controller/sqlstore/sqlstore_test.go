package sqlstore

import (
	"database/sql"
	"os"
	"testing"

	"github.com/lightcycles/engine/controller"
	"github.com/lightcycles/engine/controller/testsuite"
	"github.com/stretchr/testify/require"
)

func mustExec(db *sql.DB, sq string) {
	if _, err := db.Exec(sq); err != nil {
		panic(err)
	}
}

func TestSQLStore(t *testing.T) {
	url := os.Getenv("POSTGRES_URL")
	if url == "" {
		t.Skip("POSTGRES_URL not set")
	}
	s, err := NewSQLStore(url)
	require.NoError(t, err)
	defer s.Close()

	testsuite.Suite(t, func() controller.Store {
		mustExec(s.db, "TRUNCATE locks")
		mustExec(s.db, "TRUNCATE matches")
		mustExec(s.db, "TRUNCATE match_frames")
		return s
	})
}
