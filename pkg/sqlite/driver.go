package sqlite

import (
	"database/sql"
	"database/sql/driver"

	"github.com/mattn/go-sqlite3"
)

// DriverName is registered with database/sql on import.
const DriverName = "sqlite3_chatgate"

// Applied to every new connection.
const connectPragmas = `
PRAGMA busy_timeout = 5000;
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
`

func init() {
	sql.Register(DriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			_, err := conn.Exec(connectPragmas, []driver.Value{})
			return err
		},
	})
}
