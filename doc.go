// Package embedsql runs an embedded MariaDB/MySQL server inside the current
// process's lifetime: it unpacks a bundled distribution, seeds a data
// directory, launches mysqld, and guarantees the server is stopped and
// disposable data is removed when the host process terminates.
//
// # Basic Usage
//
//	import "github.com/embedsql/embedsql"
//
//	ctx := context.Background()
//
//	db, err := embedsql.New(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := db.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Stop() // Returns nil when already stopped; safe to ignore in defer
//
//	dsn := fmt.Sprintf("root@tcp(127.0.0.1:%d)/", db.Port())
//	// Open a database/sql connection with the driver of your choice...
//
// By default the base and data directories live under the system temp
// directory. Data directories under the temp root are treated as disposable:
// wiped when the database is created and purged when the host process exits.
// Point WithDataDir at a directory outside the temp root to keep data across
// runs.
//
// # Multiple Databases
//
// Each New call produces an independent database. Use WithPort(0) to let
// every instance pick its own free port:
//
//	a, _ := embedsql.New(ctx, embedsql.WithPort(0), embedsql.WithDataDir(dirA))
//	b, _ := embedsql.New(ctx, embedsql.WithPort(0), embedsql.WithDataDir(dirB))
package embedsql
