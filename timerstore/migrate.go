package timerstore

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"slices"
)

//go:embed migrations/*.sql
var migrations embed.FS

// MigrateUp creates the snapshot schema. Every up script is idempotent, so it
// runs on each Open.
func MigrateUp(db *sql.DB) error {
	scripts, err := migrationScripts(".up.sql")
	if err != nil {
		return err
	}
	return run(db, scripts)
}

// MigrateDown drops the schema, newest script first.
func MigrateDown(db *sql.DB) error {
	scripts, err := migrationScripts(".down.sql")
	if err != nil {
		return err
	}
	slices.Reverse(scripts)
	return run(db, scripts)
}

// migrationScripts lists the embedded scripts with suffix in version order.
func migrationScripts(suffix string) ([]string, error) {
	names, err := fs.Glob(migrations, "migrations/*"+suffix)
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	slices.Sort(names)
	return names, nil
}

func run(db *sql.DB, scripts []string) error {
	for _, name := range scripts {
		body, err := migrations.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if _, err := db.Exec(string(body)); err != nil {
			return fmt.Errorf("migrate %s: %w", name, err)
		}
	}
	return nil
}
