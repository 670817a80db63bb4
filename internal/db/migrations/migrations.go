package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// ApplyPostgres runs every postgres migration in file name order.
// Migrations are idempotent, so applying them twice is harmless.
func ApplyPostgres(ctx context.Context, pool *pgxpool.Pool) error {
	scripts, err := read("postgres")
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}

	for _, script := range scripts {
		if _, err := pool.Exec(ctx, script.body); err != nil {
			return fmt.Errorf("pool.Exec[%s]: %w", script.name, err)
		}
	}

	return nil
}

func ApplySQLite(ctx context.Context, db *sql.DB) error {
	scripts, err := read("sqlite")
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}

	for _, script := range scripts {
		if _, err := db.ExecContext(ctx, script.body); err != nil {
			return fmt.Errorf("db.ExecContext[%s]: %w", script.name, err)
		}
	}

	return nil
}

type script struct {
	name string
	body string
}

func read(dir string) ([]script, error) {
	names, err := fs.Glob(files, dir+"/*.sql")
	if err != nil {
		return nil, fmt.Errorf("fs.Glob: %w", err)
	}
	sort.Strings(names)

	result := make([]script, 0, len(names))
	for _, name := range names {
		body, err := files.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("files.ReadFile[%s]: %w", name, err)
		}
		result = append(result, script{name: name, body: string(body)})
	}

	return result, nil
}
