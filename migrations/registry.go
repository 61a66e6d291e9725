// Package migrations exposes the embedded secure-entry schema per SQL dialect
// and registers it with a go-persistence-bun client.
package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	remitlink "github.com/goliatone/go-remitlink"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

const sourceLabel = "go-remitlink"

type FilesystemSpec struct {
	Dialect string
	Path    string
	FS      fs.FS
}

type RegisterFunc func(ctx context.Context, dialect string, sourceLabel string, fsys fs.FS) error

// DialectForDriver maps a database/sql driver name to a migration dialect.
func DialectForDriver(driver string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "postgres", "postgresql", "pgx", "pq":
		return DialectPostgres, nil
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	default:
		return "", fmt.Errorf("migrations: unsupported driver %q", driver)
	}
}

// Filesystems returns one migration tree per dialect. The first non-nil source
// replaces the embedded tree.
func Filesystems(sources ...fs.FS) ([]FilesystemSpec, error) {
	root := remitlink.GetMigrationsFS()
	if len(sources) > 0 && sources[0] != nil {
		root = sources[0]
	}
	base, err := fs.Sub(root, "data/sql/migrations")
	if err != nil {
		return nil, fmt.Errorf("migrations: data/sql/migrations not found: %w", err)
	}
	sqliteFS, err := fs.Sub(base, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("migrations: resolve sqlite filesystem: %w", err)
	}

	filesystems := []FilesystemSpec{
		{Dialect: DialectPostgres, Path: "data/sql/migrations", FS: base},
		{Dialect: DialectSQLite, Path: "data/sql/migrations/sqlite", FS: sqliteFS},
	}
	for _, fsys := range filesystems {
		matches, globErr := fs.Glob(fsys.FS, "*.up.sql")
		if globErr != nil {
			return nil, fmt.Errorf("migrations: glob %s %s: %w", fsys.Dialect, fsys.Path, globErr)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("migrations: %s filesystem %q has no *.up.sql files", fsys.Dialect, fsys.Path)
		}
	}
	return filesystems, nil
}

func FilesystemFor(dialect string) (FilesystemSpec, error) {
	filesystems, err := Filesystems()
	if err != nil {
		return FilesystemSpec{}, err
	}
	target := strings.ToLower(strings.TrimSpace(dialect))
	for _, fsys := range filesystems {
		if fsys.Dialect == target {
			return fsys, nil
		}
	}
	return FilesystemSpec{}, fmt.Errorf("migrations: unknown dialect %q", dialect)
}

// Register hands the migration tree of every listed dialect to registerFn.
// No dialects means all of them.
func Register(ctx context.Context, registerFn RegisterFunc, dialects ...string) error {
	if registerFn == nil {
		return fmt.Errorf("migrations: register function is required")
	}
	filesystems, err := Filesystems()
	if err != nil {
		return err
	}
	wanted := map[string]bool{}
	for _, dialect := range dialects {
		if trimmed := strings.ToLower(strings.TrimSpace(dialect)); trimmed != "" {
			wanted[trimmed] = true
		}
	}
	for _, fsys := range filesystems {
		if len(wanted) > 0 && !wanted[fsys.Dialect] {
			continue
		}
		if err := registerFn(ctx, fsys.Dialect, sourceLabel, fsys.FS); err != nil {
			return fmt.Errorf("migrations: register %s (%s): %w", fsys.Dialect, fsys.Path, err)
		}
	}
	return nil
}
