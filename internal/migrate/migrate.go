package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

//go:embed sql/*.sql
var migrationsFS embed.FS

// Run applies pending preset-store migrations embedded under sql/.
// Migrations are named like 0001_description.sql and run in version order,
// each file as one statement batch. multiStatements is forced on.
func Run(ctx context.Context, dsn string, log *slog.Logger) error {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.MultiStatements = true
	cfg.ParseTime = true

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return err
	}
	defer db.Close()

	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(c); err != nil {
		return err
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := lock(ctx, conn); err != nil {
		return err
	}
	defer unlock(conn)

	if _, err := conn.ExecContext(ctx, migrationsDDL); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	applied, err := appliedVersions(ctx, conn)
	if err != nil {
		return err
	}
	todo, err := pending(migrationsFS, applied)
	if err != nil {
		return err
	}
	if len(todo) == 0 {
		log.Debug("preset schema up to date", slog.Int("applied", len(applied)))
		return nil
	}
	for _, m := range todo {
		log.Info("applying migration", slog.Int("version", m.version), slog.String("file", m.name))
		if err := apply(ctx, conn, m); err != nil {
			return fmt.Errorf("applying %s: %w", m.name, err)
		}
	}
	return nil
}

// lockName serialises concurrent servers migrating the same database.
const lockName = "toggl_mcp_migrate"

const migrationsDDL = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version    BIGINT       NOT NULL PRIMARY KEY,
	name       VARCHAR(255) NOT NULL,
	applied_at DATETIME(6)  NOT NULL
) ENGINE=InnoDB;`

type migration struct {
	version int
	name    string
	body    string
}

func lock(ctx context.Context, conn *sql.Conn) error {
	var got sql.NullInt64
	if err := conn.QueryRowContext(ctx, "SELECT GET_LOCK(?, 30)", lockName).Scan(&got); err != nil {
		return fmt.Errorf("acquire migration lock: %w", err)
	}
	if !got.Valid || got.Int64 != 1 {
		return fmt.Errorf("acquire migration lock: timed out waiting for %s", lockName)
	}
	return nil
}

func unlock(conn *sql.Conn) {
	_, _ = conn.ExecContext(context.Background(), "SELECT RELEASE_LOCK(?)", lockName)
}

func appliedVersions(ctx context.Context, conn *sql.Conn) (map[int]bool, error) {
	rows, err := conn.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

// pending lists the migrations in fsys not yet in applied, ordered by version.
func pending(fsys fs.FS, applied map[int]bool) ([]migration, error) {
	files, err := fs.Glob(fsys, "sql/*.sql")
	if err != nil {
		return nil, err
	}
	var out []migration
	seen := make(map[int]string)
	for _, f := range files {
		base := filepath.Base(f)
		ver, err := parseVersion(base)
		if err != nil {
			return nil, fmt.Errorf("invalid migration filename %q: %w", base, err)
		}
		if prev, dup := seen[ver]; dup {
			return nil, fmt.Errorf("migrations %s and %s share version %d", prev, base, ver)
		}
		seen[ver] = base
		if applied[ver] {
			continue
		}
		b, err := fs.ReadFile(fsys, f)
		if err != nil {
			return nil, err
		}
		out = append(out, migration{version: ver, name: base, body: string(b)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

// apply runs one migration and records its version in the same transaction.
// MySQL commits DDL implicitly, so the CREATE TABLE IF NOT EXISTS statements
// must stay safe to repeat.
func apply(ctx context.Context, conn *sql.Conn, m migration) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, m.body); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations(version, name, applied_at) VALUES(?, ?, ?)",
		m.version, m.name, time.Now().UTC()); err != nil {
		return err
	}
	return tx.Commit()
}

// parseVersion reads the numeric prefix of 0001_name.sql.
func parseVersion(name string) (int, error) {
	i := strings.IndexByte(name, '_')
	if i <= 0 {
		return 0, fmt.Errorf("missing prefix number")
	}
	return strconv.Atoi(name[:i])
}
