package db

import (
	"database/sql"
	"embed"
	"path"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/uritemplates/errors"
)

//go:embed sqlite/migrations/*.sql
var migrations embed.FS

const migrationsDir = "sqlite/migrations"

// Migration is one embedded schema file. Version is the numeric prefix of
// its name; 000 creates schema_migrations itself.
type Migration struct {
	Version string
	File    string
}

// Migrations lists the embedded migrations in the order they apply.
func Migrations() ([]Migration, error) {
	entries, err := migrations.ReadDir(migrationsDir)
	if err != nil {
		return nil, errors.Wrap(err, "read migrations")
	}
	var out []Migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		version, _, _ := strings.Cut(entry.Name(), "_")
		out = append(out, Migration{Version: version, File: entry.Name()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].File < out[j].File })
	return out, nil
}

// Migrate applies every migration not yet recorded in schema_migrations,
// each in its own transaction. A nil logger runs silently.
func Migrate(db *sql.DB, logger *zap.SugaredLogger) error {
	all, err := Migrations()
	if err != nil {
		return err
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	done := appliedVersions(db)
	applied := 0
	for _, m := range all {
		if done[m.Version] {
			logger.Debugw("Skipping migration (already applied)", "migration", m.File)
			continue
		}
		logger.Infow("Applying migration", "migration", m.File, "version", m.Version)
		if err := apply(db, m); err != nil {
			return err
		}
		applied++
	}

	logger.Infow("Migrations complete", "total_migrations", len(all), "applied", applied)
	return nil
}

// appliedVersions reads schema_migrations. An unreadable table means a
// fresh database: 000 creates it, and a broken one fails when 000 records
// itself.
func appliedVersions(db *sql.DB) map[string]bool {
	done := map[string]bool{}
	rows, err := db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return done
	}
	defer rows.Close()
	for rows.Next() {
		var v string
		if rows.Scan(&v) == nil {
			done[v] = true
		}
	}
	return done
}

func apply(db *sql.DB, m Migration) (err error) {
	sqlBytes, err := migrations.ReadFile(path.Join(migrationsDir, m.File))
	if err != nil {
		return errors.Wrapf(err, "read %s", m.File)
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrapf(err, "begin tx for %s", m.File)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.Exec(string(sqlBytes)); err != nil {
		return errors.Wrapf(err, "execute %s", m.File)
	}
	if _, err = tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.Version); err != nil {
		return errors.Wrapf(err, "record %s", m.File)
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrapf(err, "commit %s", m.File)
	}
	return nil
}
