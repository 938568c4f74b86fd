package project

import (
	"context"
	"database/sql"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// Directories that never hold hand-written sources.
var skippedDirs = map[string]struct{}{
	".git":         {},
	".gradle":      {},
	".idea":        {},
	"build":        {},
	"node_modules": {},
	"out":          {},
}

// Index is an in-memory name -> path table of the source files under a project root.
// It lives for a single invocation and is never written to disk.
type Index struct {
	db   *sql.DB
	root string
}

// BuildIndex walks root and records every file whose extension is in exts.
func BuildIndex(ctx context.Context, root string, exts []string) (*Index, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, errors.Wrap(err, "project: open index db failed")
	}
	// every pooled connection would get its own empty :memory: database
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	idx := &Index{db: db, root: root}
	if err := idx.createSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := idx.populate(ctx, exts); err != nil {
		db.Close()
		return nil, err
	}
	return idx, nil
}

func (idx *Index) createSchema(ctx context.Context) error {
	stmts := []string{
		"CREATE TABLE source_files (name TEXT NOT NULL, path TEXT NOT NULL);",
		"CREATE INDEX idx_source_files_name ON source_files(name);",
	}
	for _, stmt := range stmts {
		if _, err := idx.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "project: execute %s failed", stmt)
		}
	}
	return nil
}

func (idx *Index) populate(ctx context.Context, exts []string) error {
	wanted := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		wanted[strings.ToLower(ext)] = struct{}{}
	}

	tx, err := idx.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "project: begin index tx failed")
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO source_files (name, path) VALUES (?, ?)")
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, "project: prepare insert failed")
	}
	defer stmt.Close()

	count := 0
	walkErr := filepath.WalkDir(idx.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == idx.root {
				return err
			}
			log.Debug().Err(err).Str("path", path).Msg("project: skip unreadable path")
			return nil
		}
		if d.IsDir() {
			if _, skip := skippedDirs[d.Name()]; skip && path != idx.root {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := wanted[strings.ToLower(filepath.Ext(d.Name()))]; !ok {
			return nil
		}
		if _, err := stmt.ExecContext(ctx, d.Name(), path); err != nil {
			return errors.Wrapf(err, "project: index %s failed", path)
		}
		count++
		return nil
	})
	if walkErr != nil {
		tx.Rollback()
		return errors.Wrapf(walkErr, "project: walk %s failed", idx.root)
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "project: commit index failed")
	}
	log.Debug().Str("root", idx.root).Int("files", count).Msg("project: source index built")
	return nil
}

// Lookup returns the paths of all indexed files named exactly name, sorted.
func (idx *Index) Lookup(ctx context.Context, name string) ([]string, error) {
	if idx == nil || idx.db == nil {
		return nil, errors.New("project: index is nil")
	}
	rows, err := idx.db.QueryContext(ctx, "SELECT path FROM source_files WHERE name = ? ORDER BY path", name)
	if err != nil {
		return nil, errors.Wrapf(err, "project: lookup %s failed", name)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, errors.Wrap(err, "project: scan lookup row failed")
		}
		paths = append(paths, path)
	}
	return paths, errors.Wrap(rows.Err(), "project: iterate lookup rows failed")
}

// Close releases the in-memory database.
func (idx *Index) Close() error {
	if idx == nil || idx.db == nil {
		return nil
	}
	return idx.db.Close()
}
