// Package catalog indexes a scanned class tree in SQLite so build tooling
// can query which classes are entities and which of them have already been
// enhanced, without re-parsing the tree.
package catalog

import (
	"crypto/sha256"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/chazu/weft/classfile"
	"github.com/chazu/weft/enhance"
	"github.com/chazu/weft/pipeline"
)

// ClassRow describes one indexed class file.
type ClassRow struct {
	Name     string // internal name, e.g. com/shop/Order
	Path     string
	Entity   bool
	Enhanced bool
	Hash     string // hex SHA-256 of the file bytes
}

// FieldRow describes one declared field of an indexed class.
type FieldRow struct {
	Class      string
	Name       string
	Descriptor string
	Persistent bool
}

// BuildOptions selects the annotations driving the entity and persistence
// columns. Zero values mean the library defaults.
type BuildOptions struct {
	Marker          string
	TransientMarker string
}

// Stats summarizes one build.
type Stats struct {
	Classes  int
	Entities int
	Failed   int
}

// Catalog is a handle on the index database.
type Catalog struct {
	db *sql.DB
}

// Open opens the catalog database at path, creating it and its schema as
// needed.
func Open(path string) (*Catalog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	c := &Catalog{db: db}
	if err := c.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// initialize creates the required tables.
func (c *Catalog) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS classes (
		name TEXT PRIMARY KEY,
		path TEXT NOT NULL,
		entity INTEGER NOT NULL DEFAULT 0,
		enhanced INTEGER NOT NULL DEFAULT 0,
		hash TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_classes_entity ON classes(entity);

	CREATE TABLE IF NOT EXISTS fields (
		class TEXT NOT NULL,
		name TEXT NOT NULL,
		descriptor TEXT NOT NULL,
		persistent INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (class, name, descriptor)
	);
	`
	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Build re-indexes the tree under root, replacing any previous contents.
func (c *Catalog) Build(root, suffix string, opts BuildOptions) (Stats, error) {
	paths, err := pipeline.Enumerate(root, suffix)
	if err != nil {
		return Stats{}, err
	}
	return c.BuildFiles(paths, opts)
}

// BuildFiles re-indexes the given class files, replacing any previous
// contents. Files that cannot be read or analyzed are counted in
// Stats.Failed and skipped; they never abort the build.
func (c *Catalog) BuildFiles(paths []string, opts BuildOptions) (Stats, error) {
	var stats Stats

	marker := opts.Marker
	if marker == "" {
		marker = enhance.DefaultMarker
	}

	tx, err := c.db.Begin()
	if err != nil {
		return stats, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM fields"); err != nil {
		return stats, fmt.Errorf("failed to clear fields: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM classes"); err != nil {
		return stats, fmt.Errorf("failed to clear classes: %w", err)
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			stats.Failed++
			continue
		}
		cls, err := classfile.Parse(data)
		if err != nil {
			stats.Failed++
			continue
		}
		persistent, err := enhance.PersistentFields(cls, opts.TransientMarker)
		if err != nil {
			stats.Failed++
			continue
		}
		isPersistent := make(map[*classfile.Field]bool, len(persistent))
		for _, f := range persistent {
			isPersistent[f] = true
		}

		name := cls.InternalName()
		entity := enhance.IsEntity(cls, marker)
		if _, err := tx.Exec(
			"INSERT OR REPLACE INTO classes (name, path, entity, enhanced, hash) VALUES (?, ?, ?, ?, ?)",
			name, path, entity, enhance.IsEnhanced(cls), fmt.Sprintf("%x", sha256.Sum256(data)),
		); err != nil {
			return stats, fmt.Errorf("failed to index %s: %w", path, err)
		}
		for _, f := range cls.Fields {
			if _, err := tx.Exec(
				"INSERT OR REPLACE INTO fields (class, name, descriptor, persistent) VALUES (?, ?, ?, ?)",
				name, f.Name(cls.Pool), f.Descriptor(cls.Pool), isPersistent[f],
			); err != nil {
				return stats, fmt.Errorf("failed to index %s: %w", path, err)
			}
		}

		stats.Classes++
		if entity {
			stats.Entities++
		}
	}

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("failed to commit: %w", err)
	}
	return stats, nil
}

// Classes returns every indexed class ordered by name.
func (c *Catalog) Classes() ([]ClassRow, error) {
	return c.classesWhere("")
}

// Entities returns the indexed entity classes ordered by name.
func (c *Catalog) Entities() ([]ClassRow, error) {
	return c.classesWhere("WHERE entity = 1")
}

// Enhanced returns the indexed enhanced classes ordered by name.
func (c *Catalog) Enhanced() ([]ClassRow, error) {
	return c.classesWhere("WHERE enhanced = 1")
}

func (c *Catalog) classesWhere(cond string) ([]ClassRow, error) {
	rows, err := c.db.Query(
		"SELECT name, path, entity, enhanced, hash FROM classes " + cond + " ORDER BY name",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ClassRow
	for rows.Next() {
		var r ClassRow
		if err := rows.Scan(&r.Name, &r.Path, &r.Entity, &r.Enhanced, &r.Hash); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Fields returns the declared fields of one indexed class, ordered by name
// then descriptor.
func (c *Catalog) Fields(class string) ([]FieldRow, error) {
	rows, err := c.db.Query(
		"SELECT class, name, descriptor, persistent FROM fields WHERE class = ? ORDER BY name, descriptor",
		class,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FieldRow
	for rows.Next() {
		var r FieldRow
		if err := rows.Scan(&r.Class, &r.Name, &r.Descriptor, &r.Persistent); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
