package terrain

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Garsondee/hexsight/internal/hexgrid"
)

// ErrUnknownBoard is returned by Store.Load for a name that was never saved.
var ErrUnknownBoard = errors.New("terrain: unknown board")

const schema = `
CREATE TABLE IF NOT EXISTS boards (
	name   TEXT PRIMARY KEY,
	width  INTEGER NOT NULL,
	height INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS hexes (
	board     TEXT NOT NULL REFERENCES boards(name) ON DELETE CASCADE,
	col       INTEGER NOT NULL,
	row       INTEGER NOT NULL,
	elevation INTEGER NOT NULL DEFAULT 0,
	woods     INTEGER NOT NULL DEFAULT 0,
	building  INTEGER NOT NULL DEFAULT 0,
	water     INTEGER NOT NULL DEFAULT 0,
	unit      TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (board, col, row)
);`

// Store is a named board catalog in a SQLite database. Only hexes that differ
// from flat empty ground are stored.
type Store struct {
	db *sql.DB
}

// OpenStore opens (and creates if missing) the catalog at path.
func OpenStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores b under name, replacing any board saved under the same name.
func (s *Store) Save(ctx context.Context, name string, b *Board) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM boards WHERE name = ?`, name); err != nil {
		return fmt.Errorf("clear %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO boards (name, width, height) VALUES (?, ?, ?)`, name, b.Width, b.Height); err != nil {
		return fmt.Errorf("insert board %s: %w", name, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO hexes (board, col, row, elevation, woods, building, water, unit)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, hex := range b.grid {
		if hex.Elevation == 0 && hex.Levels == [len(Features)]int{} && hex.Unit == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, name, hex.Coord.Col, hex.Coord.Row, hex.Elevation,
			hex.Levels[Woods], hex.Levels[Building], hex.Levels[Water], hex.Unit); err != nil {
			return fmt.Errorf("insert hex %s: %w", hex.Coord, err)
		}
	}
	return tx.Commit()
}

// Load reads the board saved under name.
func (s *Store) Load(ctx context.Context, name string) (*Board, error) {
	var w, h int
	err := s.db.QueryRowContext(ctx, `SELECT width, height FROM boards WHERE name = ?`, name).Scan(&w, &h)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBoard, name)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}

	b := NewBoard(w, h)
	b.Name = name
	rows, err := s.db.QueryContext(ctx,
		`SELECT col, row, elevation, woods, building, water, unit FROM hexes WHERE board = ?`, name)
	if err != nil {
		return nil, fmt.Errorf("load hexes %s: %w", name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var c hexgrid.Coord
		var elev, woods, building, water int
		var unit string
		if err := rows.Scan(&c.Col, &c.Row, &elev, &woods, &building, &water, &unit); err != nil {
			return nil, err
		}
		hex := b.Get(c)
		if hex == nil {
			return nil, fmt.Errorf("board %s: hex %s: %w", name, c, ErrOutOfBounds)
		}
		hex.Elevation = elev
		hex.Levels[Woods] = woods
		hex.Levels[Building] = building
		hex.Levels[Water] = water
		hex.Unit = unit
	}
	return b, rows.Err()
}

// Names lists the saved boards alphabetically.
func (s *Store) Names(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM boards`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	sort.Strings(out)
	return out, rows.Err()
}
