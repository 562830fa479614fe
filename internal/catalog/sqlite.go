package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/piwi3910/SlabLayout/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS parts (
    id           TEXT PRIMARY KEY,
    name         TEXT NOT NULL,
    shape        TEXT NOT NULL,
    quantity     INTEGER NOT NULL,
    border_style TEXT NOT NULL,
    border_color TEXT NOT NULL,
    fill_color   TEXT NOT NULL,
    created_at   DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS materials (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    width      REAL NOT NULL,
    height     REAL NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// OpenSQLite opens (creating if needed) the sqlite database at dbPath.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// SQLite is a catalog stored in a sqlite database. Shapes are stored as JSON.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

// Init creates the tables and, when both are empty, inserts the given seed.
func (s *SQLite) Init(ctx context.Context, parts []model.CatalogPart, materials []model.Material) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	var n int
	if err := s.db.QueryRowContext(ctx, `
        SELECT (SELECT COUNT(*) FROM parts) + (SELECT COUNT(*) FROM materials)
    `).Scan(&n); err != nil {
		return fmt.Errorf("count catalog: %w", err)
	}
	if n > 0 {
		return nil
	}

	for _, p := range parts {
		if err := s.insertPart(ctx, p); err != nil {
			return fmt.Errorf("seed part %q: %w", p.Name, err)
		}
	}
	for _, m := range materials {
		if err := s.insertMaterial(ctx, m); err != nil {
			return fmt.Errorf("seed material %q: %w", m.Name, err)
		}
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

// Parts returns the part side of the catalog.
func (s *SQLite) Parts() PartCatalog { return sqliteParts{s} }

// Materials returns the material side of the catalog.
func (s *SQLite) Materials() MaterialCatalog { return sqliteMaterials{s} }

// ============================================================
// Parts
// ============================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPart(row rowScanner) (model.CatalogPart, error) {
	var (
		p     model.CatalogPart
		shape string
		style string
	)
	if err := row.Scan(&p.ID, &p.Name, &shape, &p.Quantity, &style, &p.BorderColor, &p.FillColor); err != nil {
		return model.CatalogPart{}, err
	}
	sh, err := model.UnmarshalShape([]byte(shape))
	if err != nil {
		return model.CatalogPart{}, fmt.Errorf("part %q: %w", p.ID, err)
	}
	p.Shape = sh
	p.BorderStyle = model.ParseBorderStyle(style)
	return p, nil
}

func (s *SQLite) insertPart(ctx context.Context, p model.CatalogPart) error {
	shape, err := model.MarshalShape(p.Shape)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO parts (id, name, shape, quantity, border_style, border_color, fill_color)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `, p.ID, p.Name, string(shape), p.Quantity, string(p.BorderStyle), p.BorderColor, p.FillColor)
	return err
}

func (s *SQLite) insertMaterial(ctx context.Context, m model.Material) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO materials (id, name, width, height)
        VALUES (?, ?, ?, ?)
    `, m.ID, m.Name, m.Width, m.Height)
	return err
}

type sqliteParts struct{ s *SQLite }

func (p sqliteParts) List(ctx context.Context) ([]model.CatalogPart, error) {
	rows, err := p.s.db.QueryContext(ctx, `
        SELECT id, name, shape, quantity, border_style, border_color, fill_color
        FROM parts
        ORDER BY created_at, rowid
    `)
	if err != nil {
		return nil, fmt.Errorf("list parts: %w", err)
	}
	defer rows.Close()

	parts := []model.CatalogPart{}
	for rows.Next() {
		part, err := scanPart(rows)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	return parts, rows.Err()
}

func (p sqliteParts) Get(ctx context.Context, id string) (model.CatalogPart, error) {
	row := p.s.db.QueryRowContext(ctx, `
        SELECT id, name, shape, quantity, border_style, border_color, fill_color
        FROM parts
        WHERE id = ?
    `, id)
	part, err := scanPart(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.CatalogPart{}, fmt.Errorf("part %q: %w", id, model.ErrNotFound)
		}
		return model.CatalogPart{}, err
	}
	return part, nil
}

func (p sqliteParts) Update(ctx context.Context, part model.CatalogPart) (model.CatalogPart, error) {
	shape, err := model.MarshalShape(part.Shape)
	if err != nil {
		return model.CatalogPart{}, err
	}
	res, err := p.s.db.ExecContext(ctx, `
        UPDATE parts
        SET name = ?, shape = ?, quantity = ?, border_style = ?, border_color = ?, fill_color = ?
        WHERE id = ?
    `, part.Name, string(shape), part.Quantity, string(part.BorderStyle), part.BorderColor, part.FillColor, part.ID)
	if err != nil {
		return model.CatalogPart{}, fmt.Errorf("update part: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.CatalogPart{}, fmt.Errorf("part %q: %w", part.ID, model.ErrNotFound)
	}
	return part.Clone(), nil
}

func (p sqliteParts) Create(ctx context.Context, name string, quantity int) (model.CatalogPart, error) {
	part := model.NewCatalogPart(name, quantity)
	if err := p.s.insertPart(ctx, part); err != nil {
		return model.CatalogPart{}, fmt.Errorf("create part: %w", err)
	}
	return part, nil
}

func (p sqliteParts) BulkCreate(ctx context.Context, reqs []model.PartRequest) ([]model.CatalogPart, error) {
	tx, err := p.s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	created := make([]model.CatalogPart, 0, len(reqs))
	for _, r := range reqs {
		part := r.ToPart()
		shape, err := model.MarshalShape(part.Shape)
		if err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO parts (id, name, shape, quantity, border_style, border_color, fill_color)
            VALUES (?, ?, ?, ?, ?, ?, ?)
        `, part.ID, part.Name, string(shape), part.Quantity, string(part.BorderStyle), part.BorderColor, part.FillColor); err != nil {
			return nil, fmt.Errorf("bulk create %q: %w", part.Name, err)
		}
		created = append(created, part)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return created, nil
}

// ============================================================
// Materials
// ============================================================

type sqliteMaterials struct{ s *SQLite }

func (m sqliteMaterials) List(ctx context.Context) ([]model.Material, error) {
	rows, err := m.s.db.QueryContext(ctx, `
        SELECT id, name, width, height
        FROM materials
        ORDER BY created_at, rowid
    `)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	defer rows.Close()

	materials := []model.Material{}
	for rows.Next() {
		var mat model.Material
		if err := rows.Scan(&mat.ID, &mat.Name, &mat.Width, &mat.Height); err != nil {
			return nil, err
		}
		materials = append(materials, mat)
	}
	return materials, rows.Err()
}

func (m sqliteMaterials) Get(ctx context.Context, id string) (model.Material, error) {
	var mat model.Material
	err := m.s.db.QueryRowContext(ctx, `
        SELECT id, name, width, height
        FROM materials
        WHERE id = ?
    `, id).Scan(&mat.ID, &mat.Name, &mat.Width, &mat.Height)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Material{}, fmt.Errorf("material %q: %w", id, model.ErrNotFound)
		}
		return model.Material{}, err
	}
	return mat, nil
}

func (m sqliteMaterials) Create(ctx context.Context, name string, width, height float64) (model.Material, error) {
	mat := model.NewMaterial(name, width, height)
	if err := m.s.insertMaterial(ctx, mat); err != nil {
		return model.Material{}, fmt.Errorf("create material: %w", err)
	}
	return mat, nil
}
