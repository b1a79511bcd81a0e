package mysqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/andresguaman0621/precios/pkg/catalog/domain/model"
)

type table[T model.Record, R any] struct {
	name    string
	columns []string
	toRow   func(record T, position int) R
	fromRow func(row R) T
}

// Store keeps a catalog in one table; position preserves collection order.
type Store[T model.Record, R any] struct {
	db    *sqlx.DB
	table table[T, R]
}

func (s *Store[T, R]) Load(ctx context.Context) ([]T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY position",
		strings.Join(s.table.columns, ", "), s.table.name)

	var rows []R
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrapf(err, "select %s", s.table.name)
	}

	records := make([]T, 0, len(rows))
	for _, row := range rows {
		records = append(records, s.table.fromRow(row))
	}
	return records, nil
}

// Save replaces the whole table inside one transaction.
func (s *Store[T, R]) Save(ctx context.Context, records []T) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM "+s.table.name); err != nil {
		return errors.Wrapf(err, "clear %s", s.table.name)
	}

	if len(records) > 0 {
		rows := make([]R, 0, len(records))
		for i, r := range records {
			rows = append(rows, s.table.toRow(r, i))
		}
		query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (:%s)",
			s.table.name,
			strings.Join(s.table.columns, ", "),
			strings.Join(s.table.columns, ", :"))
		if _, err = tx.NamedExecContext(ctx, query, rows); err != nil {
			return errors.Wrapf(err, "insert into %s", s.table.name)
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit")
	}
	return nil
}

type productRow struct {
	Position       int    `db:"position"`
	Codigo         string `db:"codigo"`
	Categoria      string `db:"categoria"`
	NombreCompleto string `db:"nombre_completo"`
	Tamano         string `db:"tamano"`
	Presentacion   string `db:"presentacion"`
	PesoKg         string `db:"peso_kg"`
	Estado         string `db:"estado"`
	PrecioActual   string `db:"precio_actual"`
	PrecioAnterior string `db:"precio_anterior"`
}

func NewProductStore(db *sqlx.DB) *Store[*model.Product, productRow] {
	return &Store[*model.Product, productRow]{
		db: db,
		table: table[*model.Product, productRow]{
			name: "productos",
			columns: []string{
				"position", "codigo", "categoria", "nombre_completo", "tamano",
				"presentacion", "peso_kg", "estado", "precio_actual", "precio_anterior",
			},
			toRow: func(p *model.Product, position int) productRow {
				return productRow{
					Position:       position,
					Codigo:         p.Code.String(),
					Categoria:      p.Category,
					NombreCompleto: p.FullName,
					Tamano:         p.Size.String(),
					Presentacion:   p.Presentation,
					PesoKg:         p.WeightKg.String(),
					Estado:         p.Status,
					PrecioActual:   p.Current.String(),
					PrecioAnterior: p.Previous.String(),
				}
			},
			fromRow: func(r productRow) *model.Product {
				return &model.Product{
					Code:         model.NewLiteral(r.Codigo),
					Category:     r.Categoria,
					FullName:     r.NombreCompleto,
					Size:         model.NewLiteral(r.Tamano),
					Presentation: r.Presentacion,
					WeightKg:     model.NewLiteral(r.PesoKg),
					Status:       r.Estado,
					Current:      model.ParsePrice(r.PrecioActual),
					Previous:     model.ParsePrice(r.PrecioAnterior),
				}
			},
		},
	}
}

type seafoodRow struct {
	Position       int    `db:"position"`
	ID             string `db:"id"`
	Producto       string `db:"producto"`
	Peso           string `db:"peso"`
	PrecioActual   string `db:"precio_actual"`
	PrecioAnterior string `db:"precio_anterior"`
}

func NewSeafoodStore(db *sqlx.DB) *Store[*model.Seafood, seafoodRow] {
	return &Store[*model.Seafood, seafoodRow]{
		db: db,
		table: table[*model.Seafood, seafoodRow]{
			name:    "mariscos",
			columns: []string{"position", "id", "producto", "peso", "precio_actual", "precio_anterior"},
			toRow: func(s *model.Seafood, position int) seafoodRow {
				return seafoodRow{
					Position:       position,
					ID:             s.ID.String(),
					Producto:       s.ProductName,
					Peso:           s.Weight.String(),
					PrecioActual:   s.Current.String(),
					PrecioAnterior: s.Previous.String(),
				}
			},
			fromRow: func(r seafoodRow) *model.Seafood {
				return &model.Seafood{
					ID:          model.NewLiteral(r.ID),
					ProductName: r.Producto,
					Weight:      model.NewLiteral(r.Peso),
					Current:     model.ParsePrice(r.PrecioActual),
					Previous:    model.ParsePrice(r.PrecioAnterior),
				}
			},
		},
	}
}
