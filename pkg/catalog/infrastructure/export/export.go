package export

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/andresguaman0621/precios/pkg/catalog/domain/model"
	"github.com/andresguaman0621/precios/pkg/common/clock"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const timestampLayout = "20060102_150405"

type Column[T model.Record] struct {
	Header string
	Width  float64
	Value  func(T) interface{}
}

type Layout[T model.Record] struct {
	Sheet      string
	FilePrefix string
	Columns    []Column[T]
}

func ProductLayout() Layout[*model.Product] {
	return Layout[*model.Product]{
		Sheet:      "Productos",
		FilePrefix: "productos",
		Columns: []Column[*model.Product]{
			{Header: "Código", Width: 12, Value: func(p *model.Product) interface{} { return literalCell(p.Code) }},
			{Header: "Categoría", Width: 20, Value: func(p *model.Product) interface{} { return p.Category }},
			{Header: "Nombre Completo", Width: 45, Value: func(p *model.Product) interface{} { return p.FullName }},
			{Header: "Tamaño", Width: 12, Value: func(p *model.Product) interface{} { return literalCell(p.Size) }},
			{Header: "Presentación", Width: 18, Value: func(p *model.Product) interface{} { return p.Presentation }},
			{Header: "Peso (kg)", Width: 12, Value: func(p *model.Product) interface{} { return literalCell(p.WeightKg) }},
			{Header: "Estado", Width: 12, Value: func(p *model.Product) interface{} { return p.Status }},
			{Header: "Precio Anterior", Width: 16, Value: func(p *model.Product) interface{} { return priceCell(p.Previous) }},
			{Header: "Precio Actual", Width: 16, Value: func(p *model.Product) interface{} { return priceCell(p.Current) }},
		},
	}
}

func SeafoodLayout() Layout[*model.Seafood] {
	return Layout[*model.Seafood]{
		Sheet:      "Mariscos",
		FilePrefix: "mariscos",
		Columns: []Column[*model.Seafood]{
			{Header: "ID", Width: 10, Value: func(s *model.Seafood) interface{} { return literalCell(s.ID) }},
			{Header: "Producto", Width: 40, Value: func(s *model.Seafood) interface{} { return s.ProductName }},
			{Header: "Peso", Width: 12, Value: func(s *model.Seafood) interface{} { return literalCell(s.Weight) }},
			{Header: "Precio Anterior", Width: 16, Value: func(s *model.Seafood) interface{} { return priceCell(s.Previous) }},
			{Header: "Precio Actual", Width: 16, Value: func(s *model.Seafood) interface{} { return priceCell(s.Current) }},
		},
	}
}

type Exporter[T model.Record] struct {
	layout Layout[T]
	clock  clock.Clock
}

func NewExporter[T model.Record](layout Layout[T], clk clock.Clock) *Exporter[T] {
	return &Exporter[T]{layout: layout, clock: clk}
}

func (e *Exporter[T]) Sheet() string { return e.layout.Sheet }

func (e *Exporter[T]) FileName() string {
	return fmt.Sprintf("%s_%s.xlsx", e.layout.FilePrefix, e.clock.Now().Format(timestampLayout))
}

func (e *Exporter[T]) Write(w io.Writer, records []T) error {
	f, err := e.Build(records)
	if err != nil {
		return err
	}
	defer f.Close()

	return errors.Wrap(f.Write(w), "write workbook")
}

// Build renders one header row followed by one row per record, in order.
func (e *Exporter[T]) Build(records []T) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := e.fill(f, records); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func (e *Exporter[T]) fill(f *excelize.File, records []T) error {
	sheet := e.layout.Sheet
	columns := e.layout.Columns

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return errors.Wrap(err, "rename sheet")
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c.Header
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return errors.Wrap(err, "write header")
	}

	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"366092"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return errors.Wrap(err, "create header style")
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(columns), 1)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := f.SetCellStyle(sheet, "A1", lastHeader, style); err != nil {
		return errors.Wrap(err, "style header")
	}

	for i, c := range columns {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return errors.WithStack(err)
		}
		if err := f.SetColWidth(sheet, name, name, c.Width); err != nil {
			return errors.Wrapf(err, "width of column %s", name)
		}
	}

	for i, r := range records {
		values := make([]interface{}, len(columns))
		for j, c := range columns {
			values[j] = c.Value(r)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.WithStack(err)
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return errors.Wrapf(err, "write row %d", i+2)
		}
	}

	return errors.Wrap(f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}), "freeze header")
}

// priceCell never fails: anything that is not a finite number is written as text.
func priceCell(p model.Price) interface{} {
	if d, ok := p.Decimal(); ok {
		if v, _ := d.Float64(); !math.IsInf(v, 0) && !math.IsNaN(v) {
			return v
		}
	}
	return p.String()
}

func literalCell(l model.Literal) interface{} {
	if l.IsNumber() {
		if v, err := strconv.ParseFloat(l.String(), 64); err == nil {
			return v
		}
	}
	return l.String()
}
