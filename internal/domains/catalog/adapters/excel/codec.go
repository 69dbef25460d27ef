// Package excel reads and writes product spreadsheets.
package excel

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/sellerdesk/backoffice/internal/domains/catalog/domain"
	"github.com/sellerdesk/backoffice/internal/domains/catalog/ports"
)

const sheetName = "Products"

var headers = []string{"Name", "Description", "Price", "Stock", "Category", "SKU", "ImageUrl", "IsActive"}

// Codec is the excelize-backed spreadsheet codec for the catalog.
type Codec struct{}

func NewCodec() *Codec { return &Codec{} }

// ReadProducts parses an import file. The first row is treated as a header
// and skipped; completely empty rows are ignored. Rows with malformed
// cells are reported as RowErrors so the rest of the file still imports.
func (c *Codec) ReadProducts(r io.Reader) ([]ports.ProductRow, []ports.RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := sheetName
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	var out []ports.ProductRow
	var rowErrs []ports.RowError
	for i, row := range rows {
		if i == 0 || isEmpty(row) {
			continue
		}
		parsed, err := parseRow(row)
		if err != nil {
			rowErrs = append(rowErrs, ports.RowError{Row: i + 1, Err: err})
			continue
		}
		parsed.Row = i + 1
		out = append(out, parsed)
	}
	return out, rowErrs, nil
}

// WriteProducts renders products as a download-ready workbook.
func (c *Codec) WriteProducts(products []*domain.Product) ([]byte, error) {
	f, err := newWorkbook()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	for i, p := range products {
		values := []any{p.Name, p.Description, p.Price, p.Stock, p.Category, p.SKU, p.ImageURL, p.Active}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return nil, fmt.Errorf("write cell %s: %w", cell, err)
			}
		}
	}
	return flush(f)
}

// Template returns an empty workbook carrying only the expected headers.
func (c *Codec) Template() ([]byte, error) {
	f, err := newWorkbook()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return flush(f)
}

func newWorkbook() (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, err
	}
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return nil, fmt.Errorf("write header %s: %w", cell, err)
		}
	}
	return f, nil
}

func flush(f *excelize.File) ([]byte, error) {
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func parseRow(row []string) (ports.ProductRow, error) {
	cell := func(i int) string {
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	out := ports.ProductRow{
		Name:        cell(0),
		Description: cell(1),
		Category:    cell(4),
		SKU:         cell(5),
		ImageURL:    cell(6),
		Active:      true,
	}

	if raw := cell(2); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return out, fmt.Errorf("invalid price %q", raw)
		}
		out.Price = price
	}
	if raw := cell(3); raw != "" {
		stock, err := strconv.Atoi(raw)
		if err != nil {
			return out, fmt.Errorf("invalid stock %q", raw)
		}
		out.Stock = stock
	}
	if raw := cell(7); raw != "" {
		active, err := strconv.ParseBool(strings.ToLower(raw))
		if err != nil {
			return out, fmt.Errorf("invalid active flag %q", raw)
		}
		out.Active = active
	}
	return out, nil
}

func isEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
