package ports

import (
	"io"

	"github.com/sellerdesk/backoffice/internal/domains/catalog/domain"
)

// ProductRow is one spreadsheet row of an import file.
type ProductRow struct {
	// Row is the 1-based sheet row the record came from.
	Row         int
	Name        string
	Description string
	Price       float64
	Stock       int
	Category    string
	SKU         string
	ImageURL    string
	Active      bool
}

// RowError reports a row whose cells could not be parsed.
type RowError struct {
	Row int
	Err error
}

// ExcelCodec reads and writes product spreadsheets. Malformed rows come
// back as RowErrors rather than failing the whole file; only an unreadable
// workbook is an error.
type ExcelCodec interface {
	ReadProducts(r io.Reader) ([]ProductRow, []RowError, error)
	WriteProducts(products []*domain.Product) ([]byte, error)
	Template() ([]byte, error)
}
