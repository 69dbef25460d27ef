package excel

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbookBytes(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName(f.GetSheetName(0), sheetName))
	for i, row := range rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheetName, cell, value))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return buf.Bytes()
}

func TestReadProducts_MalformedCellsReportedPerRow(t *testing.T) {
	data := workbookBytes(t, [][]any{
		{"Name", "Description", "Price", "Stock", "Category", "SKU", "ImageUrl", "IsActive"},
		{"Keyboard", "tenkeyless", "49.90", "10", "peripherals", "KB-001", "", "true"},
		{"Mouse", "", "cheap", "5", "", "", "", ""},
		{"Monitor", "", "199.90", "lots", "", "", "", ""},
		{"", "", "", "", "", "", "", ""},
		{"Webcam", "", "29.90", "3", "", "", "", ""},
	})

	codec := NewCodec()
	rows, rowErrs, err := codec.ReadProducts(bytes.NewReader(data))
	require.NoError(t, err)

	require.Len(t, rows, 2)
	require.Equal(t, "Keyboard", rows[0].Name)
	require.Equal(t, 2, rows[0].Row)
	require.Equal(t, "Webcam", rows[1].Name)
	require.Equal(t, 6, rows[1].Row)

	require.Len(t, rowErrs, 2)
	require.Equal(t, 3, rowErrs[0].Row)
	require.ErrorContains(t, rowErrs[0].Err, "invalid price")
	require.Equal(t, 4, rowErrs[1].Row)
	require.ErrorContains(t, rowErrs[1].Err, "invalid stock")
}
