package sheet

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ikkim/kicks-storefront/internal/cart"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteCart_ThenReadCart(t *testing.T) {
	items := []cart.LineItem{
		{ProductID: 7, Title: "Air Max", Price: 120, Images: []string{"/a.png"}, Size: "41", Color: "black", Quantity: 3},
		{ProductID: 9, Title: "Blazer", Price: 89.5, Images: []string{}, Size: "45", Color: "green", Quantity: 1},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCart(&buf, items, decimal.NewFromInt(130)))

	result, err := ReadCart(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Skipped)
	if diff := cmp.Diff(items, result.Items); diff != "" {
		t.Errorf("sheet round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteCart_Layout(t *testing.T) {
	items := []cart.LineItem{
		{ProductID: 1, Title: "Free", Price: 0, Size: "41", Color: "black", Quantity: 2},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCart(&buf, items, decimal.NewFromInt(130)))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, CartSheetName, f.GetSheetName(0))

	header, err := f.GetCellValue(CartSheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Product ID", header)

	unit, err := f.GetCellValue(CartSheetName, "F2")
	require.NoError(t, err)
	assert.Equal(t, "130.00", unit)

	label, err := f.GetCellValue(CartSheetName, "A3")
	require.NoError(t, err)
	assert.Equal(t, "Total", label)
	total, err := f.GetCellValue(CartSheetName, "G3")
	require.NoError(t, err)
	assert.Equal(t, "260.00", total)
}

func TestReadCart_SkipsBadRows(t *testing.T) {
	f := excelize.NewFile()
	sheetName := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Product ID", "Title", "Size", "Color", "Quantity", "Unit Price"},
		{"7", "Air Max", "", "", "0", "120"},
		{"abc", "Broken"},
		{"8", "Odd price", "41", "black", "1", "cheap"},
		{"9", "Court", "44", "green", "2", "$75.5"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, f.SetSheetRow(sheetName, cell, &row))
	}
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)

	result, err := ReadCart(&buf)
	require.NoError(t, err)

	require.Len(t, result.Items, 2)
	assert.Equal(t, "41", result.Items[0].Size)
	assert.Equal(t, "black", result.Items[0].Color)
	assert.Equal(t, 1, result.Items[0].Quantity)
	assert.Equal(t, 75.5, result.Items[1].Price)
	assert.Equal(t, 2, result.Skipped)
}

func TestReadCart_InvalidWorkbook(t *testing.T) {
	_, err := ReadCart(bytes.NewReader([]byte("not a workbook")))
	assert.Error(t, err)
}
