package sheet

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ikkim/kicks-storefront/internal/cart"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	CartSheetName = "Cart"
	ContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	totalLabel    = "Total"
)

var cartHeaders = []string{"Product ID", "Title", "Size", "Color", "Quantity", "Unit Price", "Subtotal", "Image"}

// WriteCart renders items as a single-sheet workbook with a trailing total row.
func WriteCart(w io.Writer, items []cart.LineItem, fallback decimal.Decimal) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), CartSheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	priceStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return fmt.Errorf("failed to create price style: %w", err)
	}

	if err := f.SetSheetRow(CartSheetName, "A1", &cartHeaders); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.SetRowStyle(CartSheetName, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	total := decimal.Zero
	for i, item := range items {
		unit := item.UnitPrice(fallback)
		subtotal := item.Subtotal(fallback)
		total = total.Add(subtotal)

		unitF, _ := unit.Float64()
		subtotalF, _ := subtotal.Float64()
		row := []interface{}{
			item.ProductID, item.Title, item.Size, item.Color, item.Quantity,
			unitF, subtotalF, item.FirstImage(),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(CartSheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	totalRow := len(items) + 2
	totalF, _ := total.Float64()
	labelCell, _ := excelize.CoordinatesToCellName(1, totalRow)
	totalCell, _ := excelize.CoordinatesToCellName(7, totalRow)
	if err := f.SetCellValue(CartSheetName, labelCell, totalLabel); err != nil {
		return fmt.Errorf("failed to write total: %w", err)
	}
	if err := f.SetCellValue(CartSheetName, totalCell, totalF); err != nil {
		return fmt.Errorf("failed to write total: %w", err)
	}

	if err := f.SetCellStyle(CartSheetName, "F2", totalCell, priceStyle); err != nil {
		return fmt.Errorf("failed to style prices: %w", err)
	}
	if err := f.SetColWidth(CartSheetName, "B", "B", 32); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// ReadResult is the outcome of ReadCart.
type ReadResult struct {
	Items   []cart.LineItem
	Skipped int
}

// ReadCart parses the first sheet of a workbook laid out like WriteCart.
// Rows without a positive product id are skipped; reading stops at the total row.
func ReadCart(r io.Reader) (*ReadResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in workbook")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in workbook")
	}

	result := &ReadResult{}
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), totalLabel) {
			break
		}

		item, ok := parseRow(row)
		if !ok {
			result.Skipped++
			continue
		}
		result.Items = append(result.Items, item)
	}
	return result, nil
}

func parseRow(row []string) (cart.LineItem, bool) {
	col := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	productID, err := strconv.Atoi(col(0))
	if err != nil || productID <= 0 {
		return cart.LineItem{}, false
	}

	quantity, err := strconv.Atoi(col(4))
	if err != nil || quantity < 1 {
		quantity = 1
	}

	var price float64
	if raw := col(5); raw != "" {
		if price, err = strconv.ParseFloat(strings.TrimPrefix(raw, "$"), 64); err != nil {
			return cart.LineItem{}, false
		}
	}

	key := cart.NewKey(productID, col(2), col(3))
	item := cart.LineItem{
		ProductID: productID,
		Title:     col(1),
		Price:     price,
		Size:      key.Size,
		Color:     key.Color,
		Quantity:  quantity,
		Images:    []string{},
	}
	if image := col(7); image != "" {
		item.Images = []string{image}
	}
	return item, true
}
