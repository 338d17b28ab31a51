package triasync

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/smartpharmacy/crm_backend/models"
)

var barcodePattern = regexp.MustCompile(`^\d{8,14}$`)

// ProcessProductSales ingests the product sales report. Products are keyed
// by barcode; names and categories refresh on every upload.
func ProcessProductSales(ctx context.Context, store Store, workbook *Workbook, runId uint) (*Summary, error) {
	summary := &Summary{}

	for i := range workbook.Rows {
		row := &workbook.Rows[i]
		if isAggregateRow(row) {
			continue
		}

		barcode := findBarcode(row)
		if barcode == "" {
			continue
		}
		name := findProductName(row)

		created, err := upsertProduct(ctx, store, barcode, name)
		if err != nil {
			summary.RowsFailed++
			continue
		}
		if created {
			summary.Created++
		} else {
			summary.Updated++
		}
		summary.RowsProcessed++
	}
	return summary, nil
}

// upsertProduct writes one report row and reports whether a product was
// created for it.
func upsertProduct(ctx context.Context, store Store, barcode string, name string) (bool, error) {
	product, err := store.FindProductByBarcode(ctx, barcode)
	if err != nil {
		return false, err
	}

	if product == nil {
		if name == "" {
			name = "Ürün " + barcode
		}
		product = &models.Product{
			Barcode:  barcode,
			Name:     name,
			Category: Categorize(name),
		}
		return true, store.CreateProduct(ctx, product)
	}

	if name != "" {
		product.Name = name
		product.Category = Categorize(name)
	}
	return false, store.SaveProduct(ctx, product)
}

func findBarcode(row *Row) string {
	for _, cell := range row.Cells {
		value := strings.TrimSpace(cell.Value)
		if barcodePattern.MatchString(value) {
			return value
		}
	}
	return ""
}

// findProductName returns the first cell long enough to be a product name
// and not purely numeric.
func findProductName(row *Row) string {
	for _, cell := range row.Cells {
		value := strings.TrimSpace(cell.Value)
		if utf8.RuneCountInString(value) <= 10 {
			continue
		}
		if _, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64); err == nil {
			continue
		}
		return value
	}
	return ""
}
