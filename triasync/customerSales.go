package triasync

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/smartpharmacy/crm_backend/models"
)

// salesColumnMap holds the column letters for the per-customer sales detail
// block. The defaults match the stock POS export; a header row inside the
// sheet overrides them when found.
type salesColumnMap struct {
	Code string
	Name string
	Date string
	Qty  string
	Net  string
	Tax  string
}

func defaultSalesColumns() salesColumnMap {
	return salesColumnMap{
		Code: "G",
		Name: "I",
		Date: "P",
		Qty:  "R",
		Net:  "V",
		Tax:  "Z",
	}
}

var customerMarkers = []string{"müsteri kodu", "müşteri kodu", "musteri kodu"}

// ProcessCustomerSales ingests the per-customer sales report. The sheet is a
// sequence of customer blocks: a marker row naming the customer, an optional
// column header row, then the sale detail rows.
func ProcessCustomerSales(ctx context.Context, store Store, workbook *Workbook, runId uint) (*Summary, error) {
	summary := &Summary{}
	columns := defaultSalesColumns()

	var customer *models.Customer
	var customerCreated bool
	pointsEarned := decimal.Zero

	flush := func() error {
		if customer == nil || pointsEarned.IsZero() {
			return nil
		}
		customer.TotalPoints = customer.TotalPoints.Add(pointsEarned)
		pointsEarned = decimal.Zero
		if err := store.SaveCustomer(ctx, customer); err != nil {
			return err
		}
		if !customerCreated {
			summary.Updated++
		}
		return nil
	}

	for i := range workbook.Rows {
		row := &workbook.Rows[i]

		if code, name, ok := parseCustomerMarker(row); ok {
			if err := flush(); err != nil {
				summary.RowsFailed++
			}
			next, created, err := resolveSalesCustomer(ctx, store, code, name)
			if err != nil {
				summary.RowsFailed++
				customer = nil
				continue
			}
			customer = next
			customerCreated = created
			if created {
				summary.Created++
			}
			continue
		}

		if detectSalesColumns(row, &columns) {
			continue
		}
		if isAggregateRow(row) {
			continue
		}
		if customer == nil {
			continue
		}

		detail, ok := parseSaleDetail(row, columns)
		if !ok {
			continue
		}

		earned, err := recordSale(ctx, store, customer, detail, runId)
		if err != nil {
			summary.RowsFailed++
			continue
		}
		pointsEarned = pointsEarned.Add(earned)
		summary.RowsProcessed++
	}

	if err := flush(); err != nil {
		summary.RowsFailed++
	}
	return summary, nil
}

type saleDetail struct {
	ProductCode string
	ProductName string
	SaleDate    string
	Quantity    int
	NetAmount   decimal.Decimal
	KdvAmount   decimal.Decimal
}

func parseSaleDetail(row *Row, columns salesColumnMap) (*saleDetail, bool) {
	code := strings.TrimSpace(row.Cell(columns.Code))
	if code == "" || code[0] < '0' || code[0] > '9' {
		return nil, false
	}
	name := strings.TrimSpace(row.Cell(columns.Name))
	if name == "" {
		return nil, false
	}

	quantity := int(ParseAmount(row.Cell(columns.Qty)).IntPart())
	if quantity <= 0 {
		quantity = 1
	}

	return &saleDetail{
		ProductCode: code,
		ProductName: name,
		SaleDate:    row.Cell(columns.Date),
		Quantity:    quantity,
		NetAmount:   ParseAmount(row.Cell(columns.Net)),
		KdvAmount:   ParseAmount(row.Cell(columns.Tax)),
	}, true
}

// recordSale writes the transaction and returns the loyalty points earned,
// one point per TL of net amount.
func recordSale(ctx context.Context, store Store, customer *models.Customer, detail *saleDetail, runId uint) (decimal.Decimal, error) {
	quantity := decimal.NewFromInt(int64(detail.Quantity))
	unitPrice := detail.NetAmount
	if detail.Quantity > 0 {
		unitPrice = detail.NetAmount.Div(quantity)
	}

	product, err := store.FindProductByCode(ctx, detail.ProductCode)
	if err != nil {
		return decimal.Zero, err
	}
	if product == nil {
		product = &models.Product{
			Barcode:     detail.ProductCode,
			ProductCode: detail.ProductCode,
			Name:        detail.ProductName,
			Category:    Categorize(detail.ProductName),
			UnitPrice:   unitPrice,
		}
		if err := store.CreateProduct(ctx, product); err != nil {
			return decimal.Zero, err
		}
	}

	txn := &models.SalesTransaction{
		CustomerId:     customer.ID,
		ProductId:      product.ID,
		SaleDate:       ParseDate(detail.SaleDate),
		Quantity:       detail.Quantity,
		UnitPrice:      unitPrice,
		TotalAmount:    detail.NetAmount,
		KdvAmount:      detail.KdvAmount,
		IngestionRunId: &runId,
	}
	if err := store.CreateSalesTransaction(ctx, txn); err != nil {
		return decimal.Zero, err
	}
	return detail.NetAmount, nil
}

// parseCustomerMarker recognizes the block header row naming a customer,
// e.g. "Müşteri Kodu : 1234 - AYSE YILMAZ".
func parseCustomerMarker(row *Row) (string, string, bool) {
	for _, cell := range row.Cells {
		lowered := strings.ToLower(cell.Value)
		for _, marker := range customerMarkers {
			if !strings.Contains(lowered, marker) {
				continue
			}
			_, after, found := strings.Cut(cell.Value, ":")
			if !found {
				return "", "", false
			}

			var code string
			var nameTokens []string
			for _, token := range strings.Fields(after) {
				if token == "-" {
					continue
				}
				if code == "" {
					code = token
					continue
				}
				nameTokens = append(nameTokens, token)
			}
			if code == "" {
				return "", "", false
			}
			return code, strings.Join(nameTokens, " "), true
		}
	}
	return "", "", false
}

// resolveSalesCustomer finds the customer for a block header, trying exact
// name, full-name-as-first-name, then partial first name, and finally
// creating the customer from the report data. The bool reports whether the
// customer was created.
func resolveSalesCustomer(ctx context.Context, store Store, code string, name string) (*models.Customer, bool, error) {
	firstName, lastName := SplitName(name)

	customer, err := store.FindCustomerByExactName(ctx, firstName, lastName)
	if err != nil {
		return nil, false, err
	}
	if customer == nil && name != "" {
		customer, err = store.FindCustomerByFullFirstName(ctx, name)
		if err != nil {
			return nil, false, err
		}
	}
	if customer == nil && firstName != "" {
		customer, err = store.FindCustomerByFirstNameContains(ctx, firstName)
		if err != nil {
			return nil, false, err
		}
	}
	if customer != nil {
		return customer, false, nil
	}

	customer = &models.Customer{
		CustomerCode: "TRIA" + code,
		FirstName:    firstName,
		LastName:     lastName,
		Segment:      models.CustomerSegmentNew,
	}
	if err := store.CreateCustomer(ctx, customer); err != nil {
		return nil, false, err
	}
	return customer, true, nil
}

// detectSalesColumns re-reads the column layout from a header row containing
// "ürün kodu". Returns true when the row was a header row.
func detectSalesColumns(row *Row, columns *salesColumnMap) bool {
	isHeader := false
	for _, cell := range row.Cells {
		lowered := strings.ToLower(strings.TrimSpace(cell.Value))
		if strings.Contains(lowered, "ürün kodu") || strings.Contains(lowered, "urun kodu") {
			isHeader = true
			break
		}
	}
	if !isHeader {
		return false
	}

	for _, cell := range row.Cells {
		lowered := strings.ToLower(strings.TrimSpace(cell.Value))
		switch {
		case strings.Contains(lowered, "ürün kodu") || strings.Contains(lowered, "urun kodu"):
			columns.Code = cell.Column
		case strings.Contains(lowered, "ürün adı") || strings.Contains(lowered, "urun adi"):
			columns.Name = cell.Column
		case strings.Contains(lowered, "tarih"):
			columns.Date = cell.Column
		case strings.Contains(lowered, "miktar"):
			columns.Qty = cell.Column
		case strings.Contains(lowered, "net") && strings.Contains(lowered, "sat"):
			columns.Net = cell.Column
		case strings.Contains(lowered, "kdv"):
			columns.Tax = cell.Column
		}
	}
	return true
}
