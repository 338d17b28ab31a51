package triasync

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/smartpharmacy/crm_backend/models"
)

// Column layout of the loyalty points export. The report is wide and
// sparsely filled, so several candidate columns are tried per field.
var (
	pointsSerialColumns = []string{"E", "D", "C", "A"}
	pointsValueColumns  = []string{"DG", "DH", "DF", "DI"}
	pointsTLColumns     = []string{"DS", "DT", "DQ"}
)

const (
	pointsNameColumn           = "L"
	pointsPhoneColumn          = "AG"
	pointsSecondaryPhoneColumn = "CJ"
)

// ProcessCustomerPoints ingests the loyalty points report. Customers are
// matched by phone first, then by loyalty code, and created when neither
// matches.
func ProcessCustomerPoints(ctx context.Context, store Store, workbook *Workbook, runId uint) (*Summary, error) {
	summary := &Summary{}

	start := findPointsHeaderRow(workbook)
	for i := start; i < len(workbook.Rows); i++ {
		row := &workbook.Rows[i]
		if isAggregateRow(row) {
			continue
		}

		serial := firstSerial(row, pointsSerialColumns)
		name := strings.TrimSpace(row.Cell(pointsNameColumn))
		if serial <= 0 || name == "" {
			continue
		}

		created, err := upsertPointsCustomer(ctx, store, row, serial, name)
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

// upsertPointsCustomer writes one report row and reports whether a customer
// was created for it.
func upsertPointsCustomer(ctx context.Context, store Store, row *Row, serial int, name string) (bool, error) {
	phone := NormalizePhone(row.Cell(pointsPhoneColumn))
	secondaryPhone := NormalizePhone(row.Cell(pointsSecondaryPhoneColumn))
	points := firstPositiveAmount(row, pointsValueColumns)
	tlValue := firstPositiveAmount(row, pointsTLColumns)
	code := fmt.Sprintf("TRIA%08d", serial)
	firstName, lastName := SplitName(name)

	customer, err := store.FindCustomerByPhone(ctx, phone)
	if err != nil {
		return false, err
	}
	if customer == nil {
		customer, err = store.FindCustomerByCode(ctx, code)
		if err != nil {
			return false, err
		}
	}

	if customer == nil {
		customer = &models.Customer{
			CustomerCode:   code,
			FirstName:      firstName,
			LastName:       lastName,
			Phone:          phone,
			PhoneSecondary: secondaryPhone,
			TotalPoints:    points,
			PointsTLValue:  tlValue,
			Segment:        models.CustomerSegmentNew,
		}
		return true, store.CreateCustomer(ctx, customer)
	}

	customer.TotalPoints = points
	customer.PointsTLValue = tlValue
	if customer.PhoneSecondary == "" && secondaryPhone != "" {
		customer.PhoneSecondary = secondaryPhone
	}
	return false, store.SaveCustomer(ctx, customer)
}

// findPointsHeaderRow locates the header and returns the first data row
// index. Without a recognizable header the data is assumed to start at the
// second row.
func findPointsHeaderRow(workbook *Workbook) int {
	for i := range workbook.Rows {
		for _, cell := range workbook.Rows[i].Cells {
			value := strings.TrimSpace(cell.Value)
			if value == "S.N" || strings.Contains(value, "Müşteri Adı Soyadı") {
				return i + 1
			}
		}
	}
	return 1
}

func isAggregateRow(row *Row) bool {
	for _, cell := range row.Cells {
		lowered := strings.ToLower(cell.Value)
		if strings.Contains(lowered, "toplam") || strings.Contains(lowered, "genel") {
			return true
		}
	}
	return false
}

func firstSerial(row *Row, columns []string) int {
	for _, column := range columns {
		raw := strings.TrimSpace(row.Cell(column))
		if raw == "" {
			continue
		}
		if f, err := strconv.ParseFloat(raw, 64); err == nil && f > 0 {
			return int(f)
		}
	}
	return 0
}

func firstPositiveAmount(row *Row, columns []string) decimal.Decimal {
	for _, column := range columns {
		value := ParseAmount(row.Cell(column))
		if value.IsPositive() {
			return value
		}
	}
	return decimal.Zero
}

// SplitName separates a full name into first and last parts. The final token
// is the last name, everything before it the first name.
func SplitName(fullName string) (string, string) {
	tokens := strings.Fields(strings.TrimSpace(fullName))
	if len(tokens) == 0 {
		return "", ""
	}
	if len(tokens) == 1 {
		return tokens[0], ""
	}
	return strings.Join(tokens[:len(tokens)-1], " "), tokens[len(tokens)-1]
}
