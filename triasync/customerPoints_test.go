package triasync

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/smartpharmacy/crm_backend/models"
)

func pointsWorkbook() *Workbook {
	return &Workbook{Rows: []Row{
		rowFromCells(map[string]string{"A": "S.N", "L": "Müşteri Adı Soyadı"}),
		rowFromCells(map[string]string{
			"E":  "1.0",
			"L":  "Ayşe Nur Yılmaz",
			"AG": "5321234501",
			"DG": "150,50",
			"DS": "15,05",
		}),
		rowFromCells(map[string]string{
			"E":  "2.0",
			"L":  "Mehmet Demir",
			"AG": "905321234502",
			"CJ": "5321234599",
			"DH": "80,00",
			"DT": "8,00",
		}),
		rowFromCells(map[string]string{"L": "GENEL TOPLAM", "DG": "230,50"}),
	}}
}

func TestProcessCustomerPointsCreatesCustomers(t *testing.T) {
	store := newFakeStore()

	summary, err := ProcessCustomerPoints(context.Background(), store, pointsWorkbook(), 1)
	if err != nil {
		t.Fatalf("ProcessCustomerPoints: %v", err)
	}
	if summary.RowsProcessed != 2 {
		t.Fatalf("RowsProcessed = %d, want 2", summary.RowsProcessed)
	}
	if summary.Created != 2 || summary.Updated != 0 {
		t.Fatalf("Created/Updated = %d/%d, want 2/0", summary.Created, summary.Updated)
	}
	if len(store.customers) != 2 {
		t.Fatalf("expected 2 customers, got %d", len(store.customers))
	}

	first := store.customers[0]
	if first.CustomerCode != "TRIA00000001" {
		t.Errorf("CustomerCode = %q", first.CustomerCode)
	}
	if first.FirstName != "Ayşe Nur" || first.LastName != "Yılmaz" {
		t.Errorf("name split = %q %q", first.FirstName, first.LastName)
	}
	if first.Phone != "05321234501" {
		t.Errorf("Phone = %q", first.Phone)
	}
	if !first.TotalPoints.Equal(decimal.RequireFromString("150.50")) {
		t.Errorf("TotalPoints = %s", first.TotalPoints)
	}
	if first.Segment != models.CustomerSegmentNew {
		t.Errorf("Segment = %s", first.Segment)
	}

	second := store.customers[1]
	if second.Phone != "05321234502" {
		t.Errorf("normalized phone = %q", second.Phone)
	}
	if second.PhoneSecondary != "05321234599" {
		t.Errorf("secondary phone = %q", second.PhoneSecondary)
	}
}

func TestProcessCustomerPointsMatchesByPhone(t *testing.T) {
	store := newFakeStore()
	existing := &models.Customer{
		CustomerCode:  "CRM00000042",
		FirstName:     "Ayşe Nur",
		LastName:      "Yılmaz",
		Phone:         "05321234501",
		TotalPoints:   decimal.NewFromInt(10),
		PointsTLValue: decimal.NewFromInt(1),
	}
	_ = store.CreateCustomer(context.Background(), existing)

	summary, err := ProcessCustomerPoints(context.Background(), store, pointsWorkbook(), 1)
	if err != nil {
		t.Fatalf("ProcessCustomerPoints: %v", err)
	}
	if summary.RowsProcessed != 2 {
		t.Fatalf("RowsProcessed = %d, want 2", summary.RowsProcessed)
	}
	// Matched by phone, so only the second report row created a customer.
	if summary.Created != 1 || summary.Updated != 1 {
		t.Fatalf("Created/Updated = %d/%d, want 1/1", summary.Created, summary.Updated)
	}
	if len(store.customers) != 2 {
		t.Fatalf("expected 2 customers, got %d", len(store.customers))
	}
	if !existing.TotalPoints.Equal(decimal.RequireFromString("150.50")) {
		t.Errorf("TotalPoints not refreshed: %s", existing.TotalPoints)
	}
	if existing.CustomerCode != "CRM00000042" {
		t.Errorf("code overwritten: %q", existing.CustomerCode)
	}
}

func TestProcessCustomerPointsMatchesByCode(t *testing.T) {
	store := newFakeStore()
	existing := &models.Customer{
		CustomerCode: "TRIA00000002",
		FirstName:    "Mehmet",
		LastName:     "Demir",
		// Phone differs from the report, so the code match applies.
		Phone: "05559998877",
	}
	_ = store.CreateCustomer(context.Background(), existing)

	if _, err := ProcessCustomerPoints(context.Background(), store, pointsWorkbook(), 1); err != nil {
		t.Fatalf("ProcessCustomerPoints: %v", err)
	}
	if !existing.TotalPoints.Equal(decimal.RequireFromString("80")) {
		t.Errorf("TotalPoints = %s, want 80", existing.TotalPoints)
	}
	if existing.PhoneSecondary != "05321234599" {
		t.Errorf("empty secondary phone not filled: %q", existing.PhoneSecondary)
	}
}

func TestProcessCustomerPointsFallbackStartRow(t *testing.T) {
	store := newFakeStore()
	workbook := &Workbook{Rows: []Row{
		rowFromCells(map[string]string{"A": "Rapor Başlığı"}),
		rowFromCells(map[string]string{"E": "5", "L": "Zeynep Kaya", "DG": "10,00"}),
	}}

	summary, err := ProcessCustomerPoints(context.Background(), store, workbook, 1)
	if err != nil {
		t.Fatalf("ProcessCustomerPoints: %v", err)
	}
	if summary.RowsProcessed != 1 {
		t.Fatalf("RowsProcessed = %d, want 1", summary.RowsProcessed)
	}
	if store.customers[0].CustomerCode != "TRIA00000005" {
		t.Errorf("CustomerCode = %q", store.customers[0].CustomerCode)
	}
}
