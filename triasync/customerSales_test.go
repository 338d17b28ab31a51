package triasync

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smartpharmacy/crm_backend/models"
)

func salesWorkbook() *Workbook {
	return &Workbook{Rows: []Row{
		rowFromCells(map[string]string{"A": "Müşteri Kodu : 1042 - AYŞE YILMAZ"}),
		rowFromCells(map[string]string{
			"G": "8690632961234",
			"I": "La Roche Effaclar Krem 40ml",
			"P": "15/03/2024",
			"R": "2",
			"V": "900,00",
			"Z": "90,00",
		}),
		rowFromCells(map[string]string{
			"G": "8699546334455",
			"I": "Parol 500mg 20 Tablet",
			"P": "16/03/2024",
			"R": "1",
			"V": "45,00",
			"Z": "4,50",
		}),
		rowFromCells(map[string]string{"I": "TOPLAM", "V": "945,00"}),
	}}
}

func TestProcessCustomerSalesCreatesTransactions(t *testing.T) {
	store := newFakeStore()

	summary, err := ProcessCustomerSales(context.Background(), store, salesWorkbook(), 7)
	if err != nil {
		t.Fatalf("ProcessCustomerSales: %v", err)
	}
	if summary.RowsProcessed != 2 {
		t.Fatalf("RowsProcessed = %d, want 2", summary.RowsProcessed)
	}
	if summary.Created != 1 || summary.Updated != 0 {
		t.Fatalf("Created/Updated = %d/%d, want 1/0", summary.Created, summary.Updated)
	}

	if len(store.customers) != 1 {
		t.Fatalf("expected 1 customer, got %d", len(store.customers))
	}
	customer := store.customers[0]
	if customer.CustomerCode != "TRIA1042" {
		t.Errorf("CustomerCode = %q", customer.CustomerCode)
	}
	if customer.FirstName != "AYŞE" || customer.LastName != "YILMAZ" {
		t.Errorf("name = %q %q", customer.FirstName, customer.LastName)
	}
	// 1 TL of net sales earns 1 loyalty point.
	if !customer.TotalPoints.Equal(decimal.RequireFromString("945")) {
		t.Errorf("TotalPoints = %s, want 945", customer.TotalPoints)
	}

	if len(store.transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(store.transactions))
	}
	first := store.transactions[0]
	if first.Quantity != 2 {
		t.Errorf("Quantity = %d", first.Quantity)
	}
	if !first.UnitPrice.Equal(decimal.RequireFromString("450")) {
		t.Errorf("UnitPrice = %s, want 450", first.UnitPrice)
	}
	if !first.SaleDate.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("SaleDate = %v", first.SaleDate)
	}
	if first.IngestionRunId == nil || *first.IngestionRunId != 7 {
		t.Errorf("IngestionRunId = %v", first.IngestionRunId)
	}

	if len(store.products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(store.products))
	}
	if store.products[0].Category != models.ProductCategoryDermo {
		t.Errorf("category = %s", store.products[0].Category)
	}
}

func TestProcessCustomerSalesMatchesExistingCustomer(t *testing.T) {
	store := newFakeStore()
	existing := &models.Customer{
		CustomerCode: "CRM00000009",
		FirstName:    "AYŞE",
		LastName:     "YILMAZ",
		TotalPoints:  decimal.NewFromInt(100),
	}
	_ = store.CreateCustomer(context.Background(), existing)

	summary, err := ProcessCustomerSales(context.Background(), store, salesWorkbook(), 1)
	if err != nil {
		t.Fatalf("ProcessCustomerSales: %v", err)
	}
	if summary.Created != 0 || summary.Updated != 1 {
		t.Fatalf("Created/Updated = %d/%d, want 0/1", summary.Created, summary.Updated)
	}
	if len(store.customers) != 1 {
		t.Fatalf("expected no new customer, got %d", len(store.customers))
	}
	if !existing.TotalPoints.Equal(decimal.RequireFromString("1045")) {
		t.Errorf("TotalPoints = %s, want 1045", existing.TotalPoints)
	}
}

func TestProcessCustomerSalesPartialNameMatch(t *testing.T) {
	store := newFakeStore()
	existing := &models.Customer{
		CustomerCode: "CRM00000010",
		FirstName:    "AYŞE NUR",
		LastName:     "KAYA",
	}
	_ = store.CreateCustomer(context.Background(), existing)

	workbook := &Workbook{Rows: []Row{
		rowFromCells(map[string]string{"A": "Müşteri Kodu : 55 - AYŞE DEMİR"}),
		rowFromCells(map[string]string{"G": "8699546334455", "I": "Parol 500mg", "P": "01/02/2024", "R": "1", "V": "45,00", "Z": "4,50"}),
	}}
	if _, err := ProcessCustomerSales(context.Background(), store, workbook, 1); err != nil {
		t.Fatalf("ProcessCustomerSales: %v", err)
	}
	// "AYŞE" matches by first-name containment, so no customer is created.
	if len(store.customers) != 1 {
		t.Fatalf("expected partial match, got %d customers", len(store.customers))
	}
	if len(store.transactions) != 1 || store.transactions[0].CustomerId != existing.ID {
		t.Fatalf("transaction not attached to matched customer")
	}
}

func TestProcessCustomerSalesHeaderOverridesColumns(t *testing.T) {
	store := newFakeStore()
	workbook := &Workbook{Rows: []Row{
		rowFromCells(map[string]string{"A": "Müşteri Kodu : 77 - CAN ÖZTÜRK"}),
		rowFromCells(map[string]string{
			"B": "Ürün Kodu",
			"C": "Ürün Adı",
			"D": "Tarih",
			"E": "Miktar",
			"F": "Net Satış",
			"H": "KDV",
		}),
		rowFromCells(map[string]string{
			"B": "8690632967777",
			"C": "Vichy Dercos Şampuan",
			"D": "10/04/2024",
			"E": "3",
			"F": "1.140,00",
			"H": "114,00",
		}),
	}}

	summary, err := ProcessCustomerSales(context.Background(), store, workbook, 1)
	if err != nil {
		t.Fatalf("ProcessCustomerSales: %v", err)
	}
	if summary.RowsProcessed != 1 {
		t.Fatalf("RowsProcessed = %d, want 1", summary.RowsProcessed)
	}
	txn := store.transactions[0]
	if txn.Quantity != 3 {
		t.Errorf("Quantity = %d", txn.Quantity)
	}
	if !txn.TotalAmount.Equal(decimal.RequireFromString("1140")) {
		t.Errorf("TotalAmount = %s", txn.TotalAmount)
	}
	if !txn.UnitPrice.Equal(decimal.RequireFromString("380")) {
		t.Errorf("UnitPrice = %s", txn.UnitPrice)
	}
}

func TestProcessCustomerSalesNewProductGetsUnitPrice(t *testing.T) {
	store := newFakeStore()
	workbook := &Workbook{Rows: []Row{
		rowFromCells(map[string]string{"A": "Müşteri Kodu : 12 - ELİF KAYA"}),
		rowFromCells(map[string]string{
			"G": "8690001112223",
			"I": "Bepanthol Cilt Bakım Kremi",
			"P": "05/05/2024",
			"R": "2",
			"V": "200,00",
			"Z": "20,00",
		}),
	}}

	if _, err := ProcessCustomerSales(context.Background(), store, workbook, 1); err != nil {
		t.Fatalf("ProcessCustomerSales: %v", err)
	}
	if len(store.products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(store.products))
	}
	if !store.products[0].UnitPrice.Equal(decimal.RequireFromString("100")) {
		t.Errorf("UnitPrice = %s, want 100 (net 200 over qty 2)", store.products[0].UnitPrice)
	}
}

func TestProcessCustomerSalesSkipsRowsWithoutProductName(t *testing.T) {
	store := newFakeStore()
	workbook := &Workbook{Rows: []Row{
		rowFromCells(map[string]string{"A": "Müşteri Kodu : 13 - CAN DEMİR"}),
		rowFromCells(map[string]string{"G": "8699546334455", "P": "01/02/2024", "R": "1", "V": "45,00"}),
	}}

	summary, err := ProcessCustomerSales(context.Background(), store, workbook, 1)
	if err != nil {
		t.Fatalf("ProcessCustomerSales: %v", err)
	}
	if summary.RowsProcessed != 0 || len(store.transactions) != 0 || len(store.products) != 0 {
		t.Fatalf("expected name-less detail row to be skipped")
	}
}

func TestProcessCustomerSalesIgnoresDetailBeforeMarker(t *testing.T) {
	store := newFakeStore()
	workbook := &Workbook{Rows: []Row{
		rowFromCells(map[string]string{"G": "8699546334455", "I": "Parol 500mg", "V": "45,00"}),
	}}

	summary, err := ProcessCustomerSales(context.Background(), store, workbook, 1)
	if err != nil {
		t.Fatalf("ProcessCustomerSales: %v", err)
	}
	if summary.RowsProcessed != 0 || len(store.transactions) != 0 {
		t.Fatalf("expected nothing ingested")
	}
}
