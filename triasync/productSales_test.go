package triasync

import (
	"context"
	"testing"

	"github.com/smartpharmacy/crm_backend/models"
)

func TestProcessProductSalesCreatesProducts(t *testing.T) {
	store := newFakeStore()
	workbook := &Workbook{Rows: []Row{
		rowFromCells(map[string]string{"A": "Barkod", "B": "Ürün Adı"}),
		rowFromCells(map[string]string{"A": "8690632961234", "B": "La Roche Effaclar Krem 40ml", "C": "12"}),
		rowFromCells(map[string]string{"A": "8699536123458", "B": "Solgar Vitamin D3 1000IU", "C": "3"}),
		rowFromCells(map[string]string{"A": "8712400765432", "C": "5"}),
		rowFromCells(map[string]string{"A": "GENEL TOPLAM", "C": "20"}),
	}}

	summary, err := ProcessProductSales(context.Background(), store, workbook, 1)
	if err != nil {
		t.Fatalf("ProcessProductSales: %v", err)
	}
	if summary.RowsProcessed != 3 {
		t.Fatalf("RowsProcessed = %d, want 3", summary.RowsProcessed)
	}
	if summary.Created != 3 || summary.Updated != 0 {
		t.Fatalf("Created/Updated = %d/%d, want 3/0", summary.Created, summary.Updated)
	}
	if len(store.products) != 3 {
		t.Fatalf("expected 3 products, got %d", len(store.products))
	}

	if store.products[0].Category != models.ProductCategoryDermo {
		t.Errorf("category = %s, want DERMO", store.products[0].Category)
	}
	if store.products[1].Category != models.ProductCategoryVitamin {
		t.Errorf("category = %s, want VITAMIN", store.products[1].Category)
	}
	// No usable name cell: fall back to a barcode-derived name.
	if store.products[2].Name != "Ürün 8712400765432" {
		t.Errorf("fallback name = %q", store.products[2].Name)
	}
}

func TestProcessProductSalesUpdatesExisting(t *testing.T) {
	store := newFakeStore()
	_ = store.CreateProduct(context.Background(), &models.Product{
		Barcode:  "8690632961234",
		Name:     "Eski İsim Uzun Ürün",
		Category: models.ProductCategoryIlac,
	})

	workbook := &Workbook{Rows: []Row{
		rowFromCells(map[string]string{"A": "8690632961234", "B": "La Roche Effaclar Krem 40ml"}),
	}}
	summary, err := ProcessProductSales(context.Background(), store, workbook, 1)
	if err != nil {
		t.Fatalf("ProcessProductSales: %v", err)
	}
	if summary.Created != 0 || summary.Updated != 1 {
		t.Fatalf("Created/Updated = %d/%d, want 0/1", summary.Created, summary.Updated)
	}
	if len(store.products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(store.products))
	}
	if store.products[0].Name != "La Roche Effaclar Krem 40ml" {
		t.Errorf("name not refreshed: %q", store.products[0].Name)
	}
	if store.products[0].Category != models.ProductCategoryDermo {
		t.Errorf("category not refreshed: %s", store.products[0].Category)
	}
}

func TestProcessProductSalesSkipsRowsWithoutBarcode(t *testing.T) {
	store := newFakeStore()
	workbook := &Workbook{Rows: []Row{
		rowFromCells(map[string]string{"A": "123", "B": "kısa"}),
		rowFromCells(map[string]string{"A": "123456789012345", "B": "on beş haneli çok uzun"}),
	}}

	summary, err := ProcessProductSales(context.Background(), store, workbook, 1)
	if err != nil {
		t.Fatalf("ProcessProductSales: %v", err)
	}
	if summary.RowsProcessed != 0 || len(store.products) != 0 {
		t.Fatalf("expected nothing ingested, got %d rows, %d products", summary.RowsProcessed, len(store.products))
	}
}
