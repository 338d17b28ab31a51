// seed-sample-data loads a handful of demo customers, products and sales so
// the segmentation and task engines have something to work with locally.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smartpharmacy/crm_backend/config"
	"github.com/smartpharmacy/crm_backend/models"
	"github.com/smartpharmacy/crm_backend/utils"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	models.MigrateModels()

	products := []models.Product{
		{Barcode: "8690632961234", Name: "La Roche Effaclar Krem 40ml", Category: models.ProductCategoryDermo, UnitPrice: decimal.NewFromInt(450), UsageDuration: 45, IsActive: utils.NewTrue()},
		{Barcode: "8690632967777", Name: "Vichy Dercos Şampuan 200ml", Category: models.ProductCategoryDermo, UnitPrice: decimal.NewFromInt(380), UsageDuration: 60, IsActive: utils.NewTrue()},
		{Barcode: "8699536123458", Name: "Solgar Vitamin D3 1000IU 100 Kapsül", Category: models.ProductCategoryVitamin, UnitPrice: decimal.NewFromInt(320), UsageDuration: 100, IsActive: utils.NewTrue()},
		{Barcode: "8712400765432", Name: "Aptamil 2 Devam Sütü 800g", Category: models.ProductCategoryMama, UnitPrice: decimal.NewFromInt(520), UsageDuration: 20, IsActive: utils.NewTrue()},
		{Barcode: "8699546334455", Name: "Parol 500mg 20 Tablet", Category: models.ProductCategoryOTC, UnitPrice: decimal.NewFromInt(45), IsActive: utils.NewTrue()},
	}
	for i := range products {
		if err := db.WithContext(ctx).Where("barcode = ?", products[i].Barcode).FirstOrCreate(&products[i]).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to seed product %s: %v\n", products[i].Barcode, err)
			os.Exit(1)
		}
	}

	customers := []models.Customer{
		{CustomerCode: "TRIA00000101", FirstName: "Ayşe", LastName: "Yılmaz", Phone: "05321234501", Segment: models.CustomerSegmentNew, IsActive: utils.NewTrue()},
		{CustomerCode: "TRIA00000102", FirstName: "Mehmet", LastName: "Demir", Phone: "05321234502", Segment: models.CustomerSegmentNew, IsActive: utils.NewTrue()},
		{CustomerCode: "TRIA00000103", FirstName: "Elif Naz", LastName: "Kaya", Phone: "05321234503", Segment: models.CustomerSegmentNew, IsActive: utils.NewTrue()},
	}
	for i := range customers {
		if err := db.WithContext(ctx).Where("customer_code = ?", customers[i].CustomerCode).FirstOrCreate(&customers[i]).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to seed customer %s: %v\n", customers[i].CustomerCode, err)
			os.Exit(1)
		}
	}

	now := time.Now()
	sales := []models.SalesTransaction{
		{CustomerId: customers[0].ID, ProductId: products[0].ID, SaleDate: now.AddDate(0, 0, -50), Quantity: 3, UnitPrice: decimal.NewFromInt(450), TotalAmount: decimal.NewFromInt(1350)},
		{CustomerId: customers[0].ID, ProductId: products[1].ID, SaleDate: now.AddDate(0, 0, -20), Quantity: 2, UnitPrice: decimal.NewFromInt(380), TotalAmount: decimal.NewFromInt(760)},
		{CustomerId: customers[1].ID, ProductId: products[4].ID, SaleDate: now.AddDate(0, 0, -100), Quantity: 1, UnitPrice: decimal.NewFromInt(45), TotalAmount: decimal.NewFromInt(45)},
		{CustomerId: customers[2].ID, ProductId: products[2].ID, SaleDate: now.AddDate(0, 0, -10), Quantity: 2, UnitPrice: decimal.NewFromInt(320), TotalAmount: decimal.NewFromInt(640)},
		{CustomerId: customers[2].ID, ProductId: products[3].ID, SaleDate: now.AddDate(0, 0, -10), Quantity: 8, UnitPrice: decimal.NewFromInt(520), TotalAmount: decimal.NewFromInt(4160)},
	}
	for i := range sales {
		if err := db.WithContext(ctx).Create(&sales[i]).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to seed sale: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Seeded %d products, %d customers, %d sales\n", len(products), len(customers), len(sales))
}
