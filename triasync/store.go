package triasync

import (
	"context"

	"github.com/smartpharmacy/crm_backend/models"
)

// Store is the persistence surface the classifiers need. Lookup methods
// return (nil, nil) when nothing matches.
type Store interface {
	FindCustomerByPhone(ctx context.Context, phone string) (*models.Customer, error)
	FindCustomerByCode(ctx context.Context, code string) (*models.Customer, error)
	FindCustomerByExactName(ctx context.Context, firstName string, lastName string) (*models.Customer, error)
	FindCustomerByFullFirstName(ctx context.Context, fullName string) (*models.Customer, error)
	FindCustomerByFirstNameContains(ctx context.Context, firstName string) (*models.Customer, error)
	CreateCustomer(ctx context.Context, customer *models.Customer) error
	SaveCustomer(ctx context.Context, customer *models.Customer) error

	FindProductByBarcode(ctx context.Context, barcode string) (*models.Product, error)
	FindProductByCode(ctx context.Context, code string) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	SaveProduct(ctx context.Context, product *models.Product) error

	CreateSalesTransaction(ctx context.Context, txn *models.SalesTransaction) error
}
