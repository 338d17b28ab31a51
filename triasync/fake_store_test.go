package triasync

import (
	"context"
	"strings"

	"github.com/smartpharmacy/crm_backend/models"
)

// fakeStore is an in-memory Store for classifier tests.
type fakeStore struct {
	customers    []*models.Customer
	products     []*models.Product
	transactions []*models.SalesTransaction
	nextId       int
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextId: 1}
}

func (s *fakeStore) FindCustomerByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	if phone == "" {
		return nil, nil
	}
	for _, c := range s.customers {
		if c.Phone == phone || c.PhoneSecondary == phone {
			return c, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) FindCustomerByCode(ctx context.Context, code string) (*models.Customer, error) {
	if code == "" {
		return nil, nil
	}
	for _, c := range s.customers {
		if c.CustomerCode == code {
			return c, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) FindCustomerByExactName(ctx context.Context, firstName string, lastName string) (*models.Customer, error) {
	for _, c := range s.customers {
		if c.FirstName == firstName && c.LastName == lastName {
			return c, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) FindCustomerByFullFirstName(ctx context.Context, fullName string) (*models.Customer, error) {
	for _, c := range s.customers {
		if c.FirstName == fullName {
			return c, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) FindCustomerByFirstNameContains(ctx context.Context, firstName string) (*models.Customer, error) {
	if firstName == "" {
		return nil, nil
	}
	for _, c := range s.customers {
		if strings.Contains(c.FirstName, firstName) {
			return c, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	customer.ID = s.nextId
	s.nextId++
	s.customers = append(s.customers, customer)
	return nil
}

func (s *fakeStore) SaveCustomer(ctx context.Context, customer *models.Customer) error {
	return nil
}

func (s *fakeStore) FindProductByBarcode(ctx context.Context, barcode string) (*models.Product, error) {
	if barcode == "" {
		return nil, nil
	}
	for _, p := range s.products {
		if p.Barcode == barcode {
			return p, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) FindProductByCode(ctx context.Context, code string) (*models.Product, error) {
	if code == "" {
		return nil, nil
	}
	for _, p := range s.products {
		if p.ProductCode == code {
			return p, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) CreateProduct(ctx context.Context, product *models.Product) error {
	product.ID = s.nextId
	s.nextId++
	s.products = append(s.products, product)
	return nil
}

func (s *fakeStore) SaveProduct(ctx context.Context, product *models.Product) error {
	return nil
}

func (s *fakeStore) CreateSalesTransaction(ctx context.Context, txn *models.SalesTransaction) error {
	txn.ID = s.nextId
	s.nextId++
	s.transactions = append(s.transactions, txn)
	return nil
}

func rowFromCells(cells map[string]string) Row {
	row := Row{}
	for column, value := range cells {
		row.Cells = append(row.Cells, Cell{Column: column, Value: value})
	}
	return row
}
