package models

import (
	"context"
	"errors"
	"time"

	"github.com/smartpharmacy/crm_backend/config"
	"gorm.io/gorm"
)

// DataStore backs the report ingestion and workflow engines with the live
// database. Lookup methods return (nil, nil) when no row matches so callers
// can distinguish "not found" from a real error.
type DataStore struct{}

func NewDataStore() *DataStore {
	return &DataStore{}
}

func takeOrNil[T any](err error, out *T) (*T, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return out, nil
}

func (s *DataStore) FindCustomerByPhone(ctx context.Context, phone string) (*Customer, error) {
	if phone == "" {
		return nil, nil
	}
	db := config.GetDB()
	var customer Customer
	err := db.WithContext(ctx).
		Where("phone = ? OR phone_secondary = ?", phone, phone).
		Take(&customer).Error
	return takeOrNil(err, &customer)
}

func (s *DataStore) FindCustomerByCode(ctx context.Context, code string) (*Customer, error) {
	if code == "" {
		return nil, nil
	}
	db := config.GetDB()
	var customer Customer
	err := db.WithContext(ctx).Where("customer_code = ?", code).Take(&customer).Error
	return takeOrNil(err, &customer)
}

func (s *DataStore) FindCustomerByExactName(ctx context.Context, firstName string, lastName string) (*Customer, error) {
	db := config.GetDB()
	var customer Customer
	err := db.WithContext(ctx).
		Where("first_name = ? AND last_name = ?", firstName, lastName).
		Take(&customer).Error
	return takeOrNil(err, &customer)
}

func (s *DataStore) FindCustomerByFullFirstName(ctx context.Context, fullName string) (*Customer, error) {
	db := config.GetDB()
	var customer Customer
	err := db.WithContext(ctx).Where("first_name = ?", fullName).Take(&customer).Error
	return takeOrNil(err, &customer)
}

func (s *DataStore) FindCustomerByFirstNameContains(ctx context.Context, firstName string) (*Customer, error) {
	if firstName == "" {
		return nil, nil
	}
	db := config.GetDB()
	var customer Customer
	err := db.WithContext(ctx).
		Where("first_name LIKE ?", "%"+firstName+"%").
		Order("id").
		Take(&customer).Error
	return takeOrNil(err, &customer)
}

func (s *DataStore) CreateCustomer(ctx context.Context, customer *Customer) error {
	db := config.GetDB()
	return db.WithContext(ctx).Create(customer).Error
}

func (s *DataStore) SaveCustomer(ctx context.Context, customer *Customer) error {
	db := config.GetDB()
	return db.WithContext(ctx).Save(customer).Error
}

func (s *DataStore) FindProductByBarcode(ctx context.Context, barcode string) (*Product, error) {
	if barcode == "" {
		return nil, nil
	}
	db := config.GetDB()
	var product Product
	err := db.WithContext(ctx).Where("barcode = ?", barcode).Take(&product).Error
	return takeOrNil(err, &product)
}

func (s *DataStore) FindProductByCode(ctx context.Context, code string) (*Product, error) {
	if code == "" {
		return nil, nil
	}
	db := config.GetDB()
	var product Product
	err := db.WithContext(ctx).Where("product_code = ?", code).Take(&product).Error
	return takeOrNil(err, &product)
}

func (s *DataStore) CreateProduct(ctx context.Context, product *Product) error {
	db := config.GetDB()
	return db.WithContext(ctx).Create(product).Error
}

func (s *DataStore) SaveProduct(ctx context.Context, product *Product) error {
	db := config.GetDB()
	return db.WithContext(ctx).Save(product).Error
}

func (s *DataStore) CreateSalesTransaction(ctx context.Context, txn *SalesTransaction) error {
	db := config.GetDB()
	return db.WithContext(ctx).Create(txn).Error
}

func (s *DataStore) ListCustomers(ctx context.Context) ([]*Customer, error) {
	db := config.GetDB()
	var customers []*Customer
	if err := db.WithContext(ctx).Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

func (s *DataStore) TransactionsForCustomerSince(ctx context.Context, customerId int, since time.Time) ([]*SalesTransaction, error) {
	db := config.GetDB()
	var txns []*SalesTransaction
	err := db.WithContext(ctx).
		Preload("Product").
		Where("customer_id = ? AND sale_date >= ?", customerId, since).
		Order("sale_date").
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}

func (s *DataStore) TransactionsWithUsageDurationSince(ctx context.Context, since time.Time) ([]*SalesTransaction, error) {
	db := config.GetDB()
	var txns []*SalesTransaction
	err := db.WithContext(ctx).
		Preload("Product").
		Joins("JOIN products ON products.id = sales_transactions.product_id").
		Where("products.usage_duration > 0 AND sales_transactions.sale_date >= ?", since).
		Order("sales_transactions.sale_date").
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}

// HasOpenTask reports whether the customer already has a pending or
// in-progress task of the given type. productId of zero matches any product.
func (s *DataStore) HasOpenTask(ctx context.Context, customerId int, taskType TaskType, productId int) (bool, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&Task{}).
		Where("customer_id = ? AND task_type = ? AND status IN ?", customerId, taskType, OpenTaskStatuses)
	if productId > 0 {
		dbCtx = dbCtx.Where("product_id = ?", productId)
	}

	var count int64
	if err := dbCtx.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *DataStore) HasTaskCreatedSince(ctx context.Context, customerId int, taskType TaskType, since time.Time) (bool, error) {
	db := config.GetDB()
	var count int64
	err := db.WithContext(ctx).Model(&Task{}).
		Where("customer_id = ? AND task_type = ? AND created_at >= ?", customerId, taskType, since).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *DataStore) CreateTask(ctx context.Context, task *Task) error {
	db := config.GetDB()
	return db.WithContext(ctx).Create(task).Error
}
