package workflow

import (
	"context"
	"time"

	"github.com/smartpharmacy/crm_backend/models"
)

// fakeStore is an in-memory Store for engine tests.
type fakeStore struct {
	customers    []*models.Customer
	transactions []*models.SalesTransaction
	tasks        []*models.Task
	saves        int
}

func (s *fakeStore) ListCustomers(ctx context.Context) ([]*models.Customer, error) {
	return s.customers, nil
}

func (s *fakeStore) SaveCustomer(ctx context.Context, customer *models.Customer) error {
	s.saves++
	return nil
}

func (s *fakeStore) TransactionsForCustomerSince(ctx context.Context, customerId int, since time.Time) ([]*models.SalesTransaction, error) {
	var out []*models.SalesTransaction
	for _, txn := range s.transactions {
		if txn.CustomerId == customerId && !txn.SaleDate.Before(since) {
			out = append(out, txn)
		}
	}
	return out, nil
}

func (s *fakeStore) TransactionsWithUsageDurationSince(ctx context.Context, since time.Time) ([]*models.SalesTransaction, error) {
	var out []*models.SalesTransaction
	for _, txn := range s.transactions {
		if txn.Product != nil && txn.Product.UsageDuration > 0 && !txn.SaleDate.Before(since) {
			out = append(out, txn)
		}
	}
	return out, nil
}

func (s *fakeStore) HasOpenTask(ctx context.Context, customerId int, taskType models.TaskType, productId int) (bool, error) {
	for _, task := range s.tasks {
		if task.CustomerId != customerId || task.TaskType != taskType {
			continue
		}
		if task.Status != models.TaskStatusPending && task.Status != models.TaskStatusInProgress {
			continue
		}
		if productId > 0 && (task.ProductId == nil || *task.ProductId != productId) {
			continue
		}
		return true, nil
	}
	return false, nil
}

func (s *fakeStore) HasTaskCreatedSince(ctx context.Context, customerId int, taskType models.TaskType, since time.Time) (bool, error) {
	for _, task := range s.tasks {
		if task.CustomerId == customerId && task.TaskType == taskType && !task.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) CreateTask(ctx context.Context, task *models.Task) error {
	task.ID = len(s.tasks) + 1
	if task.Status == "" {
		task.Status = models.TaskStatusPending
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = nowFunc()
	}
	s.tasks = append(s.tasks, task)
	return nil
}

func setNow(t time.Time) func() {
	restore := nowFunc
	nowFunc = func() time.Time { return t }
	return func() { nowFunc = restore }
}
