package workflow

import (
	"context"
	"time"

	"github.com/smartpharmacy/crm_backend/models"
)

// Store is the persistence surface the segmentation and task engines need.
type Store interface {
	ListCustomers(ctx context.Context) ([]*models.Customer, error)
	SaveCustomer(ctx context.Context, customer *models.Customer) error

	TransactionsForCustomerSince(ctx context.Context, customerId int, since time.Time) ([]*models.SalesTransaction, error)
	TransactionsWithUsageDurationSince(ctx context.Context, since time.Time) ([]*models.SalesTransaction, error)

	HasOpenTask(ctx context.Context, customerId int, taskType models.TaskType, productId int) (bool, error)
	HasTaskCreatedSince(ctx context.Context, customerId int, taskType models.TaskType, since time.Time) (bool, error)
	CreateTask(ctx context.Context, task *models.Task) error
}
