package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/smartpharmacy/crm_backend/models"
)

func usageTxn(customerId int, productId int, daysAgo int, usageDuration int, name string) *models.SalesTransaction {
	return &models.SalesTransaction{
		CustomerId: customerId,
		ProductId:  productId,
		SaleDate:   testNow.AddDate(0, 0, -daysAgo),
		Product:    &models.Product{ID: productId, Name: name, UsageDuration: usageDuration},
	}
}

func TestGenerateReplenishmentTasks(t *testing.T) {
	defer setNow(testNow)()

	store := &fakeStore{
		transactions: []*models.SalesTransaction{
			// 30 day supply bought 40 days ago: reminder has passed.
			usageTxn(1, 10, 40, 30, "Vichy Dercos Şampuan"),
			// 90 day supply bought 10 days ago: reminder is in the future.
			usageTxn(2, 11, 10, 90, "Solgar Vitamin D3"),
		},
	}

	created, err := GenerateReplenishmentTasks(context.Background(), store)
	if err != nil {
		t.Fatalf("GenerateReplenishmentTasks: %v", err)
	}
	if created != 1 {
		t.Fatalf("created = %d, want 1", created)
	}

	task := store.tasks[0]
	if task.TaskType != models.TaskTypeReplenishment {
		t.Errorf("TaskType = %s", task.TaskType)
	}
	if task.CustomerId != 1 {
		t.Errorf("CustomerId = %d", task.CustomerId)
	}
	if task.ProductId == nil || *task.ProductId != 10 {
		t.Errorf("ProductId = %v", task.ProductId)
	}
	if task.Priority != models.TaskPriorityMedium || task.PointsValue != 10 {
		t.Errorf("priority/points = %s/%d", task.Priority, task.PointsValue)
	}
	if task.DueDate == nil || !task.DueDate.Equal(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("DueDate = %v", task.DueDate)
	}

	// Second pass: the open task suppresses a duplicate.
	created, err = GenerateReplenishmentTasks(context.Background(), store)
	if err != nil {
		t.Fatalf("GenerateReplenishmentTasks: %v", err)
	}
	if created != 0 {
		t.Errorf("second pass created = %d, want 0", created)
	}
}

func TestGenerateChurnTasks(t *testing.T) {
	defer setNow(testNow)()

	store := &fakeStore{
		customers: []*models.Customer{
			{ID: 1, FirstName: "Ayşe", LastName: "Yılmaz", ChurnRisk: 80, Segment: models.CustomerSegmentStandard},
			{ID: 2, FirstName: "Mehmet", LastName: "Demir", ChurnRisk: 50, Segment: models.CustomerSegmentStandard},
			{ID: 3, FirstName: "Can", LastName: "Öztürk", ChurnRisk: 40, Segment: models.CustomerSegmentStandard},
			// LOST customers are excluded even at max risk.
			{ID: 4, FirstName: "Elif", LastName: "Kaya", ChurnRisk: 100, Segment: models.CustomerSegmentLost},
		},
	}

	created, err := GenerateChurnTasks(context.Background(), store)
	if err != nil {
		t.Fatalf("GenerateChurnTasks: %v", err)
	}
	if created != 2 {
		t.Fatalf("created = %d, want 2", created)
	}

	high := store.tasks[0]
	if high.Priority != models.TaskPriorityHigh || high.PointsValue != 20 {
		t.Errorf("high risk task = %s/%d, want HIGH/20", high.Priority, high.PointsValue)
	}
	medium := store.tasks[1]
	if medium.Priority != models.TaskPriorityMedium || medium.PointsValue != 15 {
		t.Errorf("medium risk task = %s/%d, want MEDIUM/15", medium.Priority, medium.PointsValue)
	}

	created, err = GenerateChurnTasks(context.Background(), store)
	if err != nil {
		t.Fatalf("GenerateChurnTasks: %v", err)
	}
	if created != 0 {
		t.Errorf("second pass created = %d, want 0", created)
	}
}

func TestGenerateVIPFollowupTasks(t *testing.T) {
	defer setNow(testNow)()

	store := &fakeStore{
		customers: []*models.Customer{
			{ID: 1, FirstName: "Ayşe", LastName: "Yılmaz", Segment: models.CustomerSegmentDermoVIP},
			{ID: 2, FirstName: "Mehmet", LastName: "Demir", Segment: models.CustomerSegmentVIP},
			{ID: 3, FirstName: "Can", LastName: "Öztürk", Segment: models.CustomerSegmentStandard},
		},
		tasks: []*models.Task{
			// Customer 2 was already called this month.
			{ID: 99, CustomerId: 2, TaskType: models.TaskTypeVIPFollowup, Status: models.TaskStatusCompleted, CreatedAt: testNow.AddDate(0, 0, -10)},
		},
	}

	created, err := GenerateVIPFollowupTasks(context.Background(), store)
	if err != nil {
		t.Fatalf("GenerateVIPFollowupTasks: %v", err)
	}
	if created != 1 {
		t.Fatalf("created = %d, want 1", created)
	}

	task := store.tasks[1]
	if task.CustomerId != 1 {
		t.Errorf("CustomerId = %d, want 1", task.CustomerId)
	}
	if task.PointsValue != 15 {
		t.Errorf("PointsValue = %d, want 15 for DERMO_VIP", task.PointsValue)
	}
	if task.DueDate == nil || !task.DueDate.Equal(testNow.AddDate(0, 0, 7)) {
		t.Errorf("DueDate = %v", task.DueDate)
	}
}

func TestGenerateSeasonalTasks(t *testing.T) {
	store := &fakeStore{
		customers: []*models.Customer{
			{ID: 1, FirstName: "Ayşe", LastName: "Yılmaz", Segment: models.CustomerSegmentDermoVIP},
			{ID: 2, FirstName: "Mehmet", LastName: "Demir", Segment: models.CustomerSegmentVIP},
		},
	}

	// July is not a campaign month.
	defer setNow(testNow)()
	created, err := GenerateSeasonalTasks(context.Background(), store)
	if err != nil {
		t.Fatalf("GenerateSeasonalTasks: %v", err)
	}
	if created != 0 {
		t.Fatalf("created = %d in July, want 0", created)
	}

	// May runs the campaign for dermo VIPs only.
	may := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	defer setNow(may)()
	created, err = GenerateSeasonalTasks(context.Background(), store)
	if err != nil {
		t.Fatalf("GenerateSeasonalTasks: %v", err)
	}
	if created != 1 {
		t.Fatalf("created = %d in May, want 1", created)
	}
	task := store.tasks[0]
	if task.TaskType != models.TaskTypeDermoConsult || task.CustomerId != 1 {
		t.Errorf("task = %s for customer %d", task.TaskType, task.CustomerId)
	}

	// Same month rerun is a no-op, even after the task is closed.
	task.Status = models.TaskStatusCompleted
	created, err = GenerateSeasonalTasks(context.Background(), store)
	if err != nil {
		t.Fatalf("GenerateSeasonalTasks: %v", err)
	}
	if created != 0 {
		t.Errorf("rerun created = %d, want 0", created)
	}
}

func TestGenerateAllTasks(t *testing.T) {
	defer setNow(testNow)()

	store := &fakeStore{
		customers: []*models.Customer{
			{ID: 1, FirstName: "Ayşe", LastName: "Yılmaz", ChurnRisk: 90, Segment: models.CustomerSegmentStandard},
			{ID: 2, FirstName: "Mehmet", LastName: "Demir", Segment: models.CustomerSegmentVIP},
		},
		transactions: []*models.SalesTransaction{
			usageTxn(2, 10, 40, 30, "Vichy Dercos Şampuan"),
		},
	}

	summary, err := GenerateAllTasks(context.Background(), store)
	if err != nil {
		t.Fatalf("GenerateAllTasks: %v", err)
	}
	if summary.Replenishment != 1 || summary.Churn != 1 || summary.VIPFollowup != 1 || summary.Seasonal != 0 {
		t.Errorf("summary = %+v", summary)
	}
	if summary.Total != 3 {
		t.Errorf("Total = %d, want 3", summary.Total)
	}
}
