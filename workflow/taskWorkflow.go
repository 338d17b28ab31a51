package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/smartpharmacy/crm_backend/config"
	"github.com/smartpharmacy/crm_backend/models"
	"github.com/smartpharmacy/crm_backend/utils"
)

const (
	replenishmentWindowDays = 60
	replenishmentLeadDays   = 5
	churnRiskTaskThreshold  = 50
	churnRiskHighThreshold  = 75
	vipFollowupIntervalDays = 30
)

// Seasonal dermo campaigns run in May and October.
var seasonalMonths = map[time.Month]bool{
	time.May:     true,
	time.October: true,
}

type TaskGenSummary struct {
	Replenishment int `json:"replenishment"`
	Churn         int `json:"churn"`
	VIPFollowup   int `json:"vipFollowup"`
	Seasonal      int `json:"seasonal"`
	Total         int `json:"total"`
}

// GenerateAllTasks runs every task generator. Each generator checks for an
// existing task before creating one, so the pass is safe to rerun.
func GenerateAllTasks(ctx context.Context, store Store) (*TaskGenSummary, error) {
	summary := &TaskGenSummary{}

	count, err := GenerateReplenishmentTasks(ctx, store)
	if err != nil {
		return nil, err
	}
	summary.Replenishment = count

	count, err = GenerateChurnTasks(ctx, store)
	if err != nil {
		return nil, err
	}
	summary.Churn = count

	count, err = GenerateVIPFollowupTasks(ctx, store)
	if err != nil {
		return nil, err
	}
	summary.VIPFollowup = count

	count, err = GenerateSeasonalTasks(ctx, store)
	if err != nil {
		return nil, err
	}
	summary.Seasonal = count

	summary.Total = summary.Replenishment + summary.Churn + summary.VIPFollowup + summary.Seasonal

	config.GetLogger().WithFields(map[string]interface{}{
		"replenishment": summary.Replenishment,
		"churn":         summary.Churn,
		"vipFollowup":   summary.VIPFollowup,
		"seasonal":      summary.Seasonal,
	}).Info("Task generation pass completed")
	return summary, nil
}

// GenerateReplenishmentTasks creates a callback task when a purchased
// product is about to run out, five days before the expected usage duration
// elapses.
func GenerateReplenishmentTasks(ctx context.Context, store Store) (int, error) {
	now := nowFunc()
	today := utils.BeginningOfDay(now)
	windowStart := now.AddDate(0, 0, -replenishmentWindowDays)

	txns, err := store.TransactionsWithUsageDurationSince(ctx, windowStart)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, txn := range txns {
		if txn.Product == nil || txn.Product.UsageDuration <= 0 {
			continue
		}

		reminderDate := txn.SaleDate.AddDate(0, 0, txn.Product.UsageDuration-replenishmentLeadDays)
		if reminderDate.After(now) {
			continue
		}

		exists, err := store.HasOpenTask(ctx, txn.CustomerId, models.TaskTypeReplenishment, txn.ProductId)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}

		productId := txn.ProductId
		dueDate := today
		task := &models.Task{
			CustomerId:  txn.CustomerId,
			ProductId:   &productId,
			TaskType:    models.TaskTypeReplenishment,
			Priority:    models.TaskPriorityMedium,
			Title:       fmt.Sprintf("%s yenileme hatırlatması", txn.Product.Name),
			Description: fmt.Sprintf("%s ürünü bitmek üzere, müşteriyi arayıp yenileme önerin.", txn.Product.Name),
			DueDate:     &dueDate,
			PointsValue: 10,
		}
		if err := store.CreateTask(ctx, task); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// GenerateChurnTasks creates a win-back call task for customers drifting
// away. Customers already marked LOST are left to campaigns instead.
func GenerateChurnTasks(ctx context.Context, store Store) (int, error) {
	customers, err := store.ListCustomers(ctx)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, customer := range customers {
		if customer.ChurnRisk < churnRiskTaskThreshold {
			continue
		}
		if customer.Segment == models.CustomerSegmentLost {
			continue
		}

		exists, err := store.HasOpenTask(ctx, customer.ID, models.TaskTypeChurnPrevention, 0)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}

		priority := models.TaskPriorityMedium
		points := 15
		if customer.ChurnRisk >= churnRiskHighThreshold {
			priority = models.TaskPriorityHigh
			points = 20
		}

		task := &models.Task{
			CustomerId:  customer.ID,
			TaskType:    models.TaskTypeChurnPrevention,
			Priority:    priority,
			Title:       fmt.Sprintf("%s uzun süredir gelmedi", customer.FullName()),
			Description: "Müşteriyi arayıp durumunu sorun ve eczaneye davet edin.",
			PointsValue: points,
		}
		if err := store.CreateTask(ctx, task); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// GenerateVIPFollowupTasks schedules a monthly relationship call for VIP and
// dermo VIP customers.
func GenerateVIPFollowupTasks(ctx context.Context, store Store) (int, error) {
	now := nowFunc()
	intervalStart := now.AddDate(0, 0, -vipFollowupIntervalDays)

	customers, err := store.ListCustomers(ctx)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, customer := range customers {
		if customer.Segment != models.CustomerSegmentVIP && customer.Segment != models.CustomerSegmentDermoVIP {
			continue
		}

		recent, err := store.HasTaskCreatedSince(ctx, customer.ID, models.TaskTypeVIPFollowup, intervalStart)
		if err != nil {
			return created, err
		}
		if recent {
			continue
		}

		points := 10
		if customer.Segment == models.CustomerSegmentDermoVIP {
			points = 15
		}
		dueDate := now.AddDate(0, 0, 7)

		task := &models.Task{
			CustomerId:  customer.ID,
			TaskType:    models.TaskTypeVIPFollowup,
			Priority:    models.TaskPriorityMedium,
			Title:       fmt.Sprintf("%s VIP takip araması", customer.FullName()),
			Description: "Memnuniyeti sorun, yeni ürünlerden bahsedin.",
			DueDate:     &dueDate,
			PointsValue: points,
		}
		if err := store.CreateTask(ctx, task); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// GenerateSeasonalTasks invites dermo VIP customers to a skin care
// consultation during campaign months, at most once per month.
func GenerateSeasonalTasks(ctx context.Context, store Store) (int, error) {
	now := nowFunc()
	if !seasonalMonths[now.Month()] {
		return 0, nil
	}
	monthStart := utils.BeginningOfMonth(now)

	customers, err := store.ListCustomers(ctx)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, customer := range customers {
		if customer.Segment != models.CustomerSegmentDermoVIP {
			continue
		}

		recent, err := store.HasTaskCreatedSince(ctx, customer.ID, models.TaskTypeDermoConsult, monthStart)
		if err != nil {
			return created, err
		}
		if recent {
			continue
		}

		dueDate := now.AddDate(0, 0, 14)
		task := &models.Task{
			CustomerId:  customer.ID,
			TaskType:    models.TaskTypeDermoConsult,
			Priority:    models.TaskPriorityMedium,
			Title:       fmt.Sprintf("%s cilt bakım danışmanlığı daveti", customer.FullName()),
			Description: "Sezonluk dermokozmetik kampanyası için danışmanlık randevusu önerin.",
			DueDate:     &dueDate,
			PointsValue: 15,
		}
		if err := store.CreateTask(ctx, task); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}
