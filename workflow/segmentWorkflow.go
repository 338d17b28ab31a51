package workflow

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smartpharmacy/crm_backend/config"
	"github.com/smartpharmacy/crm_backend/models"
)

const (
	segmentWindowDays = 180
	lostAfterDays     = 120
)

var (
	vipThreshold      = decimal.NewFromInt(5000)
	dermoVipThreshold = decimal.NewFromInt(2000)
)

var nowFunc = time.Now

// SegmentationSummary reports one pass: how many customers were looked at,
// how many changed, and the resulting distribution. AtRisk counts churn risk
// of 50 or more, VIP counts both VIP tiers.
type SegmentationSummary struct {
	Total    int                            `json:"total"`
	Updated  int                            `json:"updated"`
	AtRisk   int                            `json:"atRisk"`
	VIP      int                            `json:"vip"`
	Segments map[models.CustomerSegment]int `json:"segments"`
}

const atRiskThreshold = 50

// UpdateSegments recomputes segment, spending aggregates and churn risk for
// every customer from the last 180 days of transactions. Running it twice in
// a row is a no-op.
func UpdateSegments(ctx context.Context, store Store) (*SegmentationSummary, error) {
	logger := config.GetLogger()
	now := nowFunc()
	windowStart := now.AddDate(0, 0, -segmentWindowDays)

	customers, err := store.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}

	summary := &SegmentationSummary{
		Total:    len(customers),
		Segments: map[models.CustomerSegment]int{},
	}

	for _, customer := range customers {
		txns, err := store.TransactionsForCustomerSince(ctx, customer.ID, windowStart)
		if err != nil {
			return nil, err
		}

		changed := applySegmentation(customer, txns, now)
		summary.Segments[customer.Segment]++
		if customer.ChurnRisk >= atRiskThreshold {
			summary.AtRisk++
		}
		if customer.Segment == models.CustomerSegmentVIP || customer.Segment == models.CustomerSegmentDermoVIP {
			summary.VIP++
		}
		if !changed {
			continue
		}
		if err := store.SaveCustomer(ctx, customer); err != nil {
			return nil, err
		}
		summary.Updated++
	}

	logger.WithFields(map[string]interface{}{
		"customers": len(customers),
		"updated":   summary.Updated,
	}).Info("Segmentation pass completed")
	return summary, nil
}

func applySegmentation(customer *models.Customer, txns []*models.SalesTransaction, now time.Time) bool {
	segment := customer.Segment
	totalSpend := customer.TotalSpending
	dermoSpend := customer.DermoSpending
	lastVisit := customer.LastVisitDate

	if len(txns) == 0 {
		switch {
		case lastVisit != nil && daysSince(*lastVisit, now) > lostAfterDays:
			segment = models.CustomerSegmentLost
		case lastVisit == nil:
			segment = models.CustomerSegmentNew
		}
	} else {
		totalSpend = decimal.Zero
		dermoSpend = decimal.Zero
		var latest time.Time
		for _, txn := range txns {
			totalSpend = totalSpend.Add(txn.TotalAmount)
			if txn.Product != nil && txn.Product.Category == models.ProductCategoryDermo {
				dermoSpend = dermoSpend.Add(txn.TotalAmount)
			}
			if txn.SaleDate.After(latest) {
				latest = txn.SaleDate
			}
		}
		lastVisit = &latest

		switch {
		case dermoSpend.GreaterThanOrEqual(dermoVipThreshold):
			segment = models.CustomerSegmentDermoVIP
		case totalSpend.GreaterThanOrEqual(vipThreshold):
			segment = models.CustomerSegmentVIP
		case daysSince(latest, now) > lostAfterDays:
			segment = models.CustomerSegmentLost
		default:
			segment = models.CustomerSegmentStandard
		}
	}

	churnRisk := churnRiskForLastVisit(lastVisit, now)

	changed := segment != customer.Segment ||
		churnRisk != customer.ChurnRisk ||
		!totalSpend.Equal(customer.TotalSpending) ||
		!dermoSpend.Equal(customer.DermoSpending) ||
		!equalTimePtr(lastVisit, customer.LastVisitDate)

	customer.Segment = segment
	customer.ChurnRisk = churnRisk
	customer.TotalSpending = totalSpend
	customer.DermoSpending = dermoSpend
	customer.LastVisitDate = lastVisit
	return changed
}

// churnRiskForLastVisit maps days since the last visit onto a 0-100 risk
// score in 25 point steps.
func churnRiskForLastVisit(lastVisit *time.Time, now time.Time) int {
	if lastVisit == nil {
		return 100
	}
	days := daysSince(*lastVisit, now)
	switch {
	case days <= 30:
		return 0
	case days <= 60:
		return 25
	case days <= 90:
		return 50
	case days <= 120:
		return 75
	}
	return 100
}

func daysSince(t time.Time, now time.Time) int {
	return int(now.Sub(t).Hours() / 24)
}

func equalTimePtr(a *time.Time, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
