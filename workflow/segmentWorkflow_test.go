package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smartpharmacy/crm_backend/models"
)

var testNow = time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

func txn(customerId int, daysAgo int, amount int64, category models.ProductCategory) *models.SalesTransaction {
	return &models.SalesTransaction{
		CustomerId:  customerId,
		SaleDate:    testNow.AddDate(0, 0, -daysAgo),
		TotalAmount: decimal.NewFromInt(amount),
		Product:     &models.Product{Category: category},
	}
}

func TestUpdateSegmentsThresholds(t *testing.T) {
	defer setNow(testNow)()

	store := &fakeStore{
		customers: []*models.Customer{
			{ID: 1, Segment: models.CustomerSegmentNew},
			{ID: 2, Segment: models.CustomerSegmentNew},
			{ID: 3, Segment: models.CustomerSegmentNew},
		},
		transactions: []*models.SalesTransaction{
			// Customer 1: dermo heavy.
			txn(1, 10, 1500, models.ProductCategoryDermo),
			txn(1, 20, 800, models.ProductCategoryDermo),
			// Customer 2: big spender, no dermo.
			txn(2, 5, 6000, models.ProductCategoryIlac),
			// Customer 3: modest recent activity.
			txn(3, 15, 200, models.ProductCategoryOTC),
		},
	}

	summary, err := UpdateSegments(context.Background(), store)
	if err != nil {
		t.Fatalf("UpdateSegments: %v", err)
	}
	if summary.Total != 3 || summary.Updated != 3 {
		t.Errorf("Total/Updated = %d/%d, want 3/3", summary.Total, summary.Updated)
	}
	if summary.VIP != 2 {
		t.Errorf("VIP = %d, want 2 (VIP plus DERMO_VIP)", summary.VIP)
	}
	if summary.AtRisk != 0 {
		t.Errorf("AtRisk = %d, want 0", summary.AtRisk)
	}

	if store.customers[0].Segment != models.CustomerSegmentDermoVIP {
		t.Errorf("customer 1 segment = %s, want DERMO_VIP", store.customers[0].Segment)
	}
	if !store.customers[0].DermoSpending.Equal(decimal.NewFromInt(2300)) {
		t.Errorf("customer 1 dermo spending = %s", store.customers[0].DermoSpending)
	}
	if store.customers[1].Segment != models.CustomerSegmentVIP {
		t.Errorf("customer 2 segment = %s, want VIP", store.customers[1].Segment)
	}
	if store.customers[2].Segment != models.CustomerSegmentStandard {
		t.Errorf("customer 3 segment = %s, want STANDARD", store.customers[2].Segment)
	}
	if store.customers[2].ChurnRisk != 0 {
		t.Errorf("customer 3 churn risk = %d, want 0", store.customers[2].ChurnRisk)
	}
	if store.customers[2].LastVisitDate == nil || !store.customers[2].LastVisitDate.Equal(testNow.AddDate(0, 0, -15)) {
		t.Errorf("customer 3 last visit = %v", store.customers[2].LastVisitDate)
	}
}

func TestUpdateSegmentsInactiveCustomers(t *testing.T) {
	defer setNow(testNow)()

	old := testNow.AddDate(0, 0, -200)
	store := &fakeStore{
		customers: []*models.Customer{
			// No transactions, stale last visit.
			{ID: 1, Segment: models.CustomerSegmentStandard, LastVisitDate: &old},
			// No transactions, never visited.
			{ID: 2, Segment: models.CustomerSegmentStandard},
		},
	}

	summary, err := UpdateSegments(context.Background(), store)
	if err != nil {
		t.Fatalf("UpdateSegments: %v", err)
	}
	// Both customers end at churn risk 100.
	if summary.AtRisk != 2 {
		t.Errorf("AtRisk = %d, want 2", summary.AtRisk)
	}
	if store.customers[0].Segment != models.CustomerSegmentLost {
		t.Errorf("stale customer segment = %s, want LOST", store.customers[0].Segment)
	}
	if store.customers[0].ChurnRisk != 100 {
		t.Errorf("stale customer churn risk = %d, want 100", store.customers[0].ChurnRisk)
	}
	if store.customers[1].Segment != models.CustomerSegmentNew {
		t.Errorf("never-visited segment = %s, want NEW", store.customers[1].Segment)
	}
}

func TestUpdateSegmentsLostInsideWindow(t *testing.T) {
	defer setNow(testNow)()

	store := &fakeStore{
		customers: []*models.Customer{
			{ID: 1, Segment: models.CustomerSegmentStandard},
		},
		transactions: []*models.SalesTransaction{
			// Inside the 180 day window but past the lost cutoff.
			txn(1, 150, 300, models.ProductCategoryIlac),
		},
	}

	if _, err := UpdateSegments(context.Background(), store); err != nil {
		t.Fatalf("UpdateSegments: %v", err)
	}
	if store.customers[0].Segment != models.CustomerSegmentLost {
		t.Errorf("segment = %s, want LOST", store.customers[0].Segment)
	}
	if store.customers[0].ChurnRisk != 100 {
		t.Errorf("churn risk = %d, want 100", store.customers[0].ChurnRisk)
	}
}

func TestUpdateSegmentsIdempotent(t *testing.T) {
	defer setNow(testNow)()

	store := &fakeStore{
		customers: []*models.Customer{
			{ID: 1, Segment: models.CustomerSegmentNew},
		},
		transactions: []*models.SalesTransaction{
			txn(1, 10, 6000, models.ProductCategoryIlac),
		},
	}

	first, err := UpdateSegments(context.Background(), store)
	if err != nil {
		t.Fatalf("UpdateSegments: %v", err)
	}
	if first.Updated != 1 {
		t.Fatalf("first pass Updated = %d, want 1", first.Updated)
	}

	second, err := UpdateSegments(context.Background(), store)
	if err != nil {
		t.Fatalf("UpdateSegments: %v", err)
	}
	if second.Updated != 0 {
		t.Errorf("second pass Updated = %d, want 0", second.Updated)
	}
	if second.Total != 1 || second.VIP != 1 {
		t.Errorf("Total/VIP = %d/%d, want 1/1", second.Total, second.VIP)
	}
	if second.Segments[models.CustomerSegmentVIP] != 1 {
		t.Errorf("segment counts = %v", second.Segments)
	}
}

func TestChurnRiskSteps(t *testing.T) {
	cases := []struct {
		daysAgo int
		want    int
	}{
		{10, 0},
		{30, 0},
		{45, 25},
		{75, 50},
		{100, 75},
		{130, 100},
	}
	for _, tc := range cases {
		visit := testNow.AddDate(0, 0, -tc.daysAgo)
		if got := churnRiskForLastVisit(&visit, testNow); got != tc.want {
			t.Errorf("churnRiskForLastVisit(%d days) = %d, want %d", tc.daysAgo, got, tc.want)
		}
	}
	if got := churnRiskForLastVisit(nil, testNow); got != 100 {
		t.Errorf("churnRiskForLastVisit(nil) = %d, want 100", got)
	}
}
