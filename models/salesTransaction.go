package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smartpharmacy/crm_backend/config"
)

// SalesTransaction rows are immutable once written; corrections come in as
// new rows from a later report upload.
type SalesTransaction struct {
	ID             int             `gorm:"primary_key" json:"id"`
	CustomerId     int             `gorm:"index;not null" json:"customer_id"`
	Customer       *Customer       `json:"customer,omitempty"`
	ProductId      int             `gorm:"index;not null" json:"product_id"`
	Product        *Product        `json:"product,omitempty"`
	SaleDate       time.Time       `gorm:"index;not null" json:"sale_date"`
	Quantity       int             `gorm:"not null;default:1" json:"quantity"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	KdvAmount      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"kdv_amount"`
	IngestionRunId *uint           `gorm:"index" json:"ingestion_run_id"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func ListTransactionsForCustomer(ctx context.Context, customerId int, limit int) ([]*SalesTransaction, error) {
	db := config.GetDB()
	if limit <= 0 || limit > 500 {
		limit = config.SearchLimit
	}
	var txns []*SalesTransaction
	err := db.WithContext(ctx).
		Preload("Product").
		Where("customer_id = ?", customerId).
		Order("sale_date DESC").
		Limit(limit).
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}
