package models

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smartpharmacy/crm_backend/config"
	"github.com/smartpharmacy/crm_backend/utils"
)

type Product struct {
	ID            int             `gorm:"primary_key" json:"id"`
	Barcode       string          `gorm:"uniqueIndex;size:32;not null" json:"barcode"`
	ProductCode   string          `gorm:"index;size:32" json:"product_code"`
	Name          string          `gorm:"size:255;not null" json:"name"`
	Category      ProductCategory `gorm:"type:enum('ILAC','DERMO','OTC','MAMA','VITAMIN','OTHER');not null;default:'ILAC'" json:"category"`
	KdvRate       decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"kdv_rate"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price"`
	StockQuantity int             `gorm:"default:0" json:"stock_quantity"`
	// UsageDuration is the expected number of days a single purchase lasts.
	// Zero means unknown; replenishment reminders only fire when it is set.
	UsageDuration int        `gorm:"default:0" json:"usage_duration"`
	IsActive      *bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProduct struct {
	Barcode       string          `json:"barcode" binding:"required"`
	ProductCode   string          `json:"product_code"`
	Name          string          `json:"name" binding:"required"`
	Category      ProductCategory `json:"category"`
	KdvRate       decimal.Decimal `json:"kdv_rate"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	StockQuantity int             `json:"stock_quantity"`
	UsageDuration int             `json:"usage_duration"`
}

func (input *NewProduct) validate(ctx context.Context, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Product](ctx, id); err != nil {
			return err
		}
	}
	return utils.ValidateUnique[Product](ctx, "barcode", input.Barcode, id)
}

func CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	category := input.Category
	if category == "" {
		category = ProductCategoryIlac
	}
	product := Product{
		Barcode:       strings.TrimSpace(input.Barcode),
		ProductCode:   strings.TrimSpace(input.ProductCode),
		Name:          strings.TrimSpace(input.Name),
		Category:      category,
		KdvRate:       input.KdvRate,
		UnitPrice:     input.UnitPrice,
		StockQuantity: input.StockQuantity,
		UsageDuration: input.UsageDuration,
		IsActive:      utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func UpdateProduct(ctx context.Context, id int, input *NewProduct) (*Product, error) {
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	product, err := utils.FetchModel[Product](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(product).Updates(map[string]interface{}{
		"barcode":        strings.TrimSpace(input.Barcode),
		"product_code":   strings.TrimSpace(input.ProductCode),
		"name":           strings.TrimSpace(input.Name),
		"category":       input.Category,
		"kdv_rate":       input.KdvRate,
		"unit_price":     input.UnitPrice,
		"stock_quantity": input.StockQuantity,
		"usage_duration": input.UsageDuration,
	}).Error
	if err != nil {
		return nil, err
	}
	return product, nil
}

func GetProduct(ctx context.Context, id int) (*Product, error) {
	return utils.FetchModel[Product](ctx, id)
}

func ListProducts(ctx context.Context, search string, category ProductCategory, limit int) ([]*Product, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&Product{})

	search = strings.TrimSpace(search)
	if search != "" {
		like := "%" + search + "%"
		dbCtx = dbCtx.Where("name LIKE ? OR barcode LIKE ? OR product_code LIKE ?", like, like, like)
	}
	if category != "" {
		dbCtx = dbCtx.Where("category = ?", category)
	}
	if limit <= 0 || limit > 500 {
		limit = config.SearchLimit
	}

	var products []*Product
	if err := dbCtx.Order("id DESC").Limit(limit).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}
