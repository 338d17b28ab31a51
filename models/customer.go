package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smartpharmacy/crm_backend/config"
	"github.com/smartpharmacy/crm_backend/utils"
)

type Customer struct {
	ID             int             `gorm:"primary_key" json:"id"`
	CustomerCode   string          `gorm:"uniqueIndex;size:20;not null" json:"customer_code"`
	FirstName      string          `gorm:"size:100;not null" json:"first_name"`
	LastName       string          `gorm:"size:100" json:"last_name"`
	Phone          string          `gorm:"index;size:20" json:"phone"`
	PhoneSecondary string          `gorm:"size:20" json:"phone_secondary"`
	Email          string          `gorm:"size:100" json:"email"`
	TotalPoints    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_points"`
	PointsTLValue  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"points_tl_value"`
	TotalSpending  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_spending"`
	DermoSpending  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"dermo_spending"`
	Segment        CustomerSegment `gorm:"type:enum('VIP','DERMO_VIP','STANDARD','NEW','LOST');not null;default:'NEW'" json:"segment"`
	ChurnRisk      int             `gorm:"default:0" json:"churn_risk"`
	LastVisitDate  *time.Time      `json:"last_visit_date"`
	Notes          string          `gorm:"type:text" json:"notes"`
	IsActive       *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

type NewCustomer struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Notes     string `json:"notes"`
}

func (input *NewCustomer) validate(ctx context.Context, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Customer](ctx, id); err != nil {
			return err
		}
	}
	// validate phone
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return errors.New("invalid phone number")
		}
		if err := utils.ValidateUnique[Customer](ctx, "phone", input.Phone, id); err != nil {
			return err
		}
	}
	// validate email
	if input.Email != "" {
		if !utils.IsValidEmail(input.Email) {
			return errors.New("invalid email")
		}
	}
	return nil
}

// CreateCustomer handles manual (counter) entry. Spreadsheet ingestion goes
// through the store upserts instead, which never reject rows.
func CreateCustomer(ctx context.Context, input *NewCustomer) (*Customer, error) {
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	customer := Customer{
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Phone:     input.Phone,
		Email:     input.Email,
		Notes:     input.Notes,
		Segment:   CustomerSegmentNew,
		IsActive:  utils.NewTrue(),
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&customer).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	// Manually entered customers get a code derived from the row id; codes for
	// POS-imported customers carry the TRIA prefix from the source system.
	customer.CustomerCode = fmt.Sprintf("CRM%08d", customer.ID)
	if err := tx.WithContext(ctx).Model(&customer).Update("customer_code", customer.CustomerCode).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return &customer, nil
}

func UpdateCustomer(ctx context.Context, id int, input *NewCustomer) (*Customer, error) {
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	customer, err := utils.FetchModel[Customer](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(customer).Updates(map[string]interface{}{
		"first_name": strings.TrimSpace(input.FirstName),
		"last_name":  strings.TrimSpace(input.LastName),
		"phone":      input.Phone,
		"email":      input.Email,
		"notes":      input.Notes,
	}).Error
	if err != nil {
		return nil, err
	}
	return customer, nil
}

func GetCustomer(ctx context.Context, id int) (*Customer, error) {
	return utils.FetchModel[Customer](ctx, id)
}

// ListCustomers filters by free-text name/phone/code and optional segment.
func ListCustomers(ctx context.Context, search string, segment CustomerSegment, limit int) ([]*Customer, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&Customer{})

	search = strings.TrimSpace(search)
	if search != "" {
		like := "%" + search + "%"
		dbCtx = dbCtx.Where(
			"first_name LIKE ? OR last_name LIKE ? OR phone LIKE ? OR customer_code LIKE ?",
			like, like, like, like,
		)
	}
	if segment != "" {
		dbCtx = dbCtx.Where("segment = ?", segment)
	}
	if limit <= 0 || limit > 500 {
		limit = config.SearchLimit
	}

	var customers []*Customer
	if err := dbCtx.Order("id DESC").Limit(limit).Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}
