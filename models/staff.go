package models

import (
	"context"
	"strings"
	"time"

	"github.com/smartpharmacy/crm_backend/config"
	"github.com/smartpharmacy/crm_backend/utils"
)

// Staff members earn XP points by completing tasks (see CompleteTask).
type Staff struct {
	ID             int       `gorm:"primary_key" json:"id"`
	UserId         *int      `gorm:"index" json:"user_id"`
	Name           string    `gorm:"size:100;not null" json:"name"`
	Phone          string    `gorm:"size:20" json:"phone"`
	XpPoints       int       `gorm:"default:0" json:"xp_points"`
	TasksCompleted int       `gorm:"default:0" json:"tasks_completed"`
	IsActive       *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewStaff struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone"`
}

func CreateStaff(ctx context.Context, input *NewStaff) (*Staff, error) {
	staff := Staff{
		Name:     strings.TrimSpace(input.Name),
		Phone:    input.Phone,
		IsActive: utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&staff).Error; err != nil {
		return nil, err
	}
	return &staff, nil
}

func ListStaff(ctx context.Context) ([]*Staff, error) {
	db := config.GetDB()
	var staff []*Staff
	if err := db.WithContext(ctx).Order("xp_points DESC").Find(&staff).Error; err != nil {
		return nil, err
	}
	return staff, nil
}
