package models

import (
	"context"
	"errors"
	"time"

	"github.com/smartpharmacy/crm_backend/config"
	"github.com/smartpharmacy/crm_backend/utils"
	"gorm.io/gorm"
)

type Task struct {
	ID          int          `gorm:"primary_key" json:"id"`
	CustomerId  int          `gorm:"index;not null" json:"customer_id"`
	Customer    *Customer    `json:"customer,omitempty"`
	ProductId   *int         `gorm:"index" json:"product_id"`
	Product     *Product     `json:"product,omitempty"`
	TaskType    TaskType     `gorm:"type:enum('REPLENISHMENT','CHURN_PREVENTION','VIP_FOLLOWUP','DERMO_CONSULT','GENERAL');not null" json:"task_type"`
	Status      TaskStatus   `gorm:"type:enum('PENDING','IN_PROGRESS','COMPLETED','UNREACHABLE','CANCELLED');not null;default:'PENDING'" json:"status"`
	Priority    TaskPriority `gorm:"type:enum('LOW','MEDIUM','HIGH','URGENT');not null;default:'MEDIUM'" json:"priority"`
	Title       string       `gorm:"size:255;not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	DueDate     *time.Time   `gorm:"index" json:"due_date"`
	// PointsValue is the staff XP awarded on completion.
	PointsValue  int        `gorm:"default:0" json:"points_value"`
	AssignedToId *int       `gorm:"index" json:"assigned_to_id"`
	AssignedTo   *Staff     `gorm:"foreignKey:AssignedToId" json:"assigned_to,omitempty"`
	CompletedAt  *time.Time `json:"completed_at"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func GetTask(ctx context.Context, id int) (*Task, error) {
	return utils.FetchModel[Task](ctx, id, "Customer", "Product")
}

func ListTasks(ctx context.Context, status TaskStatus, taskType TaskType, assignedToId int, limit int) ([]*Task, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&Task{}).Preload("Customer").Preload("Product")

	if status != "" {
		dbCtx = dbCtx.Where("status = ?", status)
	}
	if taskType != "" {
		dbCtx = dbCtx.Where("task_type = ?", taskType)
	}
	if assignedToId > 0 {
		dbCtx = dbCtx.Where("assigned_to_id = ?", assignedToId)
	}
	if limit <= 0 || limit > 500 {
		limit = config.SearchLimit
	}

	var tasks []*Task
	if err := dbCtx.Order("due_date IS NULL, due_date, id").Limit(limit).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func AssignTask(ctx context.Context, id int, staffId int) (*Task, error) {
	if err := utils.ValidateResourceId[Staff](ctx, staffId); err != nil {
		return nil, errors.New("staff not found")
	}

	task, err := utils.FetchModel[Task](ctx, id)
	if err != nil {
		return nil, err
	}
	if task.Status == TaskStatusCompleted || task.Status == TaskStatusCancelled {
		return nil, errors.New("task is already closed")
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(task).Update("assigned_to_id", staffId).Error; err != nil {
		return nil, err
	}
	return task, nil
}

// CompleteTask closes the task and awards its points to the assigned staff
// member in the same transaction.
func CompleteTask(ctx context.Context, id int) (*Task, error) {
	task, err := utils.FetchModel[Task](ctx, id)
	if err != nil {
		return nil, err
	}
	if task.Status == TaskStatusCompleted {
		return nil, errors.New("task is already completed")
	}
	if task.Status == TaskStatusCancelled {
		return nil, errors.New("task is cancelled")
	}

	now := time.Now()

	db := config.GetDB()
	tx := db.Begin()
	err = tx.WithContext(ctx).Model(task).Updates(map[string]interface{}{
		"status":       TaskStatusCompleted,
		"completed_at": &now,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if task.AssignedToId != nil && *task.AssignedToId > 0 && task.PointsValue > 0 {
		err = tx.WithContext(ctx).Model(&Staff{}).
			Where("id = ?", *task.AssignedToId).
			Updates(map[string]interface{}{
				"xp_points":       gorm.Expr("xp_points + ?", task.PointsValue),
				"tasks_completed": gorm.Expr("tasks_completed + 1"),
			}).Error
		if err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	task.Status = TaskStatusCompleted
	task.CompletedAt = &now
	return task, nil
}

func UpdateTaskStatus(ctx context.Context, id int, status TaskStatus) (*Task, error) {
	if status == TaskStatusCompleted {
		return CompleteTask(ctx, id)
	}

	task, err := utils.FetchModel[Task](ctx, id)
	if err != nil {
		return nil, err
	}
	if task.Status == TaskStatusCompleted {
		return nil, errors.New("task is already completed")
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(task).Update("status", status).Error; err != nil {
		return nil, err
	}
	task.Status = status
	return task, nil
}
