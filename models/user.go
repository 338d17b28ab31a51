package models

import (
	"context"
	"errors"
	"time"

	"github.com/smartpharmacy/crm_backend/config"
	"github.com/smartpharmacy/crm_backend/utils"
)

type User struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Name      string    `gorm:"size:100" json:"name"`
	Password  string    `gorm:"size:100;not null" json:"-"`
	Role      UserRole  `gorm:"type:enum('A','O');not null;default:'O'" json:"role"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u *User) SaveInstanceRedis() error {
	return config.SetRedisObject("User:"+u.Username, u, 24*time.Hour)
}

func (u *User) RemoveInstanceRedis() error {
	return config.RemoveRedisKey("User:" + u.Username)
}

// GetUserByUsername reads through the Redis cache first.
func GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	exists, err := config.GetRedisObject("User:"+username, &user)
	if err == nil && exists {
		return &user, nil
	}

	db := config.GetDB()
	if db == nil {
		return nil, errors.New("db is nil")
	}
	if err := db.WithContext(ctx).Model(&User{}).Where("username = ?", username).Take(&user).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	_ = user.SaveInstanceRedis()
	return &user, nil
}

// Login verifies credentials, issues a JWT and caches the session token.
func Login(ctx context.Context, username string, password string) (string, *User, error) {
	db := config.GetDB()
	if db == nil {
		return "", nil, errors.New("db is nil")
	}

	var user User
	if err := db.WithContext(ctx).Model(&User{}).Where("username = ?", username).Take(&user).Error; err != nil {
		return "", nil, errors.New("invalid credentials")
	}
	if user.IsActive != nil && !*user.IsActive {
		return "", nil, errors.New("user is inactive")
	}
	if err := utils.ComparePassword(user.Password, password); err != nil {
		return "", nil, errors.New("invalid credentials")
	}

	token, err := utils.JwtGenerate(user.ID, string(user.Role))
	if err != nil {
		return "", nil, err
	}

	if err := config.SetRedisValue("Token:"+token, user.Username, 24*time.Hour); err != nil {
		return "", nil, err
	}
	_ = user.SaveInstanceRedis()

	return token, &user, nil
}

func Logout(ctx context.Context, token string) error {
	return config.RemoveRedisKey("Token:" + token)
}
