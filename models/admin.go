package models

import (
	"gorm.io/gorm"
)

// AdminUser is a back-office operator account
type AdminUser struct {
	gorm.Model
	Email        string `gorm:"not null;uniqueIndex" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Name         string `json:"name"`
}

// AdminSetting is the per-admin profile row, upserted by admin user id
type AdminSetting struct {
	gorm.Model
	AdminUserID uint `gorm:"not null;uniqueIndex" json:"admin_user_id"`

	DisplayName string `json:"display_name"`
	NotifyEmail string `json:"notify_email"`

	NotifyOnTicket bool `gorm:"default:true" json:"notify_on_ticket"`
	NotifyOnBounce bool `gorm:"default:true" json:"notify_on_bounce"`
	DailyDigest    bool `gorm:"default:false" json:"daily_digest"`

	Theme string `gorm:"default:'light'" json:"theme"`
}
