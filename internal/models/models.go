package models

import (
	"time"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"user_id"`
	Name         string    `gorm:"not null"                 json:"name"`
	Email        string    `gorm:"unique;not null"          json:"email"`
	Phone        string    `json:"phone"`
	Username     string    `gorm:"unique;not null"          json:"username"`
	PasswordHash string    `gorm:"column:pass;not null"     json:"-"`
	Role         string    `gorm:"not null;default:user"    json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

type Todo struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint       `gorm:"index;not null"           json:"user_id"`
	Title       string     `gorm:"not null"                 json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Deadline    *time.Time `json:"deadline"`
	IsCompleted bool       `gorm:"default:false"            json:"is_completed"`
	CreatedAt   time.Time  `json:"created_at"`
}
