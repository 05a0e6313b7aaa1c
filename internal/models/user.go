package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a user of the store.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username  string    `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password  string    `json:"password,omitempty" gorm:"type:varchar(255)" validate:"required,min=6"`
	FirstName string    `json:"first_name" gorm:"type:varchar(150)" validate:"omitempty,max=150"`
	LastName  string    `json:"last_name" gorm:"type:varchar(150)" validate:"omitempty,max=150"`
	Phone     string    `json:"phone" gorm:"type:varchar(15)" validate:"omitempty,max=15"`
	Address   string    `json:"address" gorm:"type:varchar(255)" validate:"omitempty,max=255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
