package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Category groups products in the catalog.
type Category struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string    `json:"name" gorm:"uniqueIndex;type:varchar(100);not null" validate:"required,min=2,max=100"`
	Description string    `json:"description" gorm:"type:text" validate:"omitempty,max=500"`
	IsActive    bool      `json:"is_active" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Product represents a product in the store.
// Stock is advisory only; placing an order does not decrement it.
type Product struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CategoryID  string          `json:"category_id" gorm:"type:varchar(36);index;not null"`
	Category    *Category       `json:"-"`
	Name        string          `json:"name" gorm:"type:varchar(200);index;not null"`
	Description string          `json:"description" gorm:"type:text"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Stock       int             `json:"stock" gorm:"not null"`
	IsAvailable bool            `json:"is_available" gorm:"not null"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
