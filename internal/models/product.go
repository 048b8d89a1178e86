package models

import "time"

// Product represents a sellable item in the catalog.
//
// The JSON field names form the wire contract consumed by API clients and
// must not change: id, name, price, description, createdAt, isActive.
type Product struct {
	ID          int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"type:varchar(100)" validate:"required,max=100"`
	Price       float64   `json:"price" validate:"required,gt=0"`
	Description string    `json:"description" gorm:"type:varchar(500)" validate:"omitempty,max=500"`
	CreatedAt   time.Time `json:"createdAt"`
	IsActive    bool      `json:"isActive"`
}
