package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Category struct {
	ID           uuid.UUID `json:"id"`
	CategoryName string    `json:"category_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Food struct {
	ID          uuid.UUID       `json:"id"`
	FoodName    string          `json:"food_name"`
	Image       string          `json:"image"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	CategoryID  uuid.UUID       `json:"category_id"`
}
