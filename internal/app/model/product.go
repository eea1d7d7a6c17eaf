package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlaceholderImageURL is served for products without an image
const PlaceholderImageURL = "/images/no-image.png"

type Product struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Description string          `gorm:"type:text" json:"description"`
	Image       string          `gorm:"type:varchar(512)" json:"image,omitempty"` // storage key
	ImageURL    string          `gorm:"-" json:"image_url"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// HasImage reports whether an image is attached
func (p *Product) HasImage() bool {
	return p.Image != ""
}
