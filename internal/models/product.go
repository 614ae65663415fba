package models

import (
	"time"
)

// DefaultProductImage is the sentinel asset for listings without an
// uploaded image. Media replacement must never delete it.
const DefaultProductImage = "media/product_images/default_product.png"

type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null;size:100" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Price       int       `json:"price"`
	Image       string    `gorm:"size:255;default:'media/product_images/default_product.png'" json:"image"`
	Location    string    `gorm:"size:50" json:"location"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	CategoryID  uint      `gorm:"not null;index" json:"category_id"`
	CreatedAt   time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`

	Creator  *User     `gorm:"foreignKey:UserID" json:"creator,omitempty"`
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
