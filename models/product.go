package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string          `gorm:"not null" json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Zodiac      string          `json:"zodiac"` // comma-joined sign tags, e.g. "aries,leo"
	Category    string          `gorm:"index" json:"category"`
	ImageURL    string          `json:"image_url"`
	Stock       int             `json:"stock_quantity"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

// ZodiacSigns splits the comma-joined zodiac tags into individual signs.
func (p Product) ZodiacSigns() []string {
	if p.Zodiac == "" {
		return nil
	}
	parts := strings.Split(p.Zodiac, ",")
	signs := make([]string, 0, len(parts))
	for _, s := range parts {
		s = strings.TrimSpace(strings.ToLower(s))
		if s != "" {
			signs = append(signs, s)
		}
	}
	return signs
}

// HasZodiac reports whether the product is tagged with the given sign.
func (p Product) HasZodiac(sign string) bool {
	sign = strings.TrimSpace(strings.ToLower(sign))
	for _, s := range p.ZodiacSigns() {
		if s == sign {
			return true
		}
	}
	return false
}
