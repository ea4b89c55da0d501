package models

import "time"

// Profile is the per-user account row. It is created lazily on first
// authenticated access. StardustBalance is a cached aggregate kept in step
// with the stardust_transactions ledger by the credit/debit writers.
type Profile struct {
	ID              string    `gorm:"primaryKey" json:"id"` // auth user id
	Email           string    `gorm:"uniqueIndex;not null" json:"email"`
	Phone           string    `json:"phone"`
	Zodiac          string    `json:"zodiac"`
	StardustBalance int       `gorm:"not null;default:0" json:"stardust_balance"`
	IsOwner         bool      `gorm:"not null;default:false" json:"is_owner"`
	CreatedAt       time.Time `json:"created_at"`
}
