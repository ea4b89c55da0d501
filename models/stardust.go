package models

import "time"

type StardustType string

const (
	StardustEarned StardustType = "earned"
	StardustSpent  StardustType = "spent"
)

// StardustTransaction is an append-only ledger entry. Amount is always
// positive; the direction lives in Type. Rows are never mutated or deleted.
type StardustTransaction struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	UserID      string       `gorm:"index;not null" json:"user_id"`
	Amount      int          `gorm:"not null" json:"amount"`
	Type        StardustType `gorm:"type:VARCHAR(10);not null" json:"type"`
	Description string       `json:"description"`
	CreatedAt   time.Time    `json:"created_at"`
}
