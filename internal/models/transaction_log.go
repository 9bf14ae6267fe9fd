package models

import "time"

type TransactionLog struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Entity   string `gorm:"size:50;not null" json:"entity"`
	EntityID uint   `json:"entity_id"`
	Op       string `gorm:"size:50;not null" json:"op"`

	// Minor units, signed.
	Value int64 `json:"value"`

	Metadata string `gorm:"type:text" json:"metadata"`

	CreatedAt time.Time `json:"created_at"`
}
