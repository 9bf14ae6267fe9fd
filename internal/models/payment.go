package models

import (
	"time"

	"gorm.io/gorm"
)

type Payment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	UserID uint `gorm:"index" json:"user_id"`

	// Polymorphic link back to the entity that requested the charge
	// (booking, subscription).
	Entity   string `gorm:"size:30;index:idx_payment_entity" json:"entity"`
	EntityID uint   `gorm:"index:idx_payment_entity" json:"entity_id"`

	Status string `gorm:"size:20;default:'pending';index" json:"status"`

	// Minor units, always > 0.
	Amount   int64  `json:"amount"`
	Currency string `gorm:"size:3;default:'BRL'" json:"currency"`

	Type   string `gorm:"size:20" json:"type"`
	Method string `gorm:"size:20" json:"method"`

	// Selects the gateway adapter at creation time, immutable after.
	Provider string `gorm:"size:30" json:"provider"`

	// External reference, set only after a successful provider create.
	ProviderID   string  `gorm:"size:100;index" json:"provider_id"`
	ProviderLink *string `gorm:"size:500" json:"provider_link"`

	// Opaque JSON echoed from the provider, last write wins.
	ProviderMeta string `gorm:"type:text" json:"provider_meta"`

	IdempotencyKey string `gorm:"size:40" json:"idempotency_key"`

	ExpiresAt  *time.Time `json:"expires_at"`
	CapturedAt *time.Time `json:"captured_at"`
	RefundedAt *time.Time `json:"refunded_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
