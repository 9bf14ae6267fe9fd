package models

import (
	"time"

	"gorm.io/gorm"
)

type Booking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Status string `gorm:"size:20;default:'draft';index" json:"status"`

	IsSameDay bool `json:"is_same_day"`
	IsOneTime bool `gorm:"default:true" json:"is_one_time"`

	// Scheduled service instant. Immutable once a slot is bound,
	// except through the reschedule flow.
	Timestamp time.Time `gorm:"index" json:"timestamp"`

	// Booking this one replaced, when created by a reschedule.
	ReschedulesID *uint `json:"reschedules_id"`

	UserID    uint  `gorm:"index" json:"user_id"`
	WasherID  *uint `gorm:"index" json:"washer_id"`
	AddressID uint  `json:"address_id"`
	VehicleID uint  `json:"vehicle_id"`
	CouponID  *uint `json:"coupon_id"`

	// Snapshots captured at creation time for display stability.
	UserName    string `gorm:"size:100" json:"user_name"`
	UserPhone   string `gorm:"size:20" json:"user_phone"`
	ServiceName string `gorm:"size:100" json:"service_name"`

	// Service duration in minutes, snapshotted from the catalog.
	Duration int `json:"duration"`

	// Minor-unit amounts. PriceFinal = Price - PriceDiscount.
	Price         int64 `json:"price"`
	PriceDiscount int64 `json:"price_discount"`
	PriceFinal    int64 `json:"price_final"`

	CancelReason string `gorm:"size:255" json:"cancel_reason"`

	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
