package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domain "github.com/AquaServicesBR/carwash-scheduler/internal/domain/booking"
	"github.com/AquaServicesBR/carwash-scheduler/internal/httperr"
	"github.com/AquaServicesBR/carwash-scheduler/internal/models"
)

type BookingGormRepository struct {
	db *gorm.DB
}

func NewBookingGormRepository(db *gorm.DB) *BookingGormRepository {
	return &BookingGormRepository{db: db}
}

// --------------------------------------------------
// Booking
// --------------------------------------------------

func (r *BookingGormRepository) GetByID(
	ctx context.Context,
	id uint,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.ErrBusinessMsg(httperr.CodeNotFound, "booking not found")
		}
		return nil, err
	}
	return &b, nil
}

func (r *BookingGormRepository) Create(
	ctx context.Context,
	b *models.Booking,
) error {
	return r.db.WithContext(ctx).Create(b).Error
}

// UpdateGuarded writes the booking only while its stored status still
// matches prevStatus. Losing the race surfaces as conflict, the caller
// retries with fresh state or gives up.
func (r *BookingGormRepository) UpdateGuarded(
	ctx context.Context,
	b *models.Booking,
	prevStatus domain.Status,
) error {

	res := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND status = ?", b.ID, string(prevStatus)).
		Updates(map[string]any{
			"status":         b.Status,
			"washer_id":      b.WasherID,
			"timestamp":      b.Timestamp,
			"price":          b.Price,
			"price_discount": b.PriceDiscount,
			"price_final":    b.PriceFinal,
			"cancel_reason":  b.CancelReason,
			"cancelled_at":   b.CancelledAt,
			"completed_at":   b.CompletedAt,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return httperr.ErrBusinessMsg(httperr.CodeConflict, "booking changed concurrently")
	}
	return nil
}

func (r *BookingGormRepository) SoftDelete(
	ctx context.Context,
	id uint,
) error {
	return r.db.WithContext(ctx).Delete(&models.Booking{}, id).Error
}

// --------------------------------------------------
// Cross-entity reads
// --------------------------------------------------

func (r *BookingGormRepository) GetUser(
	ctx context.Context,
	id uint,
) (*models.User, error) {

	var u models.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.ErrBusinessMsg(httperr.CodeNotFound, "user not found")
		}
		return nil, err
	}
	return &u, nil
}

// Compile-time check
var _ domain.Repository = (*BookingGormRepository)(nil)
