package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domain "github.com/AquaServicesBR/carwash-scheduler/internal/domain/schedule"
	"github.com/AquaServicesBR/carwash-scheduler/internal/httperr"
	"github.com/AquaServicesBR/carwash-scheduler/internal/models"
)

type SlotGormRepository struct {
	db *gorm.DB
}

func NewSlotGormRepository(db *gorm.DB) *SlotGormRepository {
	return &SlotGormRepository{db: db}
}

func (r *SlotGormRepository) GetByID(
	ctx context.Context,
	id uint,
) (*models.ScheduleSlot, error) {

	var slot models.ScheduleSlot
	if err := r.db.WithContext(ctx).First(&slot, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.ErrBusinessMsg(httperr.CodeNotFound, "slot not found")
		}
		return nil, err
	}
	return &slot, nil
}

// Insert relies on the partial unique index over
// (washer_id, timestamp) WHERE deleted_at IS NULL: two concurrent
// inserts for the same instant yield exactly one success.
func (r *SlotGormRepository) Insert(
	ctx context.Context,
	slot *models.ScheduleSlot,
) error {

	err := r.db.WithContext(ctx).Create(slot).Error
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return httperr.ErrBusinessMsg(httperr.CodeSlotTaken, "slot already taken")
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return httperr.ErrBusinessMsg(httperr.CodeSlotTaken, "slot already taken")
	}
	return err
}

func (r *SlotGormRepository) SoftDelete(
	ctx context.Context,
	id uint,
) error {
	return r.db.WithContext(ctx).Delete(&models.ScheduleSlot{}, id).Error
}

func (r *SlotGormRepository) ExistsAt(
	ctx context.Context,
	washerID uint,
	ts time.Time,
) (bool, error) {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ScheduleSlot{}).
		Where("washer_id = ? AND timestamp = ?", washerID, ts).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *SlotGormRepository) GetActiveByBooking(
	ctx context.Context,
	bookingID uint,
) (*models.ScheduleSlot, error) {

	var slot models.ScheduleSlot
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		First(&slot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.ErrBusinessMsg(httperr.CodeNotFound, "no active slot for booking")
		}
		return nil, err
	}
	return &slot, nil
}

func (r *SlotGormRepository) ListInRange(
	ctx context.Context,
	washerID *uint,
	start time.Time,
	end time.Time,
) ([]models.ScheduleSlot, error) {

	q := r.db.WithContext(ctx).
		Where("timestamp >= ? AND timestamp < ?", start, end)

	if washerID != nil {
		q = q.Where("washer_id = ?", *washerID)
	}

	var slots []models.ScheduleSlot
	if err := q.Order("timestamp ASC").Find(&slots).Error; err != nil {
		return nil, err
	}
	return slots, nil
}

// Compile-time check
var _ domain.Repository = (*SlotGormRepository)(nil)
