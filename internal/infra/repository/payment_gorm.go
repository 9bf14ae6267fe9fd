package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domain "github.com/AquaServicesBR/carwash-scheduler/internal/domain/payment"
	"github.com/AquaServicesBR/carwash-scheduler/internal/httperr"
	"github.com/AquaServicesBR/carwash-scheduler/internal/models"
)

type PaymentGormRepository struct {
	db *gorm.DB
}

func NewPaymentGormRepository(db *gorm.DB) *PaymentGormRepository {
	return &PaymentGormRepository{db: db}
}

func (r *PaymentGormRepository) GetByID(
	ctx context.Context,
	id uint,
) (*models.Payment, error) {

	var p models.Payment
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.ErrBusinessMsg(httperr.CodeNotFound, "payment not found")
		}
		return nil, err
	}
	return &p, nil
}

func (r *PaymentGormRepository) GetByProviderRef(
	ctx context.Context,
	provider string,
	providerID string,
) (*models.Payment, error) {

	var p models.Payment
	if err := r.db.WithContext(ctx).
		Where("provider = ? AND provider_id = ?", provider, providerID).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.ErrBusinessMsg(httperr.CodeNotFound, "payment not found for provider reference")
		}
		return nil, err
	}
	return &p, nil
}

func (r *PaymentGormRepository) GetActiveByEntity(
	ctx context.Context,
	entity string,
	entityID uint,
) (*models.Payment, error) {

	var p models.Payment
	if err := r.db.WithContext(ctx).
		Where("entity = ? AND entity_id = ?", entity, entityID).
		Order("id DESC").
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.ErrBusinessMsg(httperr.CodeNotFound, "no payment for entity")
		}
		return nil, err
	}
	return &p, nil
}

func (r *PaymentGormRepository) Create(
	ctx context.Context,
	p *models.Payment,
) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PaymentGormRepository) Update(
	ctx context.Context,
	p *models.Payment,
) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// Compile-time check
var _ domain.Repository = (*PaymentGormRepository)(nil)
