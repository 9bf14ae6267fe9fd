package repository

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	domain "github.com/AquaServicesBR/carwash-scheduler/internal/domain/payment"
	"github.com/AquaServicesBR/carwash-scheduler/internal/httperr"
	"github.com/AquaServicesBR/carwash-scheduler/internal/models"
)

// --------------------------------------------------
// Wallet
// --------------------------------------------------

type WalletGormService struct {
	db *gorm.DB
}

func NewWalletGormService(db *gorm.DB) *WalletGormService {
	return &WalletGormService{db: db}
}

func (s *WalletGormService) Credit(
	ctx context.Context,
	userID uint,
	amount int64,
) error {

	if amount <= 0 {
		return httperr.ErrBusinessMsg(httperr.CodeValidation, "credit amount must be positive")
	}

	return s.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("user_id = ?", userID).
		Update("balance", gorm.Expr("balance + ?", amount)).Error
}

func (s *WalletGormService) Debit(
	ctx context.Context,
	userID uint,
	amount int64,
) error {

	if amount <= 0 {
		return httperr.ErrBusinessMsg(httperr.CodeValidation, "debit amount must be positive")
	}

	res := s.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("user_id = ? AND balance >= ?", userID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return httperr.ErrBusinessMsg(httperr.CodeValidation, "insufficient wallet balance")
	}
	return nil
}

// --------------------------------------------------
// Transaction log
// --------------------------------------------------

type TransactionGormRecorder struct {
	db *gorm.DB
}

func NewTransactionGormRecorder(db *gorm.DB) *TransactionGormRecorder {
	return &TransactionGormRecorder{db: db}
}

func (r *TransactionGormRecorder) Record(
	ctx context.Context,
	entity string,
	entityID uint,
	op string,
	value int64,
) error {

	meta, _ := json.Marshal(map[string]any{"op": op})

	row := models.TransactionLog{
		Entity:   entity,
		EntityID: entityID,
		Op:       op,
		Value:    value,
		Metadata: string(meta),
	}

	return r.db.WithContext(ctx).Create(&row).Error
}

// Compile-time checks
var (
	_ domain.WalletService        = (*WalletGormService)(nil)
	_ domain.TransactionRecorder  = (*TransactionGormRecorder)(nil)
)
