package implementation

import (
	"context"
	"time"

	"freight-broker-be/internal/entity"
	"freight-broker-be/internal/mapper"
	"freight-broker-be/internal/model"
	"freight-broker-be/internal/repository/contract"
	"freight-broker-be/pkg/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LedgerRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PaymentMapper
}

func NewLedgerRepository(db *gorm.DB) contract.LedgerRepository {
	return &LedgerRepositoryImpl{
		db:     db,
		mapper: mapper.NewPaymentMapper(),
	}
}

func (r *LedgerRepositoryImpl) HasProcessed(ctx context.Context, chargeId string, status entity.ChargeStatus) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ProcessedCharge{}).
		Where("charge_id = ? AND charge_status = ?", chargeId, string(status)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkProcessed inserts with ON CONFLICT DO NOTHING so a losing concurrent
// writer sees zero affected rows instead of an aborted transaction.
func (r *LedgerRepositoryImpl) MarkProcessed(ctx context.Context, entry *entity.ProcessedCharge) error {
	m := r.mapper.ProcessedChargeToModel(entry)
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(m)
	if result.Error != nil {
		if database.IsUniqueViolation(result.Error) {
			return entity.ErrConflict
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entity.ErrConflict
	}
	return nil
}

func (r *LedgerRepositoryImpl) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("processed_at < ?", cutoff).Delete(&model.ProcessedCharge{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *LedgerRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.ProcessedCharge{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
