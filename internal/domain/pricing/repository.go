// internal/domain/pricing/repository.go
package pricing

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists fee settings
type Repository interface {
	CampusSetting(ctx context.Context, campusID uint) (*CampusSetting, error)
	ListCampusSettings(ctx context.Context) ([]CampusSetting, error)
	UpsertCampusSetting(ctx context.Context, setting *CampusSetting) error
	GlobalDeliveryFee(ctx context.Context) (*float64, error)
	SetGlobalDeliveryFee(ctx context.Context, fee float64, updatedBy string) error
}

// GormRepository stores fee settings in Postgres
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a gorm-backed fee settings repository
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// CampusSetting returns the campus override or nil when none exists
func (r *GormRepository) CampusSetting(ctx context.Context, campusID uint) (*CampusSetting, error) {
	var setting CampusSetting
	err := r.db.WithContext(ctx).Where("campus_id = ?", campusID).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve campus setting: %w", err)
	}
	return &setting, nil
}

// ListCampusSettings returns every campus override
func (r *GormRepository) ListCampusSettings(ctx context.Context) ([]CampusSetting, error) {
	var settings []CampusSetting
	if err := r.db.WithContext(ctx).Order("campus_id ASC").Find(&settings).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve campus settings: %w", err)
	}
	return settings, nil
}

// UpsertCampusSetting creates or replaces a campus override
func (r *GormRepository) UpsertCampusSetting(ctx context.Context, setting *CampusSetting) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "campus_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"delivery_fee", "payee_name", "bank_name", "account_number", "updated_by", "updated_at"}),
	}).Create(setting).Error
	if err != nil {
		return fmt.Errorf("failed to save campus setting: %w", err)
	}
	return nil
}

// GlobalDeliveryFee returns the platform fee or nil when unset or unparseable
func (r *GormRepository) GlobalDeliveryFee(ctx context.Context) (*float64, error) {
	var setting GlobalSetting
	err := r.db.WithContext(ctx).Where("key = ?", GlobalDeliveryFeeKey).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve global delivery fee: %w", err)
	}

	fee, err := strconv.ParseFloat(setting.Value, 64)
	if err != nil {
		return nil, nil
	}
	return &fee, nil
}

// SetGlobalDeliveryFee creates or replaces the platform fee
func (r *GormRepository) SetGlobalDeliveryFee(ctx context.Context, fee float64, updatedBy string) error {
	setting := GlobalSetting{
		Key:       GlobalDeliveryFeeKey,
		Value:     strconv.FormatFloat(fee, 'f', -1, 64),
		UpdatedBy: updatedBy,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_by", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		return fmt.Errorf("failed to save global delivery fee: %w", err)
	}
	return nil
}
