// internal/domain/pricing/service.go
package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/campus-delivery-backend/internal/config"
	"github.com/your-org/campus-delivery-backend/internal/pkg/apperror"
)

// Service resolves and manages delivery fee configuration
type Service struct {
	repo        Repository
	redisClient *redis.Client
	defaults    FeeConfig
	cacheTTL    time.Duration
	logger      logrus.FieldLogger
}

// NewService creates a new pricing service. redisClient may be nil to disable caching.
func NewService(repo Repository, redisClient *redis.Client, cfg *config.Config, logger logrus.FieldLogger) *Service {
	return &Service{
		repo:        repo,
		redisClient: redisClient,
		defaults:    DefaultFromConfig(cfg.Fees),
		cacheTTL:    cfg.Fees.CacheTTL,
		logger:      logger,
	}
}

// CampusSettingRequest represents a campus fee override write
type CampusSettingRequest struct {
	DeliveryFee   float64 `json:"deliveryFee" binding:"required,gt=0"`
	PayeeName     string  `json:"payeeName"`
	BankName      string  `json:"bankName"`
	AccountNumber string  `json:"accountNumber"`
}

// GlobalFeeRequest represents a global fee write
type GlobalFeeRequest struct {
	DeliveryFee float64 `json:"deliveryFee" binding:"required,gt=0"`
}

func feeCacheKey(campusID uint) string {
	return fmt.Sprintf("fee:campus:%d", campusID)
}

// Resolve returns the effective fee for a campus (0 for no campus)
func (s *Service) Resolve(ctx context.Context, campusID uint) (FeeConfig, error) {
	if fee, ok := s.cached(ctx, campusID); ok {
		return fee, nil
	}

	var campus *CampusSetting
	if campusID > 0 {
		var err error
		if campus, err = s.repo.CampusSetting(ctx, campusID); err != nil {
			return FeeConfig{}, err
		}
	}

	global, err := s.repo.GlobalDeliveryFee(ctx)
	if err != nil {
		return FeeConfig{}, err
	}

	fee := Resolve(campus, global, s.defaults)
	s.store(ctx, campusID, fee)
	return fee, nil
}

// Defaults returns the hard-coded fallback fee
func (s *Service) Defaults() FeeConfig {
	return s.defaults
}

// ListCampusSettings returns every campus override
func (s *Service) ListCampusSettings(ctx context.Context) ([]CampusSetting, error) {
	return s.repo.ListCampusSettings(ctx)
}

// UpsertCampusSetting writes a campus override and drops its cached fee
func (s *Service) UpsertCampusSetting(ctx context.Context, campusID uint, req *CampusSettingRequest, updatedBy string) (*CampusSetting, error) {
	if campusID == 0 {
		return nil, apperror.Validation("campus id is required")
	}
	if req.DeliveryFee <= 0 {
		return nil, apperror.Validation("delivery fee must be positive")
	}

	setting := &CampusSetting{
		CampusID:      campusID,
		DeliveryFee:   req.DeliveryFee,
		PayeeName:     req.PayeeName,
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
		UpdatedBy:     updatedBy,
	}
	if err := s.repo.UpsertCampusSetting(ctx, setting); err != nil {
		return nil, err
	}

	s.Refresh(ctx, campusID)
	return setting, nil
}

// GlobalDeliveryFee returns the platform fee, falling back to the default charge
func (s *Service) GlobalDeliveryFee(ctx context.Context) (float64, error) {
	fee, err := s.repo.GlobalDeliveryFee(ctx)
	if err != nil {
		return 0, err
	}
	if fee == nil || *fee <= 0 {
		return s.defaults.PerPersonCharge, nil
	}
	return *fee, nil
}

// SetGlobalDeliveryFee writes the platform fee and drops every cached fee
func (s *Service) SetGlobalDeliveryFee(ctx context.Context, fee float64, updatedBy string) error {
	if fee <= 0 {
		return apperror.Validation("delivery fee must be positive")
	}
	if err := s.repo.SetGlobalDeliveryFee(ctx, fee, updatedBy); err != nil {
		return err
	}

	s.RefreshAll(ctx)
	return nil
}

// Refresh drops the cached fee of one campus
func (s *Service) Refresh(ctx context.Context, campusID uint) {
	if s.redisClient == nil {
		return
	}
	if err := s.redisClient.Del(ctx, feeCacheKey(campusID)).Err(); err != nil {
		s.logger.WithError(err).Warn("Failed to drop cached fee")
	}
}

// RefreshAll drops every cached fee
func (s *Service) RefreshAll(ctx context.Context) {
	if s.redisClient == nil {
		return
	}

	iter := s.redisClient.Scan(ctx, 0, "fee:campus:*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		s.logger.WithError(err).Warn("Failed to scan cached fees")
		return
	}
	if len(keys) > 0 {
		if err := s.redisClient.Del(ctx, keys...).Err(); err != nil {
			s.logger.WithError(err).Warn("Failed to drop cached fees")
		}
	}
}

func (s *Service) cached(ctx context.Context, campusID uint) (FeeConfig, bool) {
	if s.redisClient == nil {
		return FeeConfig{}, false
	}

	raw, err := s.redisClient.Get(ctx, feeCacheKey(campusID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.WithError(err).Warn("Fee cache read failed")
		}
		return FeeConfig{}, false
	}

	var fee FeeConfig
	if err := json.Unmarshal(raw, &fee); err != nil || fee.PerPersonCharge <= 0 {
		return FeeConfig{}, false
	}
	return fee, true
}

func (s *Service) store(ctx context.Context, campusID uint, fee FeeConfig) {
	if s.redisClient == nil {
		return
	}

	raw, err := json.Marshal(fee)
	if err != nil {
		return
	}
	if err := s.redisClient.Set(ctx, feeCacheKey(campusID), raw, s.cacheTTL).Err(); err != nil {
		s.logger.WithError(err).Warn("Fee cache write failed")
	}
}
