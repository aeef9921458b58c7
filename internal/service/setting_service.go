package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/sit-transcript-api/internal/models"
	appErrors "github.com/noah-isme/sit-transcript-api/pkg/errors"
)

type settingRepository interface {
	Get(ctx context.Context, key string) (*models.Setting, error)
	Upsert(ctx context.Context, setting *models.Setting) error
}

// SettingService manages process-wide key-value settings.
type SettingService struct {
	repo   settingRepository
	logger *zap.Logger
}

// NewSettingService constructs a SettingService.
func NewSettingService(repo settingRepository, logger *zap.Logger) *SettingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingService{repo: repo, logger: logger}
}

// GetTemplateLink returns the global template URL, nil when unset.
func (s *SettingService) GetTemplateLink(ctx context.Context) (*string, error) {
	setting, err := s.repo.Get(ctx, models.SettingKeyTemplateLink)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get template link")
	}
	return &setting.Value, nil
}

// SetTemplateLink upserts the global template URL. Admin-gated by the router.
func (s *SettingService) SetTemplateLink(ctx context.Context, value string, actor *models.User) (string, error) {
	if value == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "template link is required")
	}

	setting := &models.Setting{Key: models.SettingKeyTemplateLink, Value: value}
	if actor != nil {
		setting.UpdatedBy = &actor.ID
	}
	if err := s.repo.Upsert(ctx, setting); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update template link")
	}
	return setting.Value, nil
}
