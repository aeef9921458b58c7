package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sit-transcript-api/internal/models"
	appErrors "github.com/noah-isme/sit-transcript-api/pkg/errors"
)

type stubSettingRepo struct {
	settings map[string]*models.Setting
}

func newStubSettingRepo() *stubSettingRepo {
	return &stubSettingRepo{settings: map[string]*models.Setting{}}
}

func (s *stubSettingRepo) Get(_ context.Context, key string) (*models.Setting, error) {
	if setting, ok := s.settings[key]; ok {
		return setting, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubSettingRepo) Upsert(_ context.Context, setting *models.Setting) error {
	clone := *setting
	s.settings[setting.Key] = &clone
	return nil
}

func TestGetTemplateLinkUnset(t *testing.T) {
	svc := NewSettingService(newStubSettingRepo(), nil)

	link, err := svc.GetTemplateLink(context.Background())
	require.NoError(t, err)
	assert.Nil(t, link, "unset template link is null, not an error")
}

func TestSetAndGetTemplateLink(t *testing.T) {
	repo := newStubSettingRepo()
	svc := NewSettingService(repo, nil)
	actor := &models.User{ID: "admin-1", Role: models.RoleAdmin}

	value, err := svc.SetTemplateLink(context.Background(), "https://example.com/template.xlsx", actor)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/template.xlsx", value)

	stored := repo.settings[models.SettingKeyTemplateLink]
	require.NotNil(t, stored)
	require.NotNil(t, stored.UpdatedBy)
	assert.Equal(t, "admin-1", *stored.UpdatedBy)

	link, err := svc.GetTemplateLink(context.Background())
	require.NoError(t, err)
	require.NotNil(t, link)
	assert.Equal(t, "https://example.com/template.xlsx", *link)
}

func TestSetTemplateLinkOverwrites(t *testing.T) {
	repo := newStubSettingRepo()
	svc := NewSettingService(repo, nil)

	_, err := svc.SetTemplateLink(context.Background(), "https://old.example.com", nil)
	require.NoError(t, err)
	_, err = svc.SetTemplateLink(context.Background(), "https://new.example.com", nil)
	require.NoError(t, err)

	link, err := svc.GetTemplateLink(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://new.example.com", *link)
}

func TestSetTemplateLinkRequiresValue(t *testing.T) {
	svc := NewSettingService(newStubSettingRepo(), nil)

	_, err := svc.SetTemplateLink(context.Background(), "", nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
