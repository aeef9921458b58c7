package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sit-transcript-api/internal/models"
	appErrors "github.com/noah-isme/sit-transcript-api/pkg/errors"
	"github.com/noah-isme/sit-transcript-api/pkg/storage"
)

type stubExportLister struct {
	records []models.RequestWithOwner
}

func (s *stubExportLister) ListAllWithOwner(_ context.Context) ([]models.RequestWithOwner, error) {
	return s.records, nil
}

func exportFixtures() []models.RequestWithOwner {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	completed := now.Add(48 * time.Hour)
	return []models.RequestWithOwner{
		{
			Request: models.Request{
				ID: "req-1", UserID: "user-1", Course: "Informatics", Purpose: "Scholarship",
				Type: "OFFICIAL", Status: models.StatusCompleted, CreatedAt: now, CompletedAt: &completed,
			},
			OwnerName: "Budi", OwnerNIM: "2110191001", OwnerEmail: "budi@example.com",
		},
		{
			Request: models.Request{
				ID: "req-2", UserID: "user-2", Course: "Mathematics", Purpose: "Exchange",
				Type: "DIGITAL", Status: models.StatusSubmitted, CreatedAt: now,
			},
			OwnerName: "Sari", OwnerNIM: "2110191002", OwnerEmail: "sari@example.com",
		},
	}
}

func newExportService(store *stubObjectStore) *ExportService {
	signer := storage.NewSignedURLSigner("export-secret", time.Hour)
	return NewExportService(&stubExportLister{records: exportFixtures()}, store, signer, nil, ExportServiceConfig{
		DownloadBasePath: "/api/v1/exports/download",
	})
}

func TestExportCSV(t *testing.T) {
	store := newStubObjectStore()
	svc := newExportService(store)

	result, err := svc.Export(context.Background(), "csv")
	require.NoError(t, err)
	assert.Equal(t, "csv", result.Format)
	assert.True(t, strings.HasPrefix(result.DownloadURL, "/api/v1/exports/download?token="))
	assert.True(t, result.ExpiresAt.After(time.Now()))

	require.Len(t, store.puts, 1)
	assert.True(t, strings.HasPrefix(store.puts[0], "exports/"))

	content := string(store.objects[store.puts[0]])
	assert.Contains(t, content, "Budi")
	assert.Contains(t, content, "2110191002")
	assert.Contains(t, content, "COMPLETED")
}

func TestExportPDF(t *testing.T) {
	store := newStubObjectStore()
	svc := newExportService(store)

	result, err := svc.Export(context.Background(), "pdf")
	require.NoError(t, err)
	assert.Equal(t, "pdf", result.Format)
	require.Len(t, store.puts, 1)
	assert.Equal(t, "application/pdf", store.types[store.puts[0]])
	assert.True(t, strings.HasPrefix(string(store.objects[store.puts[0]]), "%PDF"))
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	svc := newExportService(newStubObjectStore())

	_, err := svc.Export(context.Background(), "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportDownloadRoundTrip(t *testing.T) {
	store := newStubObjectStore()
	svc := newExportService(store)

	result, err := svc.Export(context.Background(), "csv")
	require.NoError(t, err)

	token := strings.TrimPrefix(result.DownloadURL, "/api/v1/exports/download?token=")
	reader, info, err := svc.Download(token)
	require.NoError(t, err)
	defer reader.Close()

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Equal(t, store.puts[0], info.Key)
}

func TestExportDownloadRejectsTamperedToken(t *testing.T) {
	store := newStubObjectStore()
	svc := newExportService(store)

	result, err := svc.Export(context.Background(), "csv")
	require.NoError(t, err)

	token := strings.TrimPrefix(result.DownloadURL, "/api/v1/exports/download?token=")
	_, _, err = svc.Download(token + "00")
	require.Error(t, err)
	assert.Equal(t, 401, appErrors.FromError(err).Status)
}
