package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sit-transcript-api/internal/models"
	appErrors "github.com/noah-isme/sit-transcript-api/pkg/errors"
	"github.com/noah-isme/sit-transcript-api/pkg/export"
	"github.com/noah-isme/sit-transcript-api/pkg/storage"
)

type exportRequestLister interface {
	ListAllWithOwner(ctx context.Context) ([]models.RequestWithOwner, error)
}

// ExportResult describes a rendered export artifact and its signed link.
type ExportResult struct {
	Format      string    `json:"format"`
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// ExportServiceConfig tunes download link construction.
type ExportServiceConfig struct {
	DownloadBasePath string
}

// ExportService renders the request ledger as CSV or PDF snapshots for
// administrators, stores the artifact and hands out a signed download link.
type ExportService struct {
	requests exportRequestLister
	store    storage.ObjectStore
	signer   *storage.SignedURLSigner
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
	config   ExportServiceConfig
}

// NewExportService constructs an ExportService.
func NewExportService(requests exportRequestLister, store storage.ObjectStore, signer *storage.SignedURLSigner, logger *zap.Logger, config ExportServiceConfig) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.DownloadBasePath == "" {
		config.DownloadBasePath = "/api/v1/exports/download"
	}
	return &ExportService{
		requests: requests,
		store:    store,
		signer:   signer,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
		config:   config,
	}
}

var exportHeaders = []string{"ID", "Owner", "NIM", "Course", "Purpose", "Type", "Status", "Created At", "Completed At"}

// Export renders the full request list in the requested format.
func (s *ExportService) Export(ctx context.Context, format string) (*ExportResult, error) {
	if format != "csv" && format != "pdf" {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	records, err := s.requests.ListAllWithOwner(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
	}

	table := export.Table{Headers: exportHeaders, Rows: make([][]string, 0, len(records))}
	for _, record := range records {
		completedAt := ""
		if record.CompletedAt != nil {
			completedAt = record.CompletedAt.Format(time.RFC3339)
		}
		table.Rows = append(table.Rows, []string{
			record.ID,
			record.OwnerName,
			record.OwnerNIM,
			record.Course,
			record.Purpose,
			record.Type,
			string(record.Status),
			record.CreatedAt.Format(time.RFC3339),
			completedAt,
		})
	}

	var (
		rendered    []byte
		contentType string
	)
	switch format {
	case "csv":
		rendered, err = s.csv.Render(table)
		contentType = "text/csv"
	case "pdf":
		rendered, err = s.pdf.Render(table, "Transcript Requests")
		contentType = "application/pdf"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	exportID := uuid.NewString()
	key := storage.BuildKey(storage.KindExport, exportID, "requests."+format)
	if err := s.store.Put(key, rendered, contentType); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to store export")
	}

	token, expiresAt, err := s.signer.Generate(exportID, key)
	if err != nil {
		if deleteErr := s.store.Delete(key); deleteErr != nil {
			s.logger.Warn("failed to delete orphaned export", zap.String("key", key), zap.Error(deleteErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}

	return &ExportResult{
		Format:      format,
		DownloadURL: fmt.Sprintf("%s?token=%s", s.config.DownloadBasePath, token),
		ExpiresAt:   expiresAt,
	}, nil
}

// Download validates a signed token and opens the referenced artifact.
func (s *ExportService) Download(token string) (io.ReadCloser, *storage.ObjectInfo, error) {
	_, key, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}

	reader, info, err := s.store.Open(key)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export not found")
	}
	return reader, info, nil
}
