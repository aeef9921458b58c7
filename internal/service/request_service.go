package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sit-transcript-api/internal/dto"
	"github.com/noah-isme/sit-transcript-api/internal/models"
	appErrors "github.com/noah-isme/sit-transcript-api/pkg/errors"
	"github.com/noah-isme/sit-transcript-api/pkg/storage"
)

type requestRepository interface {
	Create(ctx context.Context, req *models.Request) error
	FindByID(ctx context.Context, id string) (*models.Request, error)
	FindByIDForUser(ctx context.Context, id, userID string) (*models.Request, error)
	ListByUser(ctx context.Context, userID string) ([]models.Request, error)
	ListAllWithOwner(ctx context.Context) ([]models.RequestWithOwner, error)
	FindByIDWithOwner(ctx context.Context, id string) (*models.RequestWithOwner, error)
	Update(ctx context.Context, req *models.Request) error
}

// RequestServiceConfig tunes upload limits and URL derivation.
type RequestServiceConfig struct {
	PublicBaseURL    string
	MaxUploadBytes   int64
	TranscriptMIMEs  []string
	SpreadsheetMIMEs []string
	DownloadBasePath string
}

type uploadObserver interface {
	ObserveUpload(kind string)
}

// RequestService owns the request lifecycle: every status write goes through
// the transition table in models.CanTransition.
type RequestService struct {
	repo      requestRepository
	store     storage.ObjectStore
	validator *validator.Validate
	logger    *zap.Logger
	metrics   uploadObserver
	config    RequestServiceConfig
}

// NewRequestService constructs a RequestService.
func NewRequestService(repo requestRepository, store storage.ObjectStore, validate *validator.Validate, logger *zap.Logger, config RequestServiceConfig) *RequestService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = 10 * 1024 * 1024
	}
	if len(config.TranscriptMIMEs) == 0 {
		config.TranscriptMIMEs = []string{"application/pdf"}
	}
	if len(config.SpreadsheetMIMEs) == 0 {
		config.SpreadsheetMIMEs = []string{
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			"application/vnd.ms-excel",
		}
	}
	return &RequestService{repo: repo, store: store, validator: validate, logger: logger, config: config}
}

// AttachMetrics enables per-kind upload counting.
func (s *RequestService) AttachMetrics(metrics uploadObserver) {
	s.metrics = metrics
}

// Create submits a new transcript request for the authenticated user.
func (s *RequestService) Create(ctx context.Context, user *models.User, req dto.CreateRequestRequest) (*models.Request, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request payload")
	}

	record := &models.Request{
		UserID:  user.ID,
		Course:  req.Course,
		Purpose: req.Purpose,
		Type:    req.Type,
		Status:  models.StatusSubmitted,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create request")
	}
	return record, nil
}

// GetOwn returns a request owned by the caller. A foreign id yields the same
// not-found error as a missing one.
func (s *RequestService) GetOwn(ctx context.Context, user *models.User, id string) (*models.Request, error) {
	record, err := s.repo.FindByIDForUser(ctx, id, user.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch request")
	}
	return record, nil
}

// ListOwn returns the caller's requests, newest first.
func (s *RequestService) ListOwn(ctx context.Context, user *models.User) ([]models.Request, error) {
	records, err := s.repo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
	}
	return records, nil
}

// ListAll returns every request with owner identity (admin view).
func (s *RequestService) ListAll(ctx context.Context) ([]models.RequestWithOwner, error) {
	records, err := s.repo.ListAllWithOwner(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
	}
	return records, nil
}

// GetByID returns any request with owner identity (admin view).
func (s *RequestService) GetByID(ctx context.Context, id string) (*models.RequestWithOwner, error) {
	record, err := s.repo.FindByIDWithOwner(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch request")
	}
	return record, nil
}

// SetSourceLink attaches the admin-supplied source data URL and moves the
// request under review. Legal only before the student has produced work:
// a COMPLETED request can never regress here.
func (s *RequestService) SetSourceLink(ctx context.Context, id, link string) (*models.Request, error) {
	if link == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "source link is required")
	}

	record, err := s.loadForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Status != models.StatusSubmitted && record.Status != models.StatusUnderReview {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("cannot attach source link while request is %s", record.Status))
	}
	if err := s.applyTransition(record, models.StatusUnderReview); err != nil {
		return nil, err
	}
	record.SourceLink = &link

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update request")
	}
	return record, nil
}

// SetExcelLink records the owner's completed template evidence and approves
// the request.
func (s *RequestService) SetExcelLink(ctx context.Context, user *models.User, id, value string) (*models.Request, error) {
	if value == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "excel link is required")
	}

	record, err := s.repo.FindByIDForUser(ctx, id, user.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch request")
	}
	if record.Status != models.StatusUnderReview {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("cannot submit excel while request is %s", record.Status))
	}
	if err := s.applyTransition(record, models.StatusApproved); err != nil {
		return nil, err
	}
	record.ExcelLink = &value

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update request")
	}
	return record, nil
}

// UploadExcel stores the owner's filled template and approves the request.
// The artifact URL (or its raw storage key when no public base is configured)
// lands in excel_link.
func (s *RequestService) UploadExcel(ctx context.Context, user *models.User, id string, upload dto.Upload) (*models.Request, error) {
	if err := s.validateUpload(upload, s.config.SpreadsheetMIMEs); err != nil {
		return nil, err
	}

	record, err := s.repo.FindByIDForUser(ctx, id, user.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch request")
	}
	if record.Status != models.StatusUnderReview {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("cannot submit excel while request is %s", record.Status))
	}

	key := storage.BuildKey(storage.KindExcel, record.ID, upload.Filename)
	if err := s.store.Put(key, upload.Data, upload.ContentType); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to store excel file")
	}

	link := storage.PublicURL(s.config.PublicBaseURL, key)
	if link == "" {
		link = key
	}
	if err := s.applyTransition(record, models.StatusApproved); err != nil {
		s.compensateStored(key)
		return nil, err
	}
	record.ExcelLink = &link

	if err := s.repo.Update(ctx, record); err != nil {
		s.compensateStored(key)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update request")
	}
	s.observeUpload(storage.KindExcel)
	return record, nil
}

// UploadTranscript stores the verified transcript artifact and binds its key,
// URL and size to the request. Status is not changed here; the explicit
// verify step completes the request.
func (s *RequestService) UploadTranscript(ctx context.Context, id string, upload dto.Upload) (*models.Request, error) {
	if err := s.validateUpload(upload, s.config.TranscriptMIMEs); err != nil {
		return nil, err
	}

	record, err := s.loadForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}

	key := storage.BuildKey(storage.KindTranscript, record.ID, upload.Filename)
	if err := s.store.Put(key, upload.Data, upload.ContentType); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to store transcript")
	}

	url := storage.PublicURL(s.config.PublicBaseURL, key)
	if url == "" {
		url = fmt.Sprintf("%s/%s/download", s.config.DownloadBasePath, record.ID)
	}
	size := upload.Size

	record.TranscriptKey = &key
	record.TranscriptURL = &url
	record.FileSize = &size

	if err := s.repo.Update(ctx, record); err != nil {
		// keep the key/url binding invariant: no record, no blob
		s.compensateStored(key)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update request")
	}
	s.observeUpload(storage.KindTranscript)
	return record, nil
}

// Verify completes a request. A transcript artifact is not a precondition:
// link-only flows finish here too, with nothing to download afterwards.
// Idempotent: verifying a COMPLETED request refreshes the timestamp only.
func (s *RequestService) Verify(ctx context.Context, id string) (*models.Request, error) {
	record, err := s.loadForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.TranscriptKey == nil {
		s.logger.Warn("completing request without transcript artifact", zap.String("request_id", record.ID))
	}
	if err := s.applyTransition(record, models.StatusCompleted); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update request")
	}
	return record, nil
}

// UpdateStatus is the generic admin status write. It consults the same
// transition table as every other operation instead of bypassing it.
func (s *RequestService) UpdateStatus(ctx context.Context, id string, status string) (*models.Request, error) {
	target := models.RequestStatus(status)
	if !target.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", status))
	}

	record, err := s.loadForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyTransition(record, target); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update request")
	}
	return record, nil
}

// Download resolves the transcript artifact for a request. The caller must be
// the owning user or an admin; the check happens before any storage call.
// When a public base URL is configured only the URL is returned, otherwise a
// byte stream is opened for the handler to pipe through.
func (s *RequestService) Download(ctx context.Context, user *models.User, id string) (*dto.DownloadResult, io.ReadCloser, error) {
	record, err := s.loadForUpdate(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if user.Role != models.RoleAdmin && record.UserID != user.ID {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "forbidden")
	}
	if record.TranscriptKey == nil {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "no transcript available")
	}
	key := *record.TranscriptKey

	if url := storage.PublicURL(s.config.PublicBaseURL, key); url != "" {
		return &dto.DownloadResult{URL: url, Key: key}, nil, nil
	}

	reader, info, err := s.store.Open(key)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "transcript file not found in storage")
	}
	result := &dto.DownloadResult{
		Key:         key,
		Filename:    storage.FilenameFromKey(key),
		ContentType: info.ContentType,
		Size:        info.Size,
	}
	return result, reader, nil
}

func (s *RequestService) loadForUpdate(ctx context.Context, id string) (*models.Request, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch request")
	}
	return record, nil
}

// applyTransition moves a request to the target status, stamping the
// milestone timestamp. A same-status write refreshes the timestamp only.
func (s *RequestService) applyTransition(record *models.Request, to models.RequestStatus) error {
	if !models.CanTransition(record.Status, to) {
		return appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("cannot move request from %s to %s", record.Status, to))
	}
	now := time.Now().UTC()
	record.Status = to
	switch to {
	case models.StatusUnderReview:
		record.UnderReviewAt = &now
	case models.StatusApproved:
		record.ApprovedAt = &now
	case models.StatusCompleted:
		record.CompletedAt = &now
	}
	return nil
}

func (s *RequestService) validateUpload(upload dto.Upload, allowed []string) error {
	if len(upload.Data) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "no file provided")
	}
	if upload.Size > s.config.MaxUploadBytes {
		return appErrors.Clone(appErrors.ErrFileTooLarge, fmt.Sprintf("file exceeds maximum size of %d bytes", s.config.MaxUploadBytes))
	}
	for _, mime := range allowed {
		if upload.ContentType == mime {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrInvalidFileType, fmt.Sprintf("file type %s is not allowed", upload.ContentType))
}

func (s *RequestService) observeUpload(kind string) {
	if s.metrics != nil {
		s.metrics.ObserveUpload(kind)
	}
}

// compensateStored deletes a blob written ahead of a failed database update
// so the key/url binding invariant holds.
func (s *RequestService) compensateStored(key string) {
	if err := s.store.Delete(key); err != nil {
		s.logger.Warn("failed to delete orphaned blob", zap.String("key", key), zap.Error(err))
	}
}
