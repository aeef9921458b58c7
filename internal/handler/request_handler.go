package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sit-transcript-api/internal/dto"
	"github.com/noah-isme/sit-transcript-api/internal/service"
	appErrors "github.com/noah-isme/sit-transcript-api/pkg/errors"
	"github.com/noah-isme/sit-transcript-api/pkg/response"
)

// RequestHandler wires HTTP endpoints to the request lifecycle service.
type RequestHandler struct {
	service        *service.RequestService
	maxUploadBytes int64
}

// NewRequestHandler creates a new handler.
func NewRequestHandler(svc *service.RequestService, maxUploadBytes int64) *RequestHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 * 1024 * 1024
	}
	return &RequestHandler{service: svc, maxUploadBytes: maxUploadBytes}
}

// Create godoc
// @Summary Submit a transcript request
// @Tags Requests
// @Accept json
// @Produce json
// @Param payload body dto.CreateRequestRequest true "Request payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /requests [post]
func (h *RequestHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid request payload"))
		return
	}

	record, err := h.service.Create(c.Request.Context(), user, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// ListOwn godoc
// @Summary List the caller's requests
// @Tags Requests
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /requests/my [get]
func (h *RequestHandler) ListOwn(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	records, err := h.service.ListOwn(c.Request.Context(), user)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// GetOwn godoc
// @Summary Get one of the caller's requests
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /requests/{id} [get]
func (h *RequestHandler) GetOwn(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	record, err := h.service.GetOwn(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// ListAll godoc
// @Summary List all requests with owner identity
// @Tags Requests
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /requests [get]
func (h *RequestHandler) ListAll(c *gin.Context) {
	records, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// GetByID godoc
// @Summary Get any request with owner identity
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /requests/admin/{id} [get]
func (h *RequestHandler) GetByID(c *gin.Context) {
	record, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// SetSourceLink godoc
// @Summary Attach source data link and move the request under review
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.SourceLinkRequest true "Source link"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /requests/{id}/source-link [patch]
func (h *RequestHandler) SetSourceLink(c *gin.Context) {
	var req dto.SourceLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	record, err := h.service.SetSourceLink(c.Request.Context(), c.Param("id"), req.SourceLink)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// SetExcelLink godoc
// @Summary Record completed template evidence and approve the request
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.ExcelLinkRequest true "Excel link"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /requests/{id}/excel-link [patch]
func (h *RequestHandler) SetExcelLink(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.ExcelLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	record, err := h.service.SetExcelLink(c.Request.Context(), user, c.Param("id"), req.ExcelLink)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// UploadExcel godoc
// @Summary Upload the filled spreadsheet template
// @Tags Requests
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Request ID"
// @Param file formData file true "Spreadsheet file"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /requests/{id}/upload-excel [post]
func (h *RequestHandler) UploadExcel(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	upload, err := h.readUpload(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	record, err := h.service.UploadExcel(c.Request.Context(), user, c.Param("id"), upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// UploadTranscript godoc
// @Summary Upload the finished transcript document
// @Tags Requests
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Request ID"
// @Param file formData file true "Transcript PDF"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /requests/{id}/upload-transcript [post]
func (h *RequestHandler) UploadTranscript(c *gin.Context) {
	upload, err := h.readUpload(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	record, err := h.service.UploadTranscript(c.Request.Context(), c.Param("id"), upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Verify godoc
// @Summary Complete a request after checking its transcript
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /requests/{id}/verify [patch]
func (h *RequestHandler) Verify(c *gin.Context) {
	record, err := h.service.Verify(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// UpdateStatus godoc
// @Summary Set a request status
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.UpdateStatusRequest true "Target status"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /requests/{id}/status [patch]
func (h *RequestHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	record, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Download godoc
// @Summary Download the transcript artifact
// @Description Streams the file, or returns its public URL when one exists
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /requests/{id}/download [get]
func (h *RequestHandler) Download(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	result, reader, err := h.service.Download(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	if reader == nil {
		response.JSON(c, http.StatusOK, gin.H{"download_url": result.URL}, nil)
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.DataFromReader(http.StatusOK, result.Size, result.ContentType, reader, nil)
}

// readUpload pulls the multipart file into memory, bounded by the upload limit.
func (h *RequestHandler) readUpload(c *gin.Context) (dto.Upload, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return dto.Upload{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "no file provided")
	}
	if fileHeader.Size > h.maxUploadBytes {
		return dto.Upload{}, appErrors.Clone(appErrors.ErrFileTooLarge, fmt.Sprintf("file exceeds maximum size of %d bytes", h.maxUploadBytes))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return dto.Upload{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open upload")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		return dto.Upload{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload")
	}
	if int64(len(data)) > h.maxUploadBytes {
		return dto.Upload{}, appErrors.Clone(appErrors.ErrFileTooLarge, fmt.Sprintf("file exceeds maximum size of %d bytes", h.maxUploadBytes))
	}

	return dto.Upload{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        int64(len(data)),
		Data:        data,
	}, nil
}
