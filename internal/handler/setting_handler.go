package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sit-transcript-api/internal/dto"
	"github.com/noah-isme/sit-transcript-api/internal/service"
	appErrors "github.com/noah-isme/sit-transcript-api/pkg/errors"
	"github.com/noah-isme/sit-transcript-api/pkg/response"
)

// SettingHandler wires HTTP endpoints to the settings service.
type SettingHandler struct {
	service *service.SettingService
}

// NewSettingHandler creates a new handler.
func NewSettingHandler(svc *service.SettingService) *SettingHandler {
	return &SettingHandler{service: svc}
}

// GetTemplateLink godoc
// @Summary Get the global template link
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /settings/template-link [get]
func (h *SettingHandler) GetTemplateLink(c *gin.Context) {
	link, err := h.service.GetTemplateLink(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.TemplateLinkResponse{TemplateLink: link}, nil)
}

// SetTemplateLink godoc
// @Summary Set the global template link
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body dto.TemplateLinkRequest true "Template link"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /settings/template-link [put]
func (h *SettingHandler) SetTemplateLink(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.TemplateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	value, err := h.service.SetTemplateLink(c.Request.Context(), req.TemplateLink, user)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.TemplateLinkResponse{TemplateLink: &value}, nil)
}
