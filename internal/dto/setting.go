package dto

// TemplateLinkRequest sets the global template link.
type TemplateLinkRequest struct {
	TemplateLink string `json:"template_link" validate:"required"`
}

// TemplateLinkResponse returns the global template link, null when unset.
type TemplateLinkResponse struct {
	TemplateLink *string `json:"template_link"`
}
