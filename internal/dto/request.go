package dto

// CreateRequestRequest is the payload for submitting a transcript request.
type CreateRequestRequest struct {
	Course  string `json:"course" validate:"required"`
	Purpose string `json:"purpose" validate:"required"`
	Type    string `json:"type" validate:"required"`
}

// SourceLinkRequest carries the admin-supplied source data URL.
type SourceLinkRequest struct {
	SourceLink string `json:"source_link" validate:"required"`
}

// ExcelLinkRequest carries the user-supplied template evidence.
type ExcelLinkRequest struct {
	ExcelLink string `json:"excel_link" validate:"required"`
}

// UpdateStatusRequest is the generic admin status write.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// Upload describes an inbound multipart file already read into memory.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}

// DownloadResult is either a direct URL or a streamable artifact.
type DownloadResult struct {
	URL         string
	Key         string
	Filename    string
	ContentType string
	Size        int64
}
