package documents

import "time"

// FileResponse is the listing shape of a document.
type FileResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// FileDetailResponse adds the persisted summary to FileResponse.
type FileDetailResponse struct {
	FileResponse
	ContentType      string     `json:"contentType,omitempty"`
	Summary          string     `json:"summary,omitempty"`
	SummaryLanguage  string     `json:"summaryLanguage,omitempty"`
	SummaryUpdatedAt *time.Time `json:"summaryUpdatedAt,omitempty"`
}

type deleteResponse struct {
	Success bool `json:"success"`
}

type textResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Text string `json:"text"`
}

func toResponse(doc Document) FileResponse {
	return FileResponse{
		ID:         doc.ID,
		Name:       doc.FileName,
		Size:       doc.FileSize,
		URL:        doc.PublicURL,
		UploadedAt: doc.UploadedAt,
	}
}

func toDetailResponse(doc Document) FileDetailResponse {
	return FileDetailResponse{
		FileResponse:     toResponse(doc),
		ContentType:      doc.ContentType,
		Summary:          doc.Summary,
		SummaryLanguage:  doc.SummaryLanguage,
		SummaryUpdatedAt: doc.SummaryUpdatedAt,
	}
}
