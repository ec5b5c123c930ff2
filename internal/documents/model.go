package documents

import "time"

// Document is the metadata record owning one stored blob.
type Document struct {
	ID          string
	FileName    string
	FileSize    int64
	ContentType string
	StorageKey  string
	PublicURL   string
	UploadedAt  time.Time

	Summary          string
	SummaryLanguage  string
	SummaryUpdatedAt *time.Time
}

// HasSummary reports whether a summary has been persisted for the document.
func (d Document) HasSummary() bool {
	return d.Summary != ""
}
