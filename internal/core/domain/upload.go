package domain

import "time"

type UploadStatus string

const (
	UploadStatusUploaded   UploadStatus = "uploaded"
	UploadStatusProcessing UploadStatus = "processing"
	UploadStatusStaged     UploadStatus = "staged"
	UploadStatusCommitted  UploadStatus = "committed"
	UploadStatusDiscarded  UploadStatus = "discarded"
	UploadStatusFailed     UploadStatus = "failed"
)

// Upload tracks one inventory file through parsing, review and commit.
type Upload struct {
	ID             string       `json:"id"`
	Filename       string       `json:"filename"`
	MimeType       string       `json:"mime_type"`
	StoragePath    string       `json:"storage_path"`
	ContentHash    string       `json:"content_hash"`
	Status         UploadStatus `json:"status"`
	ParsedCount    int          `json:"parsed_count"`
	SkippedCount   int          `json:"skipped_count"`
	CommittedCount int          `json:"committed_count"`
	Error          string       `json:"error,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// ParseReport is the outcome of parsing one inventory blob.
type ParseReport struct {
	Products   []Product `json:"products"`
	TotalLines int       `json:"total_lines"`
	Parsed     int       `json:"parsed"`
	Skipped    int       `json:"skipped"`

	// DuplicateIDs lists ids found on more than one line, in first-seen
	// order. The last of those lines is what a commit stores.
	DuplicateIDs []int64 `json:"duplicate_ids,omitempty"`
}
