package models

import "time"

// Photo describes a guest-uploaded picture. The image itself lives in
// object storage under StoragePath.
type Photo struct {
	ID           string
	FileName     string
	StoragePath  string
	FileSize     int64
	MimeType     string
	UploaderName string
	UploadedAt   time.Time
	// IsApproved is set by moderation outside this service; only approved
	// photos are ever listed.
	IsApproved bool
}
