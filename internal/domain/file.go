package domain

import "time"

// UploadedFile is the metadata of one stored spreadsheet. Row data is never persisted.
type UploadedFile struct {
	FileID       string    `json:"id"`
	OwnerID      string    `json:"user"`
	StoredName   string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	Size         int64     `json:"size"`
	UploadedAt   time.Time `json:"uploadDate"`
}

// FileOwner is the owner snapshot joined into admin file listings.
type FileOwner struct {
	UserID string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// AdminFile is an UploadedFile with its owner denormalized at query time.
// Owner is nil when the owning user no longer resolves.
type AdminFile struct {
	FileID       string     `json:"id"`
	Owner        *FileOwner `json:"user"`
	StoredName   string     `json:"filename"`
	OriginalName string     `json:"originalName"`
	Size         int64      `json:"size"`
	UploadedAt   time.Time  `json:"uploadDate"`
}
