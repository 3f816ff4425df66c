package pgx

import "time"

type Document struct {
	ID             int64
	OwnerID        int64
	FolderID       *int64
	Name           string
	MimeType       string
	IndexedTextKey string
	UploadedAt     time.Time
}

type Entity struct {
	ID         int64
	Name       string
	Type       string
	Importance float64
}

type DocumentCluster struct {
	ID          int64
	PublicID    string
	UserID      int64
	SetID       string
	Name        string
	Description string
	Keywords    []string
	CreatedAt   time.Time
}
