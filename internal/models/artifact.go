package models

import "time"

// ArtifactKind is the format of a generated export.
type ArtifactKind string

const (
	ArtifactCSV ArtifactKind = "csv"
	ArtifactPDF ArtifactKind = "pdf"
)

// ContentType returns the MIME type served for the artifact.
func (k ArtifactKind) ContentType() string {
	switch k {
	case ArtifactCSV:
		return "text/csv; charset=utf-8"
	case ArtifactPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// ArtifactInfo describes a stored export file.
type ArtifactInfo struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Kind      ArtifactKind `json:"kind"`
	Device    string       `json:"device"`
	Size      int64        `json:"size"`
	CreatedAt time.Time    `json:"createdAt"`
}
