package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type MedicalRecord struct {
	ID          uuid.UUID `db:"id" json:"id"`
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	FileName    string    `db:"file_name" json:"file_name"`
	FilePath    string    `db:"file_path" json:"file_path"`
	RecordType  string    `db:"record_type" json:"record_type"`
	RecordDate  string    `db:"record_date" json:"record_date"`
	Provider    string    `db:"provider" json:"provider"`
	Description string    `db:"description" json:"description,omitempty"`
	Tags        string    `db:"tags" json:"-"`
	UploadedAt  time.Time `db:"uploaded_at" json:"uploaded_at"`
}

// TagList splits the legacy comma-joined tags column.
func (r *MedicalRecord) TagList() []string {
	if r.Tags == "" {
		return nil
	}
	parts := strings.Split(r.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func JoinTags(tags []string) string {
	return strings.Join(tags, ",")
}

type AddRecordRequest struct {
	FileName    string   `json:"file_name" binding:"required"`
	FilePath    string   `json:"file_path"`
	RecordType  string   `json:"record_type" binding:"required"`
	RecordDate  string   `json:"record_date" binding:"required"`
	Provider    string   `json:"provider"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

type RecordFilters struct {
	RecordType string
	Tag        string
}
