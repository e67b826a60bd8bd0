package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Preferences is the user's learned style profile, stored as jsonb.
type Preferences struct {
	Version          int    `json:"version"`
	StyleDescription string `json:"styleDescription"`
}

func (p Preferences) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *Preferences) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("unsupported preferences type %T", value)
	}
}

type User struct {
	ID          string       `json:"id" gorm:"type:uuid;primaryKey"`
	Username    string       `json:"username" gorm:"uniqueIndex;not null"`
	Email       string       `json:"email" gorm:"uniqueIndex;not null"`
	Credits     int          `json:"credits" gorm:"not null;default:120"`
	Preferences *Preferences `json:"preferences" gorm:"type:jsonb"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}

// SavedStyle is a user-named style preset.
type SavedStyle struct {
	ID                string         `json:"id" gorm:"type:uuid;primaryKey"`
	UserID            string         `json:"userId" gorm:"type:uuid;not null;index"`
	Name              string         `json:"name" gorm:"not null"`
	BaseStyle         string         `json:"baseStyle" gorm:"not null"`
	Refinement        string         `json:"refinement,omitempty"`
	ReferenceImageURL string         `json:"referenceImageUrl,omitempty"`
	Tags              pq.StringArray `json:"tags" gorm:"type:text[]"`
	UsageCount        int            `json:"usageCount" gorm:"not null;default:0"`
	CreatedAt         time.Time      `json:"createdAt"`
}

func (s *SavedStyle) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	return
}

// ImageHistory records one completed generation. Records are append-only:
// nothing in the codebase updates or deletes them.
type ImageHistory struct {
	ID          string         `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      string         `json:"userId" gorm:"type:uuid;not null;index"`
	Prompt      string         `json:"prompt" gorm:"not null"`
	Style       string         `json:"style" gorm:"not null"`
	Refinement  string         `json:"refinement,omitempty"`
	Dimension   string         `json:"dimension" gorm:"not null"`
	ImageURLs   pq.StringArray `json:"imageUrls" gorm:"type:text[];not null"`
	StyleID     string         `json:"styleId,omitempty"`
	GeneratedAt time.Time      `json:"generatedAt" gorm:"index"`
}

func (h *ImageHistory) BeforeCreate(tx *gorm.DB) (err error) {
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	if h.GeneratedAt.IsZero() {
		h.GeneratedAt = time.Now().UTC()
	}
	return
}

type ReferenceUpload struct {
	ID         string    `json:"id" gorm:"type:uuid;primaryKey"`
	UserID     string    `json:"userId" gorm:"type:uuid;not null;index"`
	Filename   string    `json:"filename" gorm:"not null"`
	URL        string    `json:"url" gorm:"not null"`
	UploadedAt time.Time `json:"uploadedAt"`
}

func (r *ReferenceUpload) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.UploadedAt.IsZero() {
		r.UploadedAt = time.Now().UTC()
	}
	return
}
