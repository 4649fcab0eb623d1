package contents

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/contentflow-backend/internal/domain/requests"
)

type Status string

const (
	StatusDraft    Status = "draft"
	StatusReview   Status = "review"
	StatusRevision Status = "revision"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

var AllStatuses = []Status{StatusDraft, StatusReview, StatusRevision, StatusApproved, StatusRejected}

func (s Status) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// DefaultRevisionChanges is recorded when an edit carries no change note.
const DefaultRevisionChanges = "Content updated"

type MediaKind string

const (
	MediaImage    MediaKind = "image"
	MediaVideo    MediaKind = "video"
	MediaDesign   MediaKind = "design"
	MediaDocument MediaKind = "document"
)

// KindForMIME maps an upload MIME type onto the attachment kind.
func KindForMIME(mime string) MediaKind {
	mime = strings.ToLower(strings.TrimSpace(mime))
	switch {
	case strings.HasPrefix(mime, "image/vnd.adobe.photoshop"):
		return MediaDesign
	case strings.HasPrefix(mime, "image/"):
		return MediaImage
	case strings.HasPrefix(mime, "video/"):
		return MediaVideo
	case mime == "application/pdf",
		strings.Contains(mime, "photoshop"),
		strings.Contains(mime, "illustrator"),
		strings.Contains(mime, "postscript"):
		return MediaDesign
	default:
		return MediaDocument
	}
}

type FileAttachment struct {
	Path       string    `json:"path"`
	Filename   string    `json:"filename"`
	Kind       MediaKind `json:"kind"`
	MimeType   string    `json:"mime_type,omitempty"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type Content struct {
	ID          uuid.UUID            `gorm:"type:uuid;primaryKey" json:"id"`
	RequestID   uuid.UUID            `gorm:"type:uuid;column:request_id;not null;index" json:"request_id"`
	Title       string               `gorm:"column:title;not null" json:"title"`
	ContentType requests.ContentType `gorm:"column:content_type;not null" json:"content_type"`
	Caption     string               `gorm:"column:caption" json:"caption"`

	Hashtags datatypes.JSONSlice[string]         `gorm:"column:hashtags" json:"hashtags"`
	Files    datatypes.JSONSlice[FileAttachment] `gorm:"column:files" json:"files"`

	// Version is always 1 + len(Revisions).
	Version   int        `gorm:"column:version;not null" json:"version"`
	Revisions []Revision `gorm:"foreignKey:ContentID;references:ID" json:"revisions"`

	Status      Status     `gorm:"column:status;not null;index" json:"status"`
	CreatedBy   uuid.UUID  `gorm:"type:uuid;column:created_by;not null" json:"created_by"`
	ReviewedBy  *uuid.UUID `gorm:"type:uuid;column:reviewed_by" json:"reviewed_by,omitempty"`
	ReviewNotes string     `gorm:"column:review_notes" json:"review_notes,omitempty"`
	ApprovedBy  *uuid.UUID `gorm:"type:uuid;column:approved_by" json:"approved_by,omitempty"`
	ApprovedAt  *time.Time `gorm:"column:approved_at" json:"approved_at,omitempty"`

	LockVersion int `gorm:"column:lock_version;not null" json:"lock_version"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Content) TableName() string { return "content" }

func (c *Content) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.LockVersion == 0 {
		c.LockVersion = 1
	}
	return nil
}

// Clone returns a deep copy; revisions are copied by value.
func (c *Content) Clone() *Content {
	if c == nil {
		return nil
	}
	out := *c
	out.Hashtags = append(datatypes.JSONSlice[string](nil), c.Hashtags...)
	out.Files = append(datatypes.JSONSlice[FileAttachment](nil), c.Files...)
	out.Revisions = append([]Revision(nil), c.Revisions...)
	if c.ReviewedBy != nil {
		id := *c.ReviewedBy
		out.ReviewedBy = &id
	}
	if c.ApprovedBy != nil {
		id := *c.ApprovedBy
		out.ApprovedBy = &id
	}
	if c.ApprovedAt != nil {
		at := *c.ApprovedAt
		out.ApprovedAt = &at
	}
	return &out
}

// Revision records the state a content item left behind. Rows are never updated.
type Revision struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ContentID uuid.UUID `gorm:"type:uuid;column:content_id;not null;uniqueIndex:idx_content_revision_version,priority:1" json:"content_id"`
	Version   int       `gorm:"column:version;not null;uniqueIndex:idx_content_revision_version,priority:2" json:"version"`
	Changes   string    `gorm:"column:changes;not null" json:"changes"`
	RevisedBy uuid.UUID `gorm:"type:uuid;column:revised_by;not null" json:"revised_by"`
	RevisedAt time.Time `gorm:"column:revised_at;not null" json:"revised_at"`
}

func (Revision) TableName() string { return "content_revision" }

func (r *Revision) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Draft is the producer-supplied part of a new content item.
type Draft struct {
	Title       string               `json:"title"`
	ContentType requests.ContentType `json:"content_type"`
	Caption     string               `json:"caption"`
	Hashtags    []string             `json:"hashtags"`
	Files       []FileAttachment     `json:"files"`
}

// Edits is a partial update. Caption and Files are the revision-worthy fields.
type Edits struct {
	Title    *string           `json:"title"`
	Caption  *string           `json:"caption"`
	Hashtags *[]string         `json:"hashtags"`
	Files    *[]FileAttachment `json:"files"`
	Changes  string            `json:"changes"`
}

func (e Edits) RevisionWorthy() bool {
	return e.Caption != nil || e.Files != nil
}

func (e Edits) Empty() bool {
	return e.Title == nil && e.Caption == nil && e.Hashtags == nil && e.Files == nil
}

// VersionHistory is the read model of a content item's revision log.
type VersionHistory struct {
	ContentID      uuid.UUID  `json:"content_id"`
	Title          string     `json:"title"`
	CurrentVersion int        `json:"current_version"`
	History        []Revision `json:"history"`
}
