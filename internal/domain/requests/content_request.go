package requests

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusValidated  Status = "validated"
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "in-progress"
	StatusReview     Status = "review"
	StatusApproved   Status = "approved"
	StatusScheduled  Status = "scheduled"
	StatusPublished  Status = "published"
	StatusRejected   Status = "rejected"
)

var AllStatuses = []Status{
	StatusPending,
	StatusValidated,
	StatusAssigned,
	StatusInProgress,
	StatusReview,
	StatusApproved,
	StatusScheduled,
	StatusPublished,
	StatusRejected,
}

func (s Status) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

var AllPriorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// Rank orders priorities low < medium < high < urgent. Unknown values rank 0.
func (p Priority) Rank() int {
	for i, known := range AllPriorities {
		if p == known {
			return i + 1
		}
	}
	return 0
}

type ContentType string

const (
	ContentTypePoster     ContentType = "Poster"
	ContentTypeCarousel   ContentType = "Carousel"
	ContentTypeVideo      ContentType = "Video"
	ContentTypeCaption    ContentType = "Caption"
	ContentTypeLiputan    ContentType = "Liputan"
	ContentTypeInfografis ContentType = "Infografis"
)

var AllContentTypes = []ContentType{
	ContentTypePoster,
	ContentTypeCarousel,
	ContentTypeVideo,
	ContentTypeCaption,
	ContentTypeLiputan,
	ContentTypeInfografis,
}

type ContentRequest struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TicketCode string    `gorm:"column:ticket_code;not null;uniqueIndex" json:"ticket_code"`

	Title            string                      `gorm:"column:title;not null" json:"title"`
	ContentType      ContentType                 `gorm:"column:content_type;not null;index" json:"content_type"`
	Deadline         time.Time                   `gorm:"column:deadline;not null" json:"deadline"`
	Priority         Priority                    `gorm:"column:priority;not null;index" json:"priority"`
	Purpose          string                      `gorm:"column:purpose;not null" json:"purpose"`
	Description      string                      `gorm:"column:description;not null" json:"description"`
	TargetAudience   string                      `gorm:"column:target_audience;not null" json:"target_audience"`
	KeyPoints        datatypes.JSONSlice[string] `gorm:"column:key_points" json:"key_points"`
	PublishPlatforms datatypes.JSONSlice[string] `gorm:"column:publish_platforms" json:"publish_platforms"`
	References       datatypes.JSONSlice[string] `gorm:"column:reference_links" json:"references"`
	Notes            string                      `gorm:"column:notes" json:"notes,omitempty"`

	Status     Status     `gorm:"column:status;not null;index" json:"status"`
	Assignment Assignment `gorm:"embedded;embeddedPrefix:assigned_" json:"assignment"`

	RequestedBy     uuid.UUID  `gorm:"type:uuid;column:requested_by;not null;index" json:"requested_by"`
	RequestedAt     time.Time  `gorm:"column:requested_at;not null" json:"requested_at"`
	ValidatedBy     *uuid.UUID `gorm:"type:uuid;column:validated_by" json:"validated_by,omitempty"`
	ValidatedAt     *time.Time `gorm:"column:validated_at" json:"validated_at,omitempty"`
	RejectionReason string     `gorm:"column:rejection_reason" json:"rejection_reason,omitempty"`

	// LockVersion guards every update: writers must present the value they read.
	LockVersion int `gorm:"column:lock_version;not null" json:"lock_version"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ContentRequest) TableName() string { return "content_request" }

func (r *ContentRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.LockVersion == 0 {
		r.LockVersion = 1
	}
	return nil
}

// Clone returns a copy that shares no slices or pointers with r.
func (r *ContentRequest) Clone() *ContentRequest {
	if r == nil {
		return nil
	}
	out := *r
	out.KeyPoints = append(datatypes.JSONSlice[string](nil), r.KeyPoints...)
	out.PublishPlatforms = append(datatypes.JSONSlice[string](nil), r.PublishPlatforms...)
	out.References = append(datatypes.JSONSlice[string](nil), r.References...)
	out.Assignment = r.Assignment.Clone()
	if r.ValidatedBy != nil {
		id := *r.ValidatedBy
		out.ValidatedBy = &id
	}
	if r.ValidatedAt != nil {
		at := *r.ValidatedAt
		out.ValidatedAt = &at
	}
	return &out
}

// Brief is the requester-supplied part of a request.
type Brief struct {
	Title            string      `json:"title" validate:"required"`
	ContentType      ContentType `json:"content_type" validate:"required,oneof=Poster Carousel Video Caption Liputan Infografis"`
	Deadline         time.Time   `json:"deadline" validate:"required"`
	Priority         Priority    `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Purpose          string      `json:"purpose" validate:"required"`
	Description      string      `json:"description" validate:"required"`
	TargetAudience   string      `json:"target_audience" validate:"required"`
	KeyPoints        []string    `json:"key_points" validate:"min=1,dive,required"`
	PublishPlatforms []string    `json:"publish_platforms" validate:"min=1,dive,required"`
	References       []string    `json:"references"`
	Notes            string      `json:"notes"`
}

// BriefPatch carries the fields a non-privileged update may change.
type BriefPatch struct {
	Title            *string      `json:"title"`
	ContentType      *ContentType `json:"content_type"`
	Deadline         *time.Time   `json:"deadline"`
	Priority         *Priority    `json:"priority"`
	Purpose          *string      `json:"purpose"`
	Description      *string      `json:"description"`
	TargetAudience   *string      `json:"target_audience"`
	KeyPoints        *[]string    `json:"key_points"`
	PublishPlatforms *[]string    `json:"publish_platforms"`
	References       *[]string    `json:"references"`
	Notes            *string      `json:"notes"`
}

// BriefOf extracts the brief fields of a stored request.
func BriefOf(r *ContentRequest) Brief {
	return Brief{
		Title:            r.Title,
		ContentType:      r.ContentType,
		Deadline:         r.Deadline,
		Priority:         r.Priority,
		Purpose:          r.Purpose,
		Description:      r.Description,
		TargetAudience:   r.TargetAudience,
		KeyPoints:        append([]string(nil), r.KeyPoints...),
		PublishPlatforms: append([]string(nil), r.PublishPlatforms...),
		References:       append([]string(nil), r.References...),
		Notes:            r.Notes,
	}
}

// ApplyBrief copies a cleaned brief onto r.
func (r *ContentRequest) ApplyBrief(b Brief) {
	r.Title = b.Title
	r.ContentType = b.ContentType
	r.Deadline = b.Deadline
	r.Priority = b.Priority
	r.Purpose = b.Purpose
	r.Description = b.Description
	r.TargetAudience = b.TargetAudience
	r.KeyPoints = datatypes.JSONSlice[string](b.KeyPoints)
	r.PublishPlatforms = datatypes.JSONSlice[string](b.PublishPlatforms)
	r.References = datatypes.JSONSlice[string](b.References)
	r.Notes = b.Notes
}

// Stats is the status/priority/type breakdown of all requests.
type Stats struct {
	Total      int64                 `json:"total"`
	Pending    int64                 `json:"pending"`
	InProgress int64                 `json:"in_progress"`
	Completed  int64                 `json:"completed"`
	ByStatus   map[Status]int64      `json:"by_status"`
	ByPriority map[Priority]int64    `json:"by_priority"`
	ByType     map[ContentType]int64 `json:"by_type"`
}
