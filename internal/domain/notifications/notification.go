package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Type string

const (
	TypeNewRequest       Type = "new_request"
	TypeAssigned         Type = "assigned"
	TypeReviewNeeded     Type = "review_needed"
	TypeApproved         Type = "approved"
	TypeRejected         Type = "rejected"
	TypePublished        Type = "published"
	TypeDeadlineReminder Type = "deadline_reminder"
)

type RefKind string

const (
	RefContentRequest RefKind = "content_request"
	RefContent        RefKind = "content"
)

// Ref points a notification at exactly one request or content item.
// The zero Ref points at nothing; only the constructors build valid ones.
type Ref struct {
	kind RefKind
	id   uuid.UUID
}

func RequestRef(id uuid.UUID) Ref { return Ref{kind: RefContentRequest, id: id} }
func ContentRef(id uuid.UUID) Ref { return Ref{kind: RefContent, id: id} }

func (r Ref) Kind() RefKind { return r.kind }
func (r Ref) ID() uuid.UUID { return r.id }
func (r Ref) IsZero() bool { return r.kind == "" || r.id == uuid.Nil }
func (r Ref) String() string { return string(r.kind) + ":" + r.id.String() }

func (r Ref) MarshalJSON() ([]byte, error) {
	if r.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(struct {
		Kind RefKind   `json:"kind"`
		ID   uuid.UUID `json:"id"`
	}{r.kind, r.id})
}

type Notification struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID  uuid.UUID `gorm:"type:uuid;column:user_id;not null;index:idx_notification_user_read,priority:1;uniqueIndex:idx_notification_event_user,priority:2" json:"user_id"`
	Type    Type      `gorm:"column:type;not null" json:"type"`
	Title   string    `gorm:"column:title;not null" json:"title"`
	Message string    `gorm:"column:message;not null" json:"message"`

	RelatedKind RefKind   `gorm:"column:related_kind;not null" json:"-"`
	RelatedID   uuid.UUID `gorm:"type:uuid;column:related_id;not null" json:"-"`

	// EventKey identifies the transition that produced the row; one row per
	// (event, recipient) keeps fan-out retries idempotent.
	EventKey string `gorm:"column:event_key;not null;uniqueIndex:idx_notification_event_user,priority:1" json:"event_key"`

	IsRead    bool       `gorm:"column:is_read;not null;index:idx_notification_user_read,priority:2" json:"is_read"`
	ReadAt    *time.Time `gorm:"column:read_at" json:"read_at,omitempty"`
	CreatedAt time.Time  `gorm:"not null;index" json:"created_at"`
}

func (Notification) TableName() string { return "notification" }

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// New builds an unread notification. The reference columns are only ever
// filled from a Ref.
func New(userID uuid.UUID, typ Type, title, message string, ref Ref, eventKey string) *Notification {
	return &Notification{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        typ,
		Title:       title,
		Message:     message,
		RelatedKind: ref.kind,
		RelatedID:   ref.id,
		EventKey:    eventKey,
	}
}

// Related rebuilds the reference from the stored columns.
func (n Notification) Related() Ref {
	switch n.RelatedKind {
	case RefContentRequest, RefContent:
		return Ref{kind: n.RelatedKind, id: n.RelatedID}
	default:
		return Ref{}
	}
}

func (n Notification) MarshalJSON() ([]byte, error) {
	type plain Notification
	return json.Marshal(struct {
		plain
		Related Ref `json:"related"`
	}{plain(n), n.Related()})
}
