package workflow

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/contentflow-backend/internal/domain/notifications"
	"github.com/yungbote/contentflow-backend/internal/domain/requests"
)

// Audience names who a notification goes to, resolved at send time.
type Audience string

const (
	AudienceElevated         Audience = "elevated"
	AudienceRequester        Audience = "requester"
	AudienceTeam             Audience = "team"
	AudienceRequesterAndTeam Audience = "requester_and_team"
)

type TemplateKey string

const (
	TemplateRequestCreated   TemplateKey = "request_created"
	TemplateRequestValidated TemplateKey = "request_validated"
	TemplateRequestAssigned  TemplateKey = "request_assigned"
	TemplateRequestPublished TemplateKey = "request_published"
	TemplateContentReview    TemplateKey = "content_review"
	TemplateContentApproved  TemplateKey = "content_approved"
	TemplateContentRejected  TemplateKey = "content_rejected"
	TemplateContentRevision  TemplateKey = "content_revision"
)

type TemplateData struct {
	Title  string
	Ticket string
	Notes  string
}

// NotifyEffect is a notification the executor must fan out once the state
// change it belongs to has been committed.
type NotifyEffect struct {
	Type     notifications.Type
	Template TemplateKey
	Audience Audience
	Ref      notifications.Ref
	EventKey string
	Data     TemplateData
}

// StaticRecipients resolves audiences that are fixed by the request itself.
// The second return is false when the audience needs the user directory.
func StaticRecipients(a Audience, req *requests.ContentRequest) ([]uuid.UUID, bool) {
	switch a {
	case AudienceRequester:
		return Dedupe([]uuid.UUID{req.RequestedBy}), true
	case AudienceTeam:
		return req.Assignment.Members(), true
	case AudienceRequesterAndTeam:
		return Dedupe([]uuid.UUID{req.RequestedBy}, req.Assignment.Members()), true
	default:
		return nil, false
	}
}

// Dedupe flattens groups keeping first-seen order and dropping uuid.Nil.
func Dedupe(groups ...[]uuid.UUID) []uuid.UUID {
	seen := map[uuid.UUID]struct{}{}
	out := make([]uuid.UUID, 0)
	for _, g := range groups {
		for _, id := range g {
			if id == uuid.Nil {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

func eventKey(event string, id uuid.UUID, lockVersion int) string {
	return fmt.Sprintf("%s:%s:%d", event, id, lockVersion)
}
