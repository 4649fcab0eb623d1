package workflow

import (
	"github.com/google/uuid"

	"github.com/yungbote/contentflow-backend/internal/domain/requests"
	"github.com/yungbote/contentflow-backend/internal/domain/user"
)

type Action string

const (
	ActionView             Action = "view"
	ActionSubmitRequest    Action = "request.submit"
	ActionUpdateRequest    Action = "request.update"
	ActionValidateRequest  Action = "request.validate"
	ActionAssignRequest    Action = "request.assign"
	ActionScheduleRequest  Action = "request.schedule"
	ActionPublishRequest   Action = "request.publish"
	ActionForceStatus      Action = "request.force_status"
	ActionDeleteRequest    Action = "request.delete"
	ActionCreateContent    Action = "content.create"
	ActionEditContent      Action = "content.edit"
	ActionSubmitContent    Action = "content.submit"
	ActionApproveContent   Action = "content.approve"
	ActionRejectContent    Action = "content.reject"
	ActionRequestRevision  Action = "content.request_revision"
	ActionDeleteContent    Action = "content.delete"
	ActionReadNotification Action = "notification.read"
	ActionViewStats        Action = "stats.view"
)

// Subject is what an action is performed on, reduced to the facts the
// policy looks at.
type Subject struct {
	OwnerID uuid.UUID
	Team    requests.Assignment
}

func SubjectOf(req *requests.ContentRequest) Subject {
	if req == nil {
		return Subject{}
	}
	return Subject{OwnerID: req.RequestedBy, Team: req.Assignment}
}

// OwnedBy is the subject of a resource that only belongs to one user.
func OwnedBy(id uuid.UUID) Subject { return Subject{OwnerID: id} }

type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision { return Decision{Allowed: true} }
func deny(reason string) Decision { return Decision{Reason: reason} }

// Evaluate is the single place where role, ownership and team membership
// are turned into allow/deny.
func Evaluate(actor user.User, action Action, subject Subject) Decision {
	if actor.ID == uuid.Nil {
		return deny("unknown actor")
	}
	if !actor.IsActive {
		return deny("actor is inactive")
	}
	elevated := actor.IsElevated()
	switch action {
	case ActionView, ActionSubmitRequest:
		return allow()
	case ActionUpdateRequest:
		if elevated || actor.ID == subject.OwnerID {
			return allow()
		}
		return deny("only the requester or an admin may update this request")
	case ActionValidateRequest,
		ActionAssignRequest,
		ActionApproveContent,
		ActionRejectContent,
		ActionRequestRevision,
		ActionForceStatus,
		ActionDeleteRequest,
		ActionDeleteContent,
		ActionViewStats:
		if elevated {
			return allow()
		}
		return deny("admin role required")
	case ActionCreateContent, ActionEditContent, ActionSubmitContent:
		if elevated || subject.Team.Includes(actor.ID) {
			return allow()
		}
		return deny("only the assigned team or an admin may work on this content")
	case ActionScheduleRequest, ActionPublishRequest:
		if elevated {
			return allow()
		}
		if pub, ok := subject.Team.Get(requests.RolePublisher); ok && pub == actor.ID {
			return allow()
		}
		return deny("only the assigned publisher or an admin may do this")
	case ActionReadNotification:
		if actor.ID == subject.OwnerID {
			return allow()
		}
		return deny("notification belongs to another user")
	default:
		return deny("unknown action")
	}
}

// Authorize wraps Evaluate into an Unauthorized error.
func Authorize(op string, actor user.User, action Action, subject Subject) error {
	d := Evaluate(actor, action, subject)
	if d.Allowed {
		return nil
	}
	return unauthorized(op, d.Reason)
}
