package workflow

import "github.com/yungbote/contentflow-backend/internal/domain/requests"

type RequestEvent string

const (
	EventValidate       RequestEvent = "validate"
	EventAssign         RequestEvent = "assign"
	EventContentCreated RequestEvent = "content_created"
	EventSubmitReview   RequestEvent = "submit_review"
	EventApprove        RequestEvent = "approve"
	EventReject         RequestEvent = "reject"
	EventSchedule       RequestEvent = "schedule"
	EventPublish        RequestEvent = "publish"
)

type requestEdge struct {
	from []requests.Status
	to   requests.Status
}

// rejected re-enters production through new or resubmitted content only.
var requestEdges = map[RequestEvent]requestEdge{
	EventValidate:       {from: []requests.Status{requests.StatusPending}, to: requests.StatusValidated},
	EventAssign:         {from: []requests.Status{requests.StatusValidated}, to: requests.StatusAssigned},
	EventContentCreated: {from: []requests.Status{requests.StatusAssigned, requests.StatusInProgress, requests.StatusRejected}, to: requests.StatusInProgress},
	EventSubmitReview:   {from: []requests.Status{requests.StatusInProgress, requests.StatusReview, requests.StatusRejected}, to: requests.StatusReview},
	EventApprove:        {from: []requests.Status{requests.StatusReview}, to: requests.StatusApproved},
	EventReject:         {from: []requests.Status{requests.StatusReview}, to: requests.StatusRejected},
	EventSchedule:       {from: []requests.Status{requests.StatusApproved}, to: requests.StatusScheduled},
	EventPublish:        {from: []requests.Status{requests.StatusScheduled}, to: requests.StatusPublished},
}

// manualEvents can be reached through the generic status command; the rest
// need their dedicated command because they carry a payload or are driven by
// content.
var manualEvents = []RequestEvent{EventValidate, EventSchedule, EventPublish}

// NextRequestStatus applies ev to current following the guarded table.
func NextRequestStatus(current requests.Status, ev RequestEvent) (requests.Status, error) {
	const op = "workflow.request.transition"
	edge, ok := requestEdges[ev]
	if !ok {
		return current, invalidTransition(op, current, ev)
	}
	for _, from := range edge.from {
		if from == current {
			return edge.to, nil
		}
	}
	return current, invalidTransition(op, current, ev)
}

// ManualEventReaching finds the generic-path event that moves current to target.
func ManualEventReaching(current, target requests.Status) (RequestEvent, bool) {
	for _, ev := range manualEvents {
		if next, err := NextRequestStatus(current, ev); err == nil && next == target {
			return ev, true
		}
	}
	return "", false
}
