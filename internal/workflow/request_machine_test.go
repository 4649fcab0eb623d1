package workflow

import (
	"testing"

	domainagg "github.com/yungbote/contentflow-backend/internal/domain/aggregates"
	"github.com/yungbote/contentflow-backend/internal/domain/requests"
)

func TestNextRequestStatusFollowsTable(t *testing.T) {
	cases := []struct {
		from requests.Status
		ev   RequestEvent
		want requests.Status
	}{
		{requests.StatusPending, EventValidate, requests.StatusValidated},
		{requests.StatusValidated, EventAssign, requests.StatusAssigned},
		{requests.StatusAssigned, EventContentCreated, requests.StatusInProgress},
		{requests.StatusInProgress, EventContentCreated, requests.StatusInProgress},
		{requests.StatusInProgress, EventSubmitReview, requests.StatusReview},
		{requests.StatusReview, EventSubmitReview, requests.StatusReview},
		{requests.StatusReview, EventApprove, requests.StatusApproved},
		{requests.StatusReview, EventReject, requests.StatusRejected},
		{requests.StatusApproved, EventSchedule, requests.StatusScheduled},
		{requests.StatusScheduled, EventPublish, requests.StatusPublished},
		{requests.StatusRejected, EventSubmitReview, requests.StatusReview},
	}
	for _, tc := range cases {
		got, err := NextRequestStatus(tc.from, tc.ev)
		if err != nil {
			t.Fatalf("%s --%s-->: unexpected err: %v", tc.from, tc.ev, err)
		}
		if got != tc.want {
			t.Fatalf("%s --%s-->: want=%s got=%s", tc.from, tc.ev, tc.want, got)
		}
	}
}

func TestNextRequestStatusRejectsUnlistedPairs(t *testing.T) {
	cases := []struct {
		from requests.Status
		ev   RequestEvent
	}{
		{requests.StatusReview, EventPublish},
		{requests.StatusPending, EventAssign},
		{requests.StatusValidated, EventValidate},
		{requests.StatusPublished, EventSchedule},
		{requests.StatusPending, EventContentCreated},
		{requests.StatusApproved, EventApprove},
		{requests.StatusRejected, EventApprove},
		{requests.StatusInProgress, RequestEvent("teleport")},
	}
	for _, tc := range cases {
		got, err := NextRequestStatus(tc.from, tc.ev)
		if !domainagg.IsCode(err, domainagg.CodeInvalidTransition) {
			t.Fatalf("%s --%s-->: expected invalid_transition, got %v", tc.from, tc.ev, err)
		}
		if got != tc.from {
			t.Fatalf("%s --%s-->: status should be unchanged, got %s", tc.from, tc.ev, got)
		}
	}
}

func TestManualEventReaching(t *testing.T) {
	if _, ok := ManualEventReaching(requests.StatusReview, requests.StatusPublished); ok {
		t.Fatalf("review -> published must not be reachable")
	}
	ev, ok := ManualEventReaching(requests.StatusScheduled, requests.StatusPublished)
	if !ok || ev != EventPublish {
		t.Fatalf("scheduled -> published: got %s %v", ev, ok)
	}
	if _, ok := ManualEventReaching(requests.StatusValidated, requests.StatusAssigned); ok {
		t.Fatalf("assign needs its own command")
	}
}
