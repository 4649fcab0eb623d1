package aggregates

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/contentflow-backend/internal/domain/contents"
	"github.com/yungbote/contentflow-backend/internal/domain/requests"
)

var WorkflowAggregateContract = Contract{
	Name:             "Content.WorkflowAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Owns ticket allocation, request/content state and the revision log as one atomic write.",
}

// WorkflowAggregate persists decisions already taken by the pure workflow
// functions. It never decides transitions itself; it only enforces that the
// rows it overwrites are the rows the decision was based on.
//
// Write method failures return *Error with codes:
// CodeValidation, CodeNotFound, CodeConflict, CodeDependencyUnavailable, CodeInternal.
type WorkflowAggregate interface {
	Aggregate

	// CreateRequest allocates the ticket code and inserts the request in one transaction.
	CreateRequest(ctx context.Context, in CreateRequestInput) (CreateRequestResult, error)

	// CommitRequest overwrites the mutable request columns guarded by lock version.
	CommitRequest(ctx context.Context, in CommitRequestInput) error

	// CommitContent inserts or updates a content row, appends its revision and
	// updates the correlated request, all or nothing.
	CommitContent(ctx context.Context, in CommitContentInput) error

	// DeleteContent removes a content row with its revisions and returns the files it referenced.
	DeleteContent(ctx context.Context, in DeleteContentInput) (DeleteResult, error)

	// DeleteRequest removes a request with all of its contents.
	DeleteRequest(ctx context.Context, in DeleteRequestInput) (DeleteResult, error)
}

type CreateRequestInput struct {
	Request *requests.ContentRequest
}

type CreateRequestResult struct {
	RequestID  uuid.UUID
	TicketCode string
}

type CommitRequestInput struct {
	Request             *requests.ContentRequest
	ExpectedLockVersion int
}

type CommitContentInput struct {
	Content             *contents.Content
	Create              bool
	ExpectedLockVersion int
	// NewRevision is appended when the edit was revision-worthy.
	NewRevision *contents.Revision

	// Request is nil when the content change does not move the request.
	Request                    *requests.ContentRequest
	ExpectedRequestLockVersion int
}

type DeleteContentInput struct {
	ContentID uuid.UUID
}

type DeleteRequestInput struct {
	RequestID uuid.UUID
}

type DeleteResult struct {
	ContentIDs []uuid.UUID
	Files      []contents.FileAttachment
}
