package workflow

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	domainagg "github.com/yungbote/contentflow-backend/internal/domain/aggregates"
	"github.com/yungbote/contentflow-backend/internal/domain/contents"
	"github.com/yungbote/contentflow-backend/internal/domain/notifications"
	"github.com/yungbote/contentflow-backend/internal/domain/requests"
	"github.com/yungbote/contentflow-backend/internal/domain/user"
)

func TestSubmitRequestStartsPendingAndAnnouncesToAdmins(t *testing.T) {
	requester := member()
	out, err := SubmitRequest(requester, posterBrief(), testNow)
	if err != nil {
		t.Fatalf("SubmitRequest: %v", err)
	}
	if out.Request.Status != requests.StatusPending || out.Request.RequestedBy != requester.ID {
		t.Fatalf("unexpected request: %+v", out.Request)
	}
	if out.Request.TicketCode != "" {
		t.Fatalf("ticket is allocated at persistence time, got %q", out.Request.TicketCode)
	}
	if len(out.Effects) != 1 || out.Effects[0].Audience != AudienceElevated || out.Effects[0].Type != notifications.TypeNewRequest {
		t.Fatalf("unexpected effects: %+v", out.Effects)
	}
}

func TestValidateThenAssign(t *testing.T) {
	a := admin()
	designer := staff(user.DivisionDesigner)
	req := requestIn(requests.StatusPending, uuid.New(), requests.Assignment{})

	validated, err := ValidateRequest(a, req, testNow)
	if err != nil {
		t.Fatalf("ValidateRequest: %v", err)
	}
	if validated.Request.Status != requests.StatusValidated || validated.Request.ValidatedBy == nil || *validated.Request.ValidatedBy != a.ID {
		t.Fatalf("unexpected validated request: %+v", validated.Request)
	}
	if validated.ExpectedLockVersion != req.LockVersion || validated.Request.LockVersion != req.LockVersion+1 {
		t.Fatalf("lock versions not threaded: %d -> %d", validated.ExpectedLockVersion, validated.Request.LockVersion)
	}
	if req.Status != requests.StatusPending {
		t.Fatalf("input snapshot must not be mutated")
	}

	if _, err := AssignRequest(a, validated.Request, requests.Assignment{}, testNow); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("empty assignment: expected validation error, got %v", err)
	}
	assigned, err := AssignRequest(a, validated.Request, teamOf(designer.ID), testNow)
	if err != nil {
		t.Fatalf("AssignRequest: %v", err)
	}
	recipients, _ := StaticRecipients(assigned.Effects[0].Audience, assigned.Request)
	if len(recipients) != 1 || recipients[0] != designer.ID {
		t.Fatalf("assign should notify the team, got %v", recipients)
	}
}

func TestChangeRequestStatusReviewToPublishedIsInvalid(t *testing.T) {
	req := requestIn(requests.StatusReview, uuid.New(), requests.Assignment{})
	_, err := ChangeRequestStatus(admin(), req, requests.StatusPublished, testNow)
	if !domainagg.IsCode(err, domainagg.CodeInvalidTransition) {
		t.Fatalf("expected invalid_transition, got %v", err)
	}
}

func TestForceRequestStatusIsPrivilegedAndSilent(t *testing.T) {
	req := requestIn(requests.StatusReview, uuid.New(), requests.Assignment{})
	if _, err := ForceRequestStatus(staff(user.DivisionPublisher), req, requests.StatusPublished, "hotfix", testNow); !domainagg.IsCode(err, domainagg.CodeUnauthorized) {
		t.Fatalf("non-admin force: expected unauthorized, got %v", err)
	}
	if _, err := ForceRequestStatus(admin(), req, requests.StatusPublished, " ", testNow); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("missing reason: expected validation, got %v", err)
	}
	out, err := ForceRequestStatus(admin(), req, requests.StatusPublished, "posted manually", testNow)
	if err != nil {
		t.Fatalf("ForceRequestStatus: %v", err)
	}
	if out.Request.Status != requests.StatusPublished || len(out.Effects) != 0 {
		t.Fatalf("unexpected force outcome: status=%s effects=%d", out.Request.Status, len(out.Effects))
	}
}

func TestApproveNotifiesRequesterOnlyEvenWhenApproverIsRequester(t *testing.T) {
	a := admin()
	var team requests.Assignment
	team.Set(requests.RoleCopywriter, uuid.New())
	team.Set(requests.RoleDesigner, uuid.New())
	req := requestIn(requests.StatusReview, a.ID, team)
	c := contentIn(contents.StatusReview, req)

	out, err := ApproveContent(a, req, c, []*contents.Content{c}, "", testNow)
	if err != nil {
		t.Fatalf("ApproveContent: %v", err)
	}
	if out.Content.Status != contents.StatusApproved || out.Request.Status != requests.StatusApproved {
		t.Fatalf("unexpected statuses: content=%s request=%s", out.Content.Status, out.Request.Status)
	}
	if out.Content.ApprovedBy == nil || *out.Content.ApprovedBy != a.ID || out.Content.ApprovedAt == nil {
		t.Fatalf("approval not recorded: %+v", out.Content)
	}
	if len(out.Effects) != 1 {
		t.Fatalf("want 1 effect, got %d", len(out.Effects))
	}
	recipients, static := StaticRecipients(out.Effects[0].Audience, out.Request)
	if !static || len(recipients) != 1 || recipients[0] != a.ID {
		t.Fatalf("approval should reach the requester only, got %v", recipients)
	}
}

func TestApproveHoldsRequestWhileSiblingsAreOutstanding(t *testing.T) {
	req := requestIn(requests.StatusReview, uuid.New(), teamOf(uuid.New()))
	first := contentIn(contents.StatusReview, req)
	second := contentIn(contents.StatusReview, req)

	out, err := ApproveContent(admin(), req, first, []*contents.Content{first, second}, "", testNow)
	if err != nil {
		t.Fatalf("ApproveContent (first): %v", err)
	}
	if out.Request.Status != requests.StatusReview {
		t.Fatalf("request should wait for the second item, got %s", out.Request.Status)
	}
	if out.ExpectedRequestLockVersion != req.LockVersion || out.Request.LockVersion != req.LockVersion+1 {
		t.Fatalf("held request must still move its lock version: %d -> %d", out.ExpectedRequestLockVersion, out.Request.LockVersion)
	}

	out, err = ApproveContent(admin(), out.Request, second, []*contents.Content{out.Content, second}, "", testNow)
	if err != nil {
		t.Fatalf("ApproveContent (second): %v", err)
	}
	if out.Request.Status != requests.StatusApproved || out.Content.Status != contents.StatusApproved {
		t.Fatalf("unexpected statuses: content=%s request=%s", out.Content.Status, out.Request.Status)
	}
}

func TestContentDecisionsOnRejectedRequest(t *testing.T) {
	req := requestIn(requests.StatusRejected, uuid.New(), teamOf(uuid.New()))
	rejected := contentIn(contents.StatusRejected, req)
	pending := contentIn(contents.StatusReview, req)

	out, err := ApproveContent(admin(), req, pending, []*contents.Content{rejected, pending}, "", testNow)
	if err != nil {
		t.Fatalf("ApproveContent: %v", err)
	}
	if out.Request.Status != requests.StatusRejected || out.Content.Status != contents.StatusApproved {
		t.Fatalf("unexpected statuses: content=%s request=%s", out.Content.Status, out.Request.Status)
	}

	other := contentIn(contents.StatusReview, req)
	out, err = RejectContent(admin(), req, other, "ganti font", testNow)
	if err != nil {
		t.Fatalf("RejectContent: %v", err)
	}
	if out.Request.Status != requests.StatusRejected || out.Request.RejectionReason != "ganti font" {
		t.Fatalf("request should stay rejected with the latest reason: %+v", out.Request)
	}

	done := requestIn(requests.StatusScheduled, uuid.New(), requests.Assignment{})
	if _, err := RejectContent(admin(), done, contentIn(contents.StatusReview, done), "x", testNow); !domainagg.IsCode(err, domainagg.CodeInvalidTransition) {
		t.Fatalf("scheduled request: expected invalid_transition, got %v", err)
	}
}

func TestRejectNotifiesDistinctAssignees(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	var team requests.Assignment
	team.Set(requests.RoleCopywriter, a)
	team.Set(requests.RoleDesigner, b)
	req := requestIn(requests.StatusReview, uuid.New(), team)
	c := contentIn(contents.StatusReview, req)

	if _, err := RejectContent(admin(), req, c, "  ", testNow); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("missing notes: expected validation, got %v", err)
	}

	out, err := RejectContent(admin(), req, c, "perbaiki warna", testNow)
	if err != nil {
		t.Fatalf("RejectContent: %v", err)
	}
	if out.Request.Status != requests.StatusRejected || out.Request.RejectionReason != "perbaiki warna" {
		t.Fatalf("request not rejected: %+v", out.Request)
	}
	recipients, _ := StaticRecipients(out.Effects[0].Audience, out.Request)
	if len(recipients) != 2 || recipients[0] != a || recipients[1] != b {
		t.Fatalf("want [A B], got %v", recipients)
	}
	if out.Effects[0].Data.Notes != "perbaiki warna" {
		t.Fatalf("notes missing from effect data")
	}

	empty := requestIn(requests.StatusReview, uuid.New(), requests.Assignment{})
	out, err = RejectContent(admin(), empty, contentIn(contents.StatusReview, empty), "x", testNow)
	if err != nil {
		t.Fatalf("RejectContent (no team): %v", err)
	}
	if recipients, _ := StaticRecipients(out.Effects[0].Audience, out.Request); len(recipients) != 0 {
		t.Fatalf("empty team should yield no recipients, got %v", recipients)
	}
}

func TestRequestRevisionLeavesRequestAlone(t *testing.T) {
	designer := staff(user.DivisionDesigner)
	req := requestIn(requests.StatusReview, uuid.New(), teamOf(designer.ID))
	out, err := RequestRevision(admin(), req, contentIn(contents.StatusReview, req), "tambah logo", testNow)
	if err != nil {
		t.Fatalf("RequestRevision: %v", err)
	}
	if out.Request != nil || out.Content.Status != contents.StatusRevision {
		t.Fatalf("unexpected outcome: request=%v status=%s", out.Request, out.Content.Status)
	}
	if out.Effects[0].Template != TemplateContentRevision {
		t.Fatalf("unexpected template %s", out.Effects[0].Template)
	}
}

func TestCreateContentRequiresProductionStatus(t *testing.T) {
	designer := staff(user.DivisionDesigner)
	pending := requestIn(requests.StatusPending, uuid.New(), teamOf(designer.ID))
	if _, err := CreateContent(designer, pending, contents.Draft{}, testNow); !domainagg.IsCode(err, domainagg.CodeInvalidTransition) {
		t.Fatalf("expected invalid_transition, got %v", err)
	}

	assigned := requestIn(requests.StatusAssigned, uuid.New(), teamOf(designer.ID))
	out, err := CreateContent(designer, assigned, contents.Draft{Caption: " caption awal "}, testNow)
	if err != nil {
		t.Fatalf("CreateContent: %v", err)
	}
	if !out.Created || out.Content.Version != 1 || out.Content.Status != contents.StatusDraft {
		t.Fatalf("unexpected content: %+v", out.Content)
	}
	if out.Content.Title != assigned.Title || out.Content.ContentType != assigned.ContentType || out.Content.Caption != "caption awal" {
		t.Fatalf("defaults not applied: %+v", out.Content)
	}
	if out.Request.Status != requests.StatusInProgress {
		t.Fatalf("request should be in-progress, got %s", out.Request.Status)
	}

	if _, err := CreateContent(staff(user.DivisionCopywriter), assigned, contents.Draft{}, testNow); !domainagg.IsCode(err, domainagg.CodeUnauthorized) {
		t.Fatalf("outsider: expected unauthorized, got %v", err)
	}
}

func TestEditContentGuardsAndReleasesRemovedFiles(t *testing.T) {
	designer := staff(user.DivisionDesigner)
	req := requestIn(requests.StatusInProgress, uuid.New(), teamOf(designer.ID))
	c := contentIn(contents.StatusDraft, req)
	c.Files = []contents.FileAttachment{{Path: "uploads/a.png", Kind: contents.MediaImage}}

	out, err := AttachFiles(designer, req, c, []contents.FileAttachment{{Path: "uploads/b.mp4", MimeType: "video/mp4"}}, testNow)
	if err != nil {
		t.Fatalf("AttachFiles: %v", err)
	}
	if len(out.Content.Files) != 2 || out.Content.Files[1].Kind != contents.MediaVideo || out.Content.Files[1].Filename != "b.mp4" {
		t.Fatalf("unexpected files: %+v", out.Content.Files)
	}
	if out.Revision == nil || out.Revision.Changes != "Files attached" || out.Content.Version != 2 {
		t.Fatalf("attach should be a revision: %+v", out.Revision)
	}

	keep := []contents.FileAttachment{out.Content.Files[1]}
	out, err = EditContent(designer, req, out.Content, contents.Edits{Files: &keep}, testNow)
	if err != nil {
		t.Fatalf("EditContent: %v", err)
	}
	if len(out.ReleasedFiles) != 1 || out.ReleasedFiles[0].Path != "uploads/a.png" {
		t.Fatalf("removed file should be released, got %+v", out.ReleasedFiles)
	}

	review := contentIn(contents.StatusReview, req)
	caption := "x"
	if _, err := EditContent(designer, req, review, contents.Edits{Caption: &caption}, testNow); !domainagg.IsCode(err, domainagg.CodeInvalidTransition) {
		t.Fatalf("edit under review: expected invalid_transition, got %v", err)
	}
	if _, err := EditContent(designer, req, c, contents.Edits{}, testNow); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("empty edit: expected validation, got %v", err)
	}
}

func TestSubmitContentAppendsRevisionAndAnnouncesReview(t *testing.T) {
	designer := staff(user.DivisionDesigner)
	req := requestIn(requests.StatusInProgress, uuid.New(), teamOf(designer.ID))
	c := contentIn(contents.StatusDraft, req)

	out, err := SubmitContent(designer, req, c, testNow)
	if err != nil {
		t.Fatalf("SubmitContent: %v", err)
	}
	if out.Content.Status != contents.StatusReview || out.Request.Status != requests.StatusReview {
		t.Fatalf("unexpected statuses: %s / %s", out.Content.Status, out.Request.Status)
	}
	if out.Revision == nil || out.Content.Version != 2 {
		t.Fatalf("submit should append a revision")
	}
	eff := out.Effects[0]
	if eff.Audience != AudienceElevated || eff.Ref.Kind() != notifications.RefContent || !strings.HasPrefix(eff.EventKey, "content.review:") {
		t.Fatalf("unexpected effect: %+v", eff)
	}
}

func TestDedupe(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	got := Dedupe([]uuid.UUID{a, uuid.Nil, b}, []uuid.UUID{b, a})
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Fatalf("unexpected dedupe: %v", got)
	}
}
