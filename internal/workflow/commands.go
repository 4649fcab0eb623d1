package workflow

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/contentflow-backend/internal/domain/contents"
	"github.com/yungbote/contentflow-backend/internal/domain/notifications"
	"github.com/yungbote/contentflow-backend/internal/domain/requests"
	"github.com/yungbote/contentflow-backend/internal/domain/user"
)

// RequestOutcome is the next request snapshot plus what to announce.
type RequestOutcome struct {
	Request             *requests.ContentRequest
	ExpectedLockVersion int
	Effects             []NotifyEffect
}

// ContentOutcome is the next content snapshot, the revision it appended (if
// any), the request it moved (if any) and what to announce.
type ContentOutcome struct {
	Content             *contents.Content
	Created             bool
	ExpectedLockVersion int
	Revision            *contents.Revision

	Request                    *requests.ContentRequest
	ExpectedRequestLockVersion int

	Effects       []NotifyEffect
	ReleasedFiles []contents.FileAttachment
}

const submittedForReview = "Submitted for review"

func SubmitRequest(actor user.User, brief requests.Brief, now time.Time) (RequestOutcome, error) {
	const op = "workflow.SubmitRequest"
	if err := Authorize(op, actor, ActionSubmitRequest, OwnedBy(actor.ID)); err != nil {
		return RequestOutcome{}, err
	}
	b, err := NormalizeBrief(brief)
	if err != nil {
		return RequestOutcome{}, err
	}
	req := &requests.ContentRequest{
		ID:          uuid.New(),
		Status:      requests.StatusPending,
		RequestedBy: actor.ID,
		RequestedAt: now.UTC(),
		LockVersion: 1,
	}
	req.ApplyBrief(b)
	return RequestOutcome{
		Request: req,
		Effects: []NotifyEffect{{
			Type:     notifications.TypeNewRequest,
			Template: TemplateRequestCreated,
			Audience: AudienceElevated,
			Ref:      notifications.RequestRef(req.ID),
			EventKey: eventKey("request.created", req.ID, req.LockVersion),
			Data:     TemplateData{Title: req.Title},
		}},
	}, nil
}

func ValidateRequest(actor user.User, req *requests.ContentRequest, now time.Time) (RequestOutcome, error) {
	const op = "workflow.ValidateRequest"
	if err := Authorize(op, actor, ActionValidateRequest, SubjectOf(req)); err != nil {
		return RequestOutcome{}, err
	}
	next, err := advanceRequest(req, EventValidate)
	if err != nil {
		return RequestOutcome{}, err
	}
	at := now.UTC()
	by := actor.ID
	next.ValidatedAt = &at
	next.ValidatedBy = &by
	return RequestOutcome{
		Request:             next,
		ExpectedLockVersion: req.LockVersion,
		Effects: []NotifyEffect{{
			Type:     notifications.TypeApproved,
			Template: TemplateRequestValidated,
			Audience: AudienceRequester,
			Ref:      notifications.RequestRef(req.ID),
			EventKey: eventKey("request.validated", req.ID, next.LockVersion),
			Data:     TemplateData{Title: req.Title, Ticket: req.TicketCode},
		}},
	}, nil
}

func AssignRequest(actor user.User, req *requests.ContentRequest, team requests.Assignment, now time.Time) (RequestOutcome, error) {
	const op = "workflow.AssignRequest"
	if err := Authorize(op, actor, ActionAssignRequest, SubjectOf(req)); err != nil {
		return RequestOutcome{}, err
	}
	if team.IsEmpty() {
		return RequestOutcome{}, validationFailed(op, "assignment must name at least one team member")
	}
	next, err := advanceRequest(req, EventAssign)
	if err != nil {
		return RequestOutcome{}, err
	}
	next.Assignment = team.Clone()
	return RequestOutcome{
		Request:             next,
		ExpectedLockVersion: req.LockVersion,
		Effects: []NotifyEffect{{
			Type:     notifications.TypeAssigned,
			Template: TemplateRequestAssigned,
			Audience: AudienceTeam,
			Ref:      notifications.RequestRef(req.ID),
			EventKey: eventKey("request.assigned", req.ID, next.LockVersion),
			Data:     TemplateData{Title: req.Title, Ticket: req.TicketCode},
		}},
	}, nil
}

func ScheduleRequest(actor user.User, req *requests.ContentRequest, now time.Time) (RequestOutcome, error) {
	const op = "workflow.ScheduleRequest"
	if err := Authorize(op, actor, ActionScheduleRequest, SubjectOf(req)); err != nil {
		return RequestOutcome{}, err
	}
	next, err := advanceRequest(req, EventSchedule)
	if err != nil {
		return RequestOutcome{}, err
	}
	return RequestOutcome{Request: next, ExpectedLockVersion: req.LockVersion}, nil
}

func PublishRequest(actor user.User, req *requests.ContentRequest, now time.Time) (RequestOutcome, error) {
	const op = "workflow.PublishRequest"
	if err := Authorize(op, actor, ActionPublishRequest, SubjectOf(req)); err != nil {
		return RequestOutcome{}, err
	}
	next, err := advanceRequest(req, EventPublish)
	if err != nil {
		return RequestOutcome{}, err
	}
	return RequestOutcome{
		Request:             next,
		ExpectedLockVersion: req.LockVersion,
		Effects: []NotifyEffect{{
			Type:     notifications.TypePublished,
			Template: TemplateRequestPublished,
			Audience: AudienceRequesterAndTeam,
			Ref:      notifications.RequestRef(req.ID),
			EventKey: eventKey("request.published", req.ID, next.LockVersion),
			Data:     TemplateData{Title: req.Title, Ticket: req.TicketCode},
		}},
	}, nil
}

// ChangeRequestStatus is the guarded generic path: it only reaches target
// through an event the table allows from the current status.
func ChangeRequestStatus(actor user.User, req *requests.ContentRequest, target requests.Status, now time.Time) (RequestOutcome, error) {
	const op = "workflow.ChangeRequestStatus"
	if !target.Valid() {
		return RequestOutcome{}, validationFailed(op, "unknown status "+string(target))
	}
	ev, ok := ManualEventReaching(req.Status, target)
	if !ok {
		return RequestOutcome{}, invalidTransition(op, req.Status, "move to "+string(target))
	}
	switch ev {
	case EventValidate:
		return ValidateRequest(actor, req, now)
	case EventSchedule:
		return ScheduleRequest(actor, req, now)
	default:
		return PublishRequest(actor, req, now)
	}
}

// ForceRequestStatus is the privileged override. It bypasses the table and
// announces nothing.
func ForceRequestStatus(actor user.User, req *requests.ContentRequest, target requests.Status, reason string, now time.Time) (RequestOutcome, error) {
	const op = "workflow.ForceRequestStatus"
	if err := Authorize(op, actor, ActionForceStatus, SubjectOf(req)); err != nil {
		return RequestOutcome{}, err
	}
	if !target.Valid() {
		return RequestOutcome{}, validationFailed(op, "unknown status "+string(target))
	}
	if strings.TrimSpace(reason) == "" {
		return RequestOutcome{}, validationFailed(op, "reason is required")
	}
	if target == req.Status {
		return RequestOutcome{}, validationFailed(op, "request is already "+string(target))
	}
	next := req.Clone()
	next.Status = target
	next.LockVersion = req.LockVersion + 1
	return RequestOutcome{Request: next, ExpectedLockVersion: req.LockVersion}, nil
}

// UpdateRequest edits brief fields only.
func UpdateRequest(actor user.User, req *requests.ContentRequest, patch requests.BriefPatch, now time.Time) (RequestOutcome, error) {
	const op = "workflow.UpdateRequest"
	if err := Authorize(op, actor, ActionUpdateRequest, SubjectOf(req)); err != nil {
		return RequestOutcome{}, err
	}
	if req.Status == requests.StatusPublished {
		return RequestOutcome{}, invalidTransition(op, req.Status, "update")
	}
	b, err := NormalizeBrief(PatchBrief(requests.BriefOf(req), patch))
	if err != nil {
		return RequestOutcome{}, err
	}
	next := req.Clone()
	next.ApplyBrief(b)
	next.LockVersion = req.LockVersion + 1
	return RequestOutcome{Request: next, ExpectedLockVersion: req.LockVersion}, nil
}

func DeleteRequest(actor user.User, req *requests.ContentRequest) error {
	return Authorize("workflow.DeleteRequest", actor, ActionDeleteRequest, SubjectOf(req))
}

func CreateContent(actor user.User, req *requests.ContentRequest, draft contents.Draft, now time.Time) (ContentOutcome, error) {
	const op = "workflow.CreateContent"
	if err := Authorize(op, actor, ActionCreateContent, SubjectOf(req)); err != nil {
		return ContentOutcome{}, err
	}
	nextReq, err := advanceRequest(req, EventContentCreated)
	if err != nil {
		return ContentOutcome{}, err
	}
	title := strings.TrimSpace(draft.Title)
	if title == "" {
		title = req.Title
	}
	ctype := requests.ContentType(strings.TrimSpace(string(draft.ContentType)))
	if ctype == "" {
		ctype = req.ContentType
	}
	if !knownContentType(ctype) {
		return ContentOutcome{}, validationFailed(op, "unknown content type "+string(ctype))
	}
	files, err := normalizeFiles(op, draft.Files, now)
	if err != nil {
		return ContentOutcome{}, err
	}
	c := &contents.Content{
		ID:          uuid.New(),
		RequestID:   req.ID,
		Title:       title,
		ContentType: ctype,
		Caption:     strings.TrimSpace(draft.Caption),
		Hashtags:    datatypes.JSONSlice[string](cleanList(draft.Hashtags)),
		Files:       datatypes.JSONSlice[contents.FileAttachment](files),
		Version:     1,
		Status:      contents.StatusDraft,
		CreatedBy:   actor.ID,
		LockVersion: 1,
	}
	return ContentOutcome{
		Content:                    c,
		Created:                    true,
		Request:                    nextReq,
		ExpectedRequestLockVersion: req.LockVersion,
	}, nil
}

// EditContent applies a partial update. Caption or file edits first record
// the outgoing version.
func EditContent(actor user.User, req *requests.ContentRequest, c *contents.Content, edits contents.Edits, now time.Time) (ContentOutcome, error) {
	const op = "workflow.EditContent"
	if err := Authorize(op, actor, ActionEditContent, SubjectOf(req)); err != nil {
		return ContentOutcome{}, err
	}
	if edits.Empty() {
		return ContentOutcome{}, validationFailed(op, "nothing to change")
	}
	if !Editable(c.Status) {
		return ContentOutcome{}, invalidTransition(op, c.Status, "edit")
	}
	var files []contents.FileAttachment
	if edits.Files != nil {
		var err error
		if files, err = normalizeFiles(op, *edits.Files, now); err != nil {
			return ContentOutcome{}, err
		}
	}
	if edits.Title != nil && strings.TrimSpace(*edits.Title) == "" {
		return ContentOutcome{}, validationFailed(op, "title must not be empty")
	}

	next := c.Clone()
	out := ContentOutcome{ExpectedLockVersion: c.LockVersion}
	if edits.RevisionWorthy() {
		rev := AppendRevision(next, edits.Changes, actor.ID, now)
		out.Revision = &rev
	}
	if edits.Title != nil {
		next.Title = strings.TrimSpace(*edits.Title)
	}
	if edits.Caption != nil {
		next.Caption = strings.TrimSpace(*edits.Caption)
	}
	if edits.Hashtags != nil {
		next.Hashtags = datatypes.JSONSlice[string](cleanList(*edits.Hashtags))
	}
	if edits.Files != nil {
		out.ReleasedFiles = removedFiles(c.Files, files)
		next.Files = datatypes.JSONSlice[contents.FileAttachment](files)
	}
	next.LockVersion = c.LockVersion + 1
	out.Content = next
	return out, nil
}

// AttachFiles appends uploads to the existing attachments as one revision.
func AttachFiles(actor user.User, req *requests.ContentRequest, c *contents.Content, files []contents.FileAttachment, now time.Time) (ContentOutcome, error) {
	if len(files) == 0 {
		return ContentOutcome{}, validationFailed("workflow.AttachFiles", "no files given")
	}
	combined := append(append([]contents.FileAttachment(nil), c.Files...), files...)
	return EditContent(actor, req, c, contents.Edits{Files: &combined, Changes: "Files attached"}, now)
}

func SubmitContent(actor user.User, req *requests.ContentRequest, c *contents.Content, now time.Time) (ContentOutcome, error) {
	const op = "workflow.SubmitContent"
	if err := Authorize(op, actor, ActionSubmitContent, SubjectOf(req)); err != nil {
		return ContentOutcome{}, err
	}
	to, err := NextContentStatus(c.Status, ContentSubmit)
	if err != nil {
		return ContentOutcome{}, err
	}
	nextReq, err := advanceRequest(req, EventSubmitReview)
	if err != nil {
		return ContentOutcome{}, err
	}
	next := c.Clone()
	rev := AppendRevision(next, submittedForReview, actor.ID, now)
	next.Status = to
	next.LockVersion = c.LockVersion + 1
	return ContentOutcome{
		Content:                    next,
		ExpectedLockVersion:        c.LockVersion,
		Revision:                   &rev,
		Request:                    nextReq,
		ExpectedRequestLockVersion: req.LockVersion,
		Effects: []NotifyEffect{{
			Type:     notifications.TypeReviewNeeded,
			Template: TemplateContentReview,
			Audience: AudienceElevated,
			Ref:      notifications.ContentRef(c.ID),
			EventKey: eventKey("content.review", c.ID, next.LockVersion),
			Data:     TemplateData{Title: c.Title, Ticket: req.TicketCode},
		}},
	}, nil
}

// ApproveContent approves c. The request moves to approved once no sibling
// item is still outstanding; until then it keeps its status and only its lock
// version moves, so decisions on sibling items serialize on the request.
func ApproveContent(actor user.User, req *requests.ContentRequest, c *contents.Content, siblings []*contents.Content, notes string, now time.Time) (ContentOutcome, error) {
	const op = "workflow.ApproveContent"
	if err := Authorize(op, actor, ActionApproveContent, SubjectOf(req)); err != nil {
		return ContentOutcome{}, err
	}
	to, err := NextContentStatus(c.Status, ContentApprove)
	if err != nil {
		return ContentOutcome{}, err
	}
	var nextReq *requests.ContentRequest
	if req.Status == requests.StatusReview && !outstanding(c.ID, siblings) {
		nextReq, err = advanceRequest(req, EventApprove)
	} else {
		nextReq, err = holdRequest(req, EventApprove)
	}
	if err != nil {
		return ContentOutcome{}, err
	}
	next := c.Clone()
	at := now.UTC()
	by := actor.ID
	next.Status = to
	next.ReviewedBy = &by
	next.ApprovedBy = &by
	next.ApprovedAt = &at
	if n := strings.TrimSpace(notes); n != "" {
		next.ReviewNotes = n
	}
	next.LockVersion = c.LockVersion + 1
	return ContentOutcome{
		Content:                    next,
		ExpectedLockVersion:        c.LockVersion,
		Request:                    nextReq,
		ExpectedRequestLockVersion: req.LockVersion,
		Effects: []NotifyEffect{{
			Type:     notifications.TypeApproved,
			Template: TemplateContentApproved,
			Audience: AudienceRequester,
			Ref:      notifications.ContentRef(c.ID),
			EventKey: eventKey("content.approved", c.ID, next.LockVersion),
			Data:     TemplateData{Title: c.Title, Ticket: req.TicketCode, Notes: next.ReviewNotes},
		}},
	}, nil
}

func RejectContent(actor user.User, req *requests.ContentRequest, c *contents.Content, notes string, now time.Time) (ContentOutcome, error) {
	const op = "workflow.RejectContent"
	if err := Authorize(op, actor, ActionRejectContent, SubjectOf(req)); err != nil {
		return ContentOutcome{}, err
	}
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return ContentOutcome{}, validationFailed(op, "rejection notes are required")
	}
	to, err := NextContentStatus(c.Status, ContentReject)
	if err != nil {
		return ContentOutcome{}, err
	}
	var nextReq *requests.ContentRequest
	if req.Status == requests.StatusRejected {
		nextReq, err = holdRequest(req, EventReject)
	} else {
		nextReq, err = advanceRequest(req, EventReject)
	}
	if err != nil {
		return ContentOutcome{}, err
	}
	nextReq.RejectionReason = notes
	next := c.Clone()
	by := actor.ID
	next.Status = to
	next.ReviewedBy = &by
	next.ReviewNotes = notes
	next.LockVersion = c.LockVersion + 1
	return ContentOutcome{
		Content:                    next,
		ExpectedLockVersion:        c.LockVersion,
		Request:                    nextReq,
		ExpectedRequestLockVersion: req.LockVersion,
		Effects: []NotifyEffect{{
			Type:     notifications.TypeRejected,
			Template: TemplateContentRejected,
			Audience: AudienceTeam,
			Ref:      notifications.ContentRef(c.ID),
			EventKey: eventKey("content.rejected", c.ID, next.LockVersion),
			Data:     TemplateData{Title: c.Title, Ticket: req.TicketCode, Notes: notes},
		}},
	}, nil
}

// RequestRevision sends content back to the team without rejecting the request.
func RequestRevision(actor user.User, req *requests.ContentRequest, c *contents.Content, notes string, now time.Time) (ContentOutcome, error) {
	const op = "workflow.RequestRevision"
	if err := Authorize(op, actor, ActionRequestRevision, SubjectOf(req)); err != nil {
		return ContentOutcome{}, err
	}
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return ContentOutcome{}, validationFailed(op, "revision notes are required")
	}
	to, err := NextContentStatus(c.Status, ContentRequestRevision)
	if err != nil {
		return ContentOutcome{}, err
	}
	next := c.Clone()
	by := actor.ID
	next.Status = to
	next.ReviewedBy = &by
	next.ReviewNotes = notes
	next.LockVersion = c.LockVersion + 1
	return ContentOutcome{
		Content:             next,
		ExpectedLockVersion: c.LockVersion,
		Effects: []NotifyEffect{{
			Type:     notifications.TypeRejected,
			Template: TemplateContentRevision,
			Audience: AudienceTeam,
			Ref:      notifications.ContentRef(c.ID),
			EventKey: eventKey("content.revision", c.ID, next.LockVersion),
			Data:     TemplateData{Title: c.Title, Ticket: req.TicketCode, Notes: notes},
		}},
	}, nil
}

func DeleteContent(actor user.User, req *requests.ContentRequest) error {
	return Authorize("workflow.DeleteContent", actor, ActionDeleteContent, SubjectOf(req))
}

func advanceRequest(req *requests.ContentRequest, ev RequestEvent) (*requests.ContentRequest, error) {
	to, err := NextRequestStatus(req.Status, ev)
	if err != nil {
		return nil, err
	}
	next := req.Clone()
	next.Status = to
	next.LockVersion = req.LockVersion + 1
	return next, nil
}

// holdRequest keeps a request in its review-phase status while a content
// decision commits against it.
func holdRequest(req *requests.ContentRequest, ev RequestEvent) (*requests.ContentRequest, error) {
	switch req.Status {
	case requests.StatusReview, requests.StatusApproved, requests.StatusRejected:
	default:
		return nil, invalidTransition("workflow.request.transition", req.Status, ev)
	}
	next := req.Clone()
	next.LockVersion = req.LockVersion + 1
	return next, nil
}

// outstanding reports whether any item other than id still awaits approval.
func outstanding(id uuid.UUID, siblings []*contents.Content) bool {
	for _, s := range siblings {
		if s == nil || s.ID == id {
			continue
		}
		if s.Status != contents.StatusApproved {
			return true
		}
	}
	return false
}

func knownContentType(t requests.ContentType) bool {
	for _, known := range requests.AllContentTypes {
		if t == known {
			return true
		}
	}
	return false
}

func normalizeFiles(op string, in []contents.FileAttachment, now time.Time) ([]contents.FileAttachment, error) {
	out := make([]contents.FileAttachment, 0, len(in))
	for _, f := range in {
		f.Path = strings.TrimSpace(f.Path)
		if f.Path == "" {
			return nil, validationFailed(op, "file path is required")
		}
		f.Filename = strings.TrimSpace(f.Filename)
		if f.Filename == "" {
			f.Filename = f.Path[strings.LastIndex(f.Path, "/")+1:]
		}
		if f.Kind == "" {
			f.Kind = contents.KindForMIME(f.MimeType)
		}
		if f.UploadedAt.IsZero() {
			f.UploadedAt = now.UTC()
		}
		out = append(out, f)
	}
	return out, nil
}

func removedFiles(before, after []contents.FileAttachment) []contents.FileAttachment {
	kept := make(map[string]struct{}, len(after))
	for _, f := range after {
		kept[f.Path] = struct{}{}
	}
	var out []contents.FileAttachment
	for _, f := range before {
		if _, ok := kept[f.Path]; !ok {
			out = append(out, f)
		}
	}
	return out
}
