package workflow

import "github.com/yungbote/contentflow-backend/internal/domain/contents"

type ContentEvent string

const (
	ContentSubmit          ContentEvent = "submit"
	ContentApprove         ContentEvent = "approve"
	ContentReject          ContentEvent = "reject"
	ContentRequestRevision ContentEvent = "request_revision"
)

var contentEdges = map[ContentEvent]struct {
	from []contents.Status
	to   contents.Status
}{
	ContentSubmit:          {from: []contents.Status{contents.StatusDraft, contents.StatusRevision, contents.StatusRejected}, to: contents.StatusReview},
	ContentApprove:         {from: []contents.Status{contents.StatusReview}, to: contents.StatusApproved},
	ContentReject:          {from: []contents.Status{contents.StatusReview}, to: contents.StatusRejected},
	ContentRequestRevision: {from: []contents.Status{contents.StatusReview}, to: contents.StatusRevision},
}

func NextContentStatus(current contents.Status, ev ContentEvent) (contents.Status, error) {
	const op = "workflow.content.transition"
	edge, ok := contentEdges[ev]
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

// Editable reports whether producers may change fields in status s.
func Editable(s contents.Status) bool {
	switch s {
	case contents.StatusDraft, contents.StatusRevision, contents.StatusRejected:
		return true
	default:
		return false
	}
}
