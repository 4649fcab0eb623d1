package workflow

import (
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/contentflow-backend/internal/domain/contents"
)

func TestAppendRevisionRecordsOutgoingVersion(t *testing.T) {
	c := &contents.Content{ID: uuid.New(), Version: 1}
	actor := uuid.New()

	first := AppendRevision(c, "  ", actor, testNow)
	if first.Version != 1 || first.Changes != contents.DefaultRevisionChanges {
		t.Fatalf("unexpected first revision: %+v", first)
	}
	second := AppendRevision(c, "ganti caption", actor, testNow)
	if second.Version != 2 || second.Changes != "ganti caption" {
		t.Fatalf("unexpected second revision: %+v", second)
	}
	if c.Version != 3 || len(c.Revisions) != 2 {
		t.Fatalf("want version=3 revisions=2, got version=%d revisions=%d", c.Version, len(c.Revisions))
	}
	if !VersionConsistent(c) {
		t.Fatalf("version invariant broken")
	}
}

func TestVersionInvariantAcrossEditsAndSubmits(t *testing.T) {
	designer := staff("designer")
	req := requestIn("in-progress", uuid.New(), teamOf(designer.ID))
	c := contentIn(contents.StatusDraft, req)

	caption := "v2"
	title := "judul baru"
	steps := []func(*contents.Content) (ContentOutcome, error){
		func(c *contents.Content) (ContentOutcome, error) {
			return EditContent(designer, req, c, contents.Edits{Caption: &caption}, testNow)
		},
		func(c *contents.Content) (ContentOutcome, error) {
			return EditContent(designer, req, c, contents.Edits{Title: &title}, testNow)
		},
		func(c *contents.Content) (ContentOutcome, error) {
			return SubmitContent(designer, req, c, testNow)
		},
	}
	for i, step := range steps {
		out, err := step(c)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if !VersionConsistent(out.Content) {
			t.Fatalf("step %d: version=%d revisions=%d", i, out.Content.Version, len(out.Content.Revisions))
		}
		c = out.Content
		if out.Request != nil {
			req = out.Request
		}
	}
	if c.Version != 3 {
		t.Fatalf("caption edit and submit should each add a revision, got version %d", c.Version)
	}
}
