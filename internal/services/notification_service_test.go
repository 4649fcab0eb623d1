package services

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	domainagg "github.com/yungbote/contentflow-backend/internal/domain/aggregates"
	"github.com/yungbote/contentflow-backend/internal/domain/notifications"
	"github.com/yungbote/contentflow-backend/internal/realtime"
	"github.com/yungbote/contentflow-backend/internal/workflow"
)

func rejectEffect(ref uuid.UUID) workflow.NotifyEffect {
	return workflow.NotifyEffect{
		Type:     notifications.TypeRejected,
		Template: workflow.TemplateContentRejected,
		Audience: workflow.AudienceTeam,
		Ref:      notifications.ContentRef(ref),
		EventKey: "content.rejected:" + ref.String() + ":3",
		Data:     workflow.TemplateData{Title: "Poster Kegiatan", Notes: "Warna kurang kontras"},
	}
}

func TestNotify_DedupesRecipientsAndRendersCopy(t *testing.T) {
	h := newHarness(t)
	effect := rejectEffect(uuid.New())

	n, err := h.notif.Notify(h.ctx, effect, []uuid.UUID{h.designer.ID, h.writer.ID, h.designer.ID, uuid.Nil})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if n != 2 {
		t.Fatalf("want 2 rows, got %d", n)
	}
	list, err := h.notif.ListForUser(h.ctx, *h.designer, true, 0)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("want 1 notification, got %d", len(list))
	}
	got := list[0]
	if got.Title != "Konten Perlu Revisi" {
		t.Fatalf("title: %q", got.Title)
	}
	if got.Message != `Konten "Poster Kegiatan" memerlukan revisi: Warna kurang kontras` {
		t.Fatalf("message: %q", got.Message)
	}
	if got.Related() != effect.Ref {
		t.Fatalf("related: want %s, got %s", effect.Ref, got.Related())
	}
	if h.emitter.count(realtime.SSEEventNotificationCreated) != 2 {
		t.Fatalf("want one realtime push per new row")
	}
}

func TestNotify_RetryIsIdempotent(t *testing.T) {
	h := newHarness(t)
	effect := rejectEffect(uuid.New())
	ids := []uuid.UUID{h.designer.ID, h.writer.ID}
	if _, err := h.notif.Notify(h.ctx, effect, ids); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	n, err := h.notif.Notify(h.ctx, effect, ids)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if n != 0 {
		t.Fatalf("retry must insert nothing, got %d", n)
	}
	if got := h.unread(t, h.writer); got != 1 {
		t.Fatalf("writer unread: want 1, got %d", got)
	}
}

func TestNotify_EmptyAudienceIsNoop(t *testing.T) {
	h := newHarness(t)
	n, err := h.notif.Notify(h.ctx, rejectEffect(uuid.New()), nil)
	if err != nil || n != 0 {
		t.Fatalf("want 0/nil, got %d/%v", n, err)
	}
}

func TestNotify_RequiresRelatedItem(t *testing.T) {
	h := newHarness(t)
	effect := rejectEffect(uuid.New())
	effect.Ref = notifications.Ref{}
	if _, err := h.notif.Notify(h.ctx, effect, []uuid.UUID{h.writer.ID}); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("want validation, got %v", err)
	}
}

func TestMarkRead_OnlyOwnNotifications(t *testing.T) {
	h := newHarness(t)
	if _, err := h.notif.Notify(h.ctx, rejectEffect(uuid.New()), []uuid.UUID{h.designer.ID}); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	list, err := h.notif.ListForUser(h.ctx, *h.designer, false, 10)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListForUser: %d %v", len(list), err)
	}
	id := list[0].ID

	if err := h.notif.MarkRead(h.ctx, *h.writer, id); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("foreign mark read: want not_found, got %v", err)
	}
	if err := h.notif.MarkRead(h.ctx, *h.designer, id); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if got := h.unread(t, h.designer); got != 0 {
		t.Fatalf("unread after mark: %d", got)
	}
	if err := h.notif.MarkRead(h.ctx, *h.designer, uuid.New()); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("missing id: want not_found, got %v", err)
	}
}

func TestMarkAllRead(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 3; i++ {
		if _, err := h.notif.Notify(h.ctx, rejectEffect(uuid.New()), []uuid.UUID{h.writer.ID}); err != nil {
			t.Fatalf("Notify: %v", err)
		}
	}
	n, err := h.notif.MarkAllRead(h.ctx, *h.writer)
	if err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	if n != 3 || h.unread(t, h.writer) != 0 {
		t.Fatalf("want 3 marked and 0 unread, got %d/%d", n, h.unread(t, h.writer))
	}
}

func TestNotificationTemplates(t *testing.T) {
	tpl, err := LoadNotificationTemplates()
	if err != nil {
		t.Fatalf("LoadNotificationTemplates: %v", err)
	}
	title, msg, err := tpl.Render(workflow.TemplateRequestAssigned, workflow.TemplateData{Title: "Poster Kegiatan"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if title != "Tugas Baru" || msg != `Anda ditugaskan untuk request "Poster Kegiatan"` {
		t.Fatalf("assigned copy: %q / %q", title, msg)
	}
	if _, _, err := tpl.Render("nope", workflow.TemplateData{}); err == nil {
		t.Fatalf("unknown key should fail")
	}

	_, err = ParseNotificationTemplates([]byte("request_created:\n  title: A\n  message: b\n"))
	if err == nil || !strings.Contains(err.Error(), "missing") {
		t.Fatalf("partial catalogue should be rejected, got %v", err)
	}
	_, err = ParseNotificationTemplates([]byte("request_created:\n  title: A\n  message: '{{.Nope'\n"))
	if err == nil {
		t.Fatalf("broken template should be rejected")
	}
}
