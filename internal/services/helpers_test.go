package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/contentflow-backend/internal/data/aggregates"
	"github.com/yungbote/contentflow-backend/internal/data/repos"
	repotest "github.com/yungbote/contentflow-backend/internal/data/repos/testutil"
	types "github.com/yungbote/contentflow-backend/internal/domain"
	"github.com/yungbote/contentflow-backend/internal/domain/requests"
	"github.com/yungbote/contentflow-backend/internal/domain/user"
	"github.com/yungbote/contentflow-backend/internal/observability"
	"github.com/yungbote/contentflow-backend/internal/realtime"
)

type recordingEmitter struct {
	mu   sync.Mutex
	msgs []realtime.SSEMessage
	err  error
}

func (e *recordingEmitter) Emit(_ context.Context, msg realtime.SSEMessage) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.msgs = append(e.msgs, msg)
	return e.err
}

func (e *recordingEmitter) count(event realtime.SSEEvent) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, m := range e.msgs {
		if m.Event == event {
			n++
		}
	}
	return n
}

type recordingReleaser struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (r *recordingReleaser) Release(_ context.Context, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
	return r.err
}

type failingDirectory struct {
	UserDirectory
}

func (failingDirectory) ElevatedUserIDs(context.Context) ([]uuid.UUID, error) {
	return nil, errors.New("directory offline")
}

type harness struct {
	ctx      context.Context
	db       *gorm.DB
	repos    repos.Set
	metrics  *observability.Metrics
	emitter  *recordingEmitter
	files    *recordingReleaser
	notif    NotificationService
	dir      UserDirectory
	svc      WorkflowService
	admin    *types.User
	member   *types.User
	designer *types.User
	writer   *types.User
}

type harnessSetup struct {
	directory     UserDirectory
	notifications repos.NotificationRepo
}

type harnessOption func(*harnessSetup)

func withDirectory(d func(UserDirectory) UserDirectory) harnessOption {
	return func(s *harnessSetup) { s.directory = d(s.directory) }
}

func withNotificationRepo(r func(repos.NotificationRepo) repos.NotificationRepo) harnessOption {
	return func(s *harnessSetup) { s.notifications = r(s.notifications) }
}

type failingNotificationRepo struct {
	repos.NotificationRepo
}

func (failingNotificationRepo) InsertIgnoringDuplicates(context.Context, *gorm.DB, []*types.Notification) (int64, error) {
	return 0, errors.New("notifications table unavailable")
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()
	ctx := context.Background()
	db := repotest.DB(t)
	log := repotest.Logger(t)
	set := repos.NewSet(db, log)
	metrics := observability.New()

	tpl, err := LoadNotificationTemplates()
	if err != nil {
		t.Fatalf("LoadNotificationTemplates: %v", err)
	}
	emitter := &recordingEmitter{}
	files := &recordingReleaser{}
	setup := harnessSetup{
		directory:     NewUserDirectory(log, set.Users),
		notifications: set.Notifications,
	}
	for _, opt := range opts {
		opt(&setup)
	}
	notif := NewNotificationService(log, setup.notifications, tpl, emitter, metrics)
	dir := setup.directory

	agg := aggregates.NewWorkflowAggregate(aggregates.WorkflowAggregateDeps{
		Base: aggregates.BaseDeps{
			DB:     db,
			Log:    log,
			Runner: aggregates.NewGormTxRunner(db),
			Hooks:  aggregates.NewObservabilityHooks(metrics),
		},
		Requests:  set.Requests,
		Contents:  set.Contents,
		Revisions: set.Revisions,
		Tickets:   NewSequenceTicketAllocator(set.Sequences, DefaultTicketPrefix, metrics),
	})
	deps := WorkflowServiceDeps{
		Log:           log,
		Aggregate:     agg,
		Requests:      set.Requests,
		Contents:      set.Contents,
		Directory:     dir,
		Notifications: notif,
		Files:         files,
		Emitter:       emitter,
		Metrics:       metrics,
	}

	h := &harness{
		ctx:     ctx,
		db:      db,
		repos:   set,
		metrics: metrics,
		emitter: emitter,
		files:   files,
		notif:   notif,
		dir:     dir,
		svc:     NewWorkflowService(deps),
	}
	h.admin = repotest.SeedUser(t, ctx, db, user.RoleAdmin, user.DivisionGeneral)
	h.member = repotest.SeedUser(t, ctx, db, user.RoleMember, user.DivisionGeneral)
	h.designer = repotest.SeedUser(t, ctx, db, user.RoleStaff, user.DivisionDesigner)
	h.writer = repotest.SeedUser(t, ctx, db, user.RoleStaff, user.DivisionCopywriter)
	return h
}

func posterBrief() requests.Brief {
	return requests.Brief{
		Title:            "Poster Kegiatan",
		ContentType:      requests.ContentTypePoster,
		Deadline:         time.Now().UTC().Add(72 * time.Hour),
		Priority:         requests.PriorityHigh,
		Purpose:          "Promosi kegiatan bulanan",
		Description:      "Poster untuk kegiatan bulanan anggota",
		TargetAudience:   "Anggota",
		KeyPoints:        []string{"tanggal", "lokasi"},
		PublishPlatforms: []string{"Instagram"},
	}
}

func (h *harness) team() requests.Assignment {
	var a requests.Assignment
	a.Set(requests.RoleDesigner, h.designer.ID)
	a.Set(requests.RoleCopywriter, h.writer.ID)
	return a
}

// assigned drives a fresh request to assigned with the default team.
func (h *harness) assigned(t *testing.T) *types.ContentRequest {
	t.Helper()
	sub, err := h.svc.SubmitRequest(h.ctx, *h.member, posterBrief())
	if err != nil {
		t.Fatalf("SubmitRequest: %v", err)
	}
	if _, err := h.svc.ValidateRequest(h.ctx, *h.admin, sub.Request.ID); err != nil {
		t.Fatalf("ValidateRequest: %v", err)
	}
	res, err := h.svc.AssignRequest(h.ctx, *h.admin, sub.Request.ID, h.team())
	if err != nil {
		t.Fatalf("AssignRequest: %v", err)
	}
	return res.Request
}

func (h *harness) unread(t *testing.T, u *types.User) int64 {
	t.Helper()
	n, err := h.notif.UnreadCount(h.ctx, *u)
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	return n
}
