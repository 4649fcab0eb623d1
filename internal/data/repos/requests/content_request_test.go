package requests

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/contentflow-backend/internal/data/repos/testutil"
	domainreq "github.com/yungbote/contentflow-backend/internal/domain/requests"
	"github.com/yungbote/contentflow-backend/internal/domain/user"
)

func TestContentRequestRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewContentRequestRepo(db, testutil.Logger(t))

	requester := testutil.SeedUser(t, ctx, tx, user.RoleMember, user.DivisionGeneral)
	designer := testutil.SeedUser(t, ctx, tx, user.RoleStaff, user.DivisionDesigner)

	pending := testutil.SeedRequest(t, ctx, tx, requester.ID, "KKI-REQ-0001", domainreq.StatusPending)
	review := testutil.SeedRequest(t, ctx, tx, requester.ID, "KKI-REQ-0002", domainreq.StatusReview)
	review.Assignment.Set(domainreq.RoleDesigner, designer.ID)
	if err := tx.Save(review).Error; err != nil {
		t.Fatalf("save assignment: %v", err)
	}
	testutil.SeedRequest(t, ctx, tx, requester.ID, "KKI-REQ-0003", domainreq.StatusPublished)

	got, err := repo.GetByTicket(ctx, tx, " kki-req-0002 ")
	if err != nil {
		t.Fatalf("GetByTicket: %v", err)
	}
	if got.ID != review.ID {
		t.Fatalf("GetByTicket: got %s want %s", got.ID, review.ID)
	}
	if id, ok := got.Assignment.Get(domainreq.RoleDesigner); !ok || id != designer.ID {
		t.Fatalf("GetByTicket: assignment not round-tripped: %+v", got.Assignment)
	}
	if len(got.KeyPoints) != 1 || got.KeyPoints[0] != "tanggal" {
		t.Fatalf("GetByTicket: key points not round-tripped: %v", got.KeyPoints)
	}

	if _, err := repo.GetByID(ctx, tx, uuid.New()); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("GetByID (missing): expected ErrRecordNotFound, got %v", err)
	}

	assigned, err := repo.List(ctx, tx, ListFilter{AssignedTo: &designer.ID})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(assigned) != 1 || assigned[0].ID != review.ID {
		t.Fatalf("List(AssignedTo): unexpected %+v", assigned)
	}
	open, err := repo.List(ctx, tx, ListFilter{Statuses: []domainreq.Status{domainreq.StatusPending, domainreq.StatusReview}})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(open) != 2 {
		t.Fatalf("List(Statuses): expected 2, got %d", len(open))
	}

	stats, err := repo.Stats(ctx, tx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 3 || stats.Pending != 1 || stats.InProgress != 1 || stats.Completed != 1 {
		t.Fatalf("Stats: unexpected %+v", stats)
	}
	if stats.ByType[domainreq.ContentTypePoster] != 3 || stats.ByPriority[domainreq.PriorityMedium] != 3 {
		t.Fatalf("Stats: unexpected breakdown %+v", stats)
	}

	n, err := repo.Delete(ctx, tx, pending.ID)
	if err != nil || n != 1 {
		t.Fatalf("Delete: n=%d err=%v", n, err)
	}
	count, err := repo.Count(ctx, tx)
	if err != nil || count != 2 {
		t.Fatalf("Count: n=%d err=%v", count, err)
	}
}

func TestTicketCodeIsUnique(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewContentRequestRepo(db, testutil.Logger(t))

	requester := testutil.SeedUser(t, ctx, tx, user.RoleMember, user.DivisionGeneral)
	first := testutil.SeedRequest(t, ctx, tx, requester.ID, "KKI-REQ-0007", domainreq.StatusPending)

	dup := first.Clone()
	dup.ID = uuid.New()
	if err := repo.Create(ctx, tx, dup); err == nil {
		t.Fatalf("Create: expected unique violation on duplicate ticket code")
	}
}

func TestHighestTicketCode(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewContentRequestRepo(db, testutil.Logger(t))

	if got, err := repo.HighestTicketCode(ctx, tx, "KKI-REQ"); err != nil || got != "" {
		t.Fatalf("empty table: got %q err=%v", got, err)
	}
	requester := testutil.SeedUser(t, ctx, tx, user.RoleMember, user.DivisionGeneral)
	for _, code := range []string{"KKI-REQ-0007", "KKI-REQ-9999", "KKI-REQ-10002", "OPS-99999"} {
		testutil.SeedRequest(t, ctx, tx, requester.ID, code, domainreq.StatusPending)
	}
	got, err := repo.HighestTicketCode(ctx, tx, "KKI-REQ")
	if err != nil {
		t.Fatalf("HighestTicketCode: %v", err)
	}
	if got != "KKI-REQ-10002" {
		t.Fatalf("want KKI-REQ-10002, got %q", got)
	}
}
