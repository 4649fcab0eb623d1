package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/yungbote/contentflow-backend/internal/data/aggregates"
	"github.com/yungbote/contentflow-backend/internal/data/repos"
	repotest "github.com/yungbote/contentflow-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/contentflow-backend/internal/domain/aggregates"
	"github.com/yungbote/contentflow-backend/internal/domain/requests"
	"github.com/yungbote/contentflow-backend/internal/domain/user"
	"github.com/yungbote/contentflow-backend/internal/observability"
	"github.com/yungbote/contentflow-backend/internal/platform/dbctx"
)

func TestFormatTicket(t *testing.T) {
	cases := []struct {
		prefix string
		n      int64
		want   string
	}{
		{"KKI-REQ", 1, "KKI-REQ-0001"},
		{"KKI-REQ", 42, "KKI-REQ-0042"},
		{"KKI-REQ", 9999, "KKI-REQ-9999"},
		{"KKI-REQ", 10000, "KKI-REQ-10000"},
		{"", 7, "KKI-REQ-0007"},
		{" OPS ", 3, "OPS-0003"},
	}
	for _, tc := range cases {
		if got := FormatTicket(tc.prefix, tc.n); got != tc.want {
			t.Fatalf("FormatTicket(%q, %d): want %q, got %q", tc.prefix, tc.n, tc.want, got)
		}
	}
}

// countTickets numbers tickets from the row count, the way tickets were
// numbered before the persisted sequence existed.
type countTickets struct {
	requests repos.ContentRequestRepo
}

func (c countTickets) Allocate(dbc dbctx.Context) (string, error) {
	n, err := c.requests.Count(dbc.Ctx, dbc.Tx)
	if err != nil {
		return "", err
	}
	return FormatTicket(DefaultTicketPrefix, n+1), nil
}

func TestTicketAllocation_InterleavedAllocatorsDoNotCollide(t *testing.T) {
	ctx := context.Background()
	db := repotest.DB(t)
	set := repos.NewSet(db, repotest.Logger(t))
	dbc := dbctx.Context{Ctx: ctx, Tx: db}

	// Two writers both allocate before either inserts.
	count := countTickets{requests: set.Requests}
	a, err := count.Allocate(dbc)
	if err != nil {
		t.Fatalf("count allocate: %v", err)
	}
	b, err := count.Allocate(dbc)
	if err != nil {
		t.Fatalf("count allocate: %v", err)
	}
	if a != b {
		t.Fatalf("count-based allocation was expected to collide, got %q and %q", a, b)
	}

	metrics := observability.New()
	seq := NewSequenceTicketAllocator(set.Sequences, DefaultTicketPrefix, metrics)
	first, err := seq.Allocate(dbc)
	if err != nil {
		t.Fatalf("sequence allocate: %v", err)
	}
	second, err := seq.Allocate(dbc)
	if err != nil {
		t.Fatalf("sequence allocate: %v", err)
	}
	if first == second {
		t.Fatalf("sequence allocator handed out %q twice", first)
	}
	if first != "KKI-REQ-0001" || second != "KKI-REQ-0002" {
		t.Fatalf("want KKI-REQ-0001/0002, got %s/%s", first, second)
	}
}

func TestTicketAllocation_SequenceSurvivesDeletes(t *testing.T) {
	h := newHarness(t)
	first, err := h.svc.SubmitRequest(h.ctx, *h.member, posterBrief())
	if err != nil {
		t.Fatalf("SubmitRequest: %v", err)
	}
	if _, err := h.svc.DeleteRequest(h.ctx, *h.admin, first.Request.ID); err != nil {
		t.Fatalf("DeleteRequest: %v", err)
	}
	second, err := h.svc.SubmitRequest(h.ctx, *h.member, posterBrief())
	if err != nil {
		t.Fatalf("SubmitRequest: %v", err)
	}
	if second.Request.TicketCode != "KKI-REQ-0002" {
		t.Fatalf("ticket numbers must not be reused, got %s", second.Request.TicketCode)
	}
}

func TestTicketAllocation_DuplicateCodeIsAConflict(t *testing.T) {
	ctx := context.Background()
	db := repotest.DB(t)
	set := repos.NewSet(db, repotest.Logger(t))
	requester := repotest.SeedUser(t, ctx, db, user.RoleMember, user.DivisionGeneral)
	repotest.SeedRequest(t, ctx, db, requester.ID, "KKI-REQ-0001", requests.StatusPending)

	dup := &requests.ContentRequest{
		TicketCode:  "KKI-REQ-0001",
		Title:       "Duplikat",
		ContentType: requests.ContentTypePoster,
		Status:      requests.StatusPending,
		RequestedBy: requester.ID,
		LockVersion: 1,
	}
	err := set.Requests.Create(ctx, nil, dup)
	if err == nil {
		t.Fatalf("expected unique violation on ticket_code")
	}
	if mapped := aggregates.MapError("test", err); !domainagg.IsCode(mapped, domainagg.CodeConflict) {
		t.Fatalf("want conflict, got %v", mapped)
	}
}

type recordingCounter struct {
	calls int
	floor int64
}

func (c *recordingCounter) EnsureAtLeast(_ context.Context, name string, floor int64) error {
	if name != requests.TicketSequenceName {
		return fmt.Errorf("unexpected sequence %q", name)
	}
	c.calls++
	if floor > c.floor {
		c.floor = floor
	}
	return nil
}

func TestParseTicketNumber(t *testing.T) {
	cases := []struct {
		prefix, code string
		want         int64
		ok           bool
	}{
		{"KKI-REQ", "KKI-REQ-0042", 42, true},
		{"KKI-REQ", "KKI-REQ-10000", 10000, true},
		{"", "KKI-REQ-0007", 7, true},
		{"OPS", "KKI-REQ-0007", 0, false},
		{"KKI-REQ", "KKI-REQ-", 0, false},
		{"KKI-REQ", "KKI-REQ-00x1", 0, false},
		{"KKI-REQ", "", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseTicketNumber(tc.prefix, tc.code)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParseTicketNumber(%q, %q): want %d %v, got %d %v", tc.prefix, tc.code, tc.want, tc.ok, got, ok)
		}
	}
}

func TestAlignTicketCounter_RaisesPastExistingTickets(t *testing.T) {
	ctx := context.Background()
	db := repotest.DB(t)
	set := repos.NewSet(db, repotest.Logger(t))
	requester := repotest.SeedUser(t, ctx, db, user.RoleMember, user.DivisionGeneral)
	repotest.SeedRequest(t, ctx, db, requester.ID, "KKI-REQ-0040", requests.StatusPending)
	repotest.SeedRequest(t, ctx, db, requester.ID, "KKI-REQ-0041", requests.StatusPending)

	// The sequence row knows nothing about these tickets, as after a backend switch.
	remote := &recordingCounter{}
	floor, err := AlignTicketCounter(ctx, set.Requests, set.Sequences, DefaultTicketPrefix, remote)
	if err != nil {
		t.Fatalf("AlignTicketCounter: %v", err)
	}
	if floor != 41 || remote.floor != 41 {
		t.Fatalf("want floor 41, got floor=%d counter=%d", floor, remote.floor)
	}

	if _, err := AlignTicketCounter(ctx, set.Requests, set.Sequences, DefaultTicketPrefix, NewDBTicketCounter(set.Sequences)); err != nil {
		t.Fatalf("AlignTicketCounter (db): %v", err)
	}
	alloc := NewSequenceTicketAllocator(set.Sequences, DefaultTicketPrefix, observability.New())
	code, err := alloc.Allocate(dbctx.Context{Ctx: ctx, Tx: db})
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if code != "KKI-REQ-0042" {
		t.Fatalf("want KKI-REQ-0042 after alignment, got %q", code)
	}
}

func TestAlignTicketCounter_UsesSequenceWhenAhead(t *testing.T) {
	ctx := context.Background()
	db := repotest.DB(t)
	set := repos.NewSet(db, repotest.Logger(t))
	requester := repotest.SeedUser(t, ctx, db, user.RoleMember, user.DivisionGeneral)
	repotest.SeedRequest(t, ctx, db, requester.ID, "KKI-REQ-0003", requests.StatusPending)
	if err := set.Sequences.EnsureAtLeast(ctx, nil, requests.TicketSequenceName, 9); err != nil {
		t.Fatalf("EnsureAtLeast: %v", err)
	}

	remote := &recordingCounter{}
	floor, err := AlignTicketCounter(ctx, set.Requests, set.Sequences, DefaultTicketPrefix, remote)
	if err != nil {
		t.Fatalf("AlignTicketCounter: %v", err)
	}
	if floor != 9 || remote.floor != 9 {
		t.Fatalf("deleted tickets still count: want 9, got floor=%d counter=%d", floor, remote.floor)
	}
}

func TestAlignTicketCounter_EmptyDatabaseLeavesCounterAlone(t *testing.T) {
	ctx := context.Background()
	db := repotest.DB(t)
	set := repos.NewSet(db, repotest.Logger(t))

	remote := &recordingCounter{}
	floor, err := AlignTicketCounter(ctx, set.Requests, set.Sequences, DefaultTicketPrefix, remote)
	if err != nil {
		t.Fatalf("AlignTicketCounter: %v", err)
	}
	if floor != 0 || remote.calls != 0 {
		t.Fatalf("empty database: floor=%d calls=%d", floor, remote.calls)
	}
}
