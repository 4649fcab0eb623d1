package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/yungbote/contentflow-backend/internal/clients/redis"
	"github.com/yungbote/contentflow-backend/internal/data/aggregates"
	"github.com/yungbote/contentflow-backend/internal/data/repos"
	"github.com/yungbote/contentflow-backend/internal/domain/requests"
	"github.com/yungbote/contentflow-backend/internal/observability"
	"github.com/yungbote/contentflow-backend/internal/platform/dbctx"
)

const (
	DefaultTicketPrefix = "KKI-REQ"
	TicketBackendDB     = "db"
	TicketBackendRedis  = "redis"
	ticketMinDigits     = 4
)

// FormatTicket renders PREFIX-NNNN; numbers wider than four digits are kept whole.
func FormatTicket(prefix string, n int64) string {
	return fmt.Sprintf("%s-%0*d", normalizedPrefix(prefix), ticketMinDigits, n)
}

type sequenceTicketAllocator struct {
	seq     repos.TicketSequenceRepo
	prefix  string
	metrics *observability.Metrics
}

// NewSequenceTicketAllocator numbers tickets from the ticket_sequence row.
// The increment joins the caller's transaction, so a failed insert hands the
// number back.
func NewSequenceTicketAllocator(seq repos.TicketSequenceRepo, prefix string, metrics *observability.Metrics) aggregates.TicketAllocator {
	return &sequenceTicketAllocator{seq: seq, prefix: prefix, metrics: metrics}
}

func (a *sequenceTicketAllocator) Allocate(dbc dbctx.Context) (string, error) {
	n, err := a.seq.Next(dbc.Ctx, dbc.Tx, requests.TicketSequenceName)
	if err != nil {
		return "", err
	}
	a.metrics.IncTicketAllocated(TicketBackendDB)
	return FormatTicket(a.prefix, n), nil
}

type redisTicketAllocator struct {
	seq     *redis.Sequence
	prefix  string
	metrics *observability.Metrics
}

// NewRedisTicketAllocator numbers tickets with INCR. Numbers are unique but a
// rolled back insert leaves a gap.
func NewRedisTicketAllocator(seq *redis.Sequence, prefix string, metrics *observability.Metrics) aggregates.TicketAllocator {
	return &redisTicketAllocator{seq: seq, prefix: prefix, metrics: metrics}
}

func (a *redisTicketAllocator) Allocate(dbc dbctx.Context) (string, error) {
	n, err := a.seq.Next(dbc.Ctx, requests.TicketSequenceName)
	if err != nil {
		return "", aggregates.UnavailableError("ticket sequence: " + err.Error())
	}
	a.metrics.IncTicketAllocated(TicketBackendRedis)
	return FormatTicket(a.prefix, n), nil
}

// TicketCounter is a sequence that can be raised to a floor without lowering it.
type TicketCounter interface {
	EnsureAtLeast(ctx context.Context, name string, floor int64) error
}

type dbTicketCounter struct {
	seq repos.TicketSequenceRepo
}

// NewDBTicketCounter exposes the ticket_sequence row as a TicketCounter.
func NewDBTicketCounter(seq repos.TicketSequenceRepo) TicketCounter {
	return dbTicketCounter{seq: seq}
}

func (c dbTicketCounter) EnsureAtLeast(ctx context.Context, name string, floor int64) error {
	return c.seq.EnsureAtLeast(ctx, nil, name, floor)
}

// AlignTicketCounter raises counter past every ticket already on record, so a
// fresh or switched backend never reissues a number. It returns the floor used.
func AlignTicketCounter(ctx context.Context, reqs repos.ContentRequestRepo, seq repos.TicketSequenceRepo, prefix string, counter TicketCounter) (int64, error) {
	floor, err := seq.Current(ctx, nil, requests.TicketSequenceName)
	if err != nil {
		return 0, fmt.Errorf("read ticket sequence: %w", err)
	}
	code, err := reqs.HighestTicketCode(ctx, nil, normalizedPrefix(prefix))
	if err != nil {
		return 0, fmt.Errorf("read highest ticket: %w", err)
	}
	if n, ok := ParseTicketNumber(prefix, code); ok && n > floor {
		floor = n
	}
	if floor == 0 {
		return 0, nil
	}
	if err := counter.EnsureAtLeast(ctx, requests.TicketSequenceName, floor); err != nil {
		return 0, fmt.Errorf("raise ticket counter to %d: %w", floor, err)
	}
	return floor, nil
}

// ParseTicketNumber is the inverse of FormatTicket.
func ParseTicketNumber(prefix, code string) (int64, bool) {
	digits, ok := strings.CutPrefix(strings.TrimSpace(code), normalizedPrefix(prefix)+"-")
	if !ok || digits == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func normalizedPrefix(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return DefaultTicketPrefix
	}
	return prefix
}
