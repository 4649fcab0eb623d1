package aggregates

import "github.com/yungbote/contentflow-backend/internal/platform/dbctx"

// TicketAllocator returns the next ticket code. It is called inside the
// transaction that inserts the request; allocators backed by that
// transaction give the number back on rollback.
type TicketAllocator interface {
	Allocate(dbc dbctx.Context) (string, error)
}
