package workflow

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/contentflow-backend/internal/domain/contents"
)

// AppendRevision records the version c is leaving and bumps the counter.
// Callers decide revision-worthiness before mutating fields; calling it twice
// records two revisions.
func AppendRevision(c *contents.Content, changes string, actor uuid.UUID, now time.Time) contents.Revision {
	changes = strings.TrimSpace(changes)
	if changes == "" {
		changes = contents.DefaultRevisionChanges
	}
	rev := contents.Revision{
		ID:        uuid.New(),
		ContentID: c.ID,
		Version:   c.Version,
		Changes:   changes,
		RevisedBy: actor,
		RevisedAt: now.UTC(),
	}
	c.Revisions = append(c.Revisions, rev)
	c.Version++
	return rev
}

// VersionConsistent checks version == 1 + len(revisions).
func VersionConsistent(c *contents.Content) bool {
	return c != nil && c.Version == 1+len(c.Revisions)
}
