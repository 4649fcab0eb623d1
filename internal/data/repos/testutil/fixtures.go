package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/contentflow-backend/internal/domain"
	"github.com/yungbote/contentflow-backend/internal/domain/contents"
	"github.com/yungbote/contentflow-backend/internal/domain/requests"
	"github.com/yungbote/contentflow-backend/internal/domain/user"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, role user.Role, division user.Division) *types.User {
	tb.Helper()
	id := uuid.New()
	u := &types.User{
		ID:       id,
		Name:     fmt.Sprintf("%s-%s", role, id.String()[:8]),
		Email:    fmt.Sprintf("%s@example.com", id),
		Role:     role,
		Division: division,
		IsActive: true,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedRequest(tb testing.TB, ctx context.Context, tx *gorm.DB, requester uuid.UUID, ticket string, status requests.Status) *types.ContentRequest {
	tb.Helper()
	r := &types.ContentRequest{
		ID:               uuid.New(),
		TicketCode:       ticket,
		Title:            "Poster Kegiatan",
		ContentType:      requests.ContentTypePoster,
		Deadline:         time.Now().UTC().Add(72 * time.Hour),
		Priority:         requests.PriorityMedium,
		Purpose:          "Promosi",
		Description:      "Poster kegiatan bulanan",
		TargetAudience:   "Anggota",
		KeyPoints:        datatypes.JSONSlice[string]{"tanggal"},
		PublishPlatforms: datatypes.JSONSlice[string]{"Instagram"},
		Status:           status,
		RequestedBy:      requester,
		RequestedAt:      time.Now().UTC(),
		LockVersion:      1,
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed request: %v", err)
	}
	return r
}

func SeedContent(tb testing.TB, ctx context.Context, tx *gorm.DB, req *types.ContentRequest, creator uuid.UUID, status contents.Status) *types.Content {
	tb.Helper()
	c := &types.Content{
		ID:          uuid.New(),
		RequestID:   req.ID,
		Title:       req.Title,
		ContentType: req.ContentType,
		Version:     1,
		Status:      status,
		CreatedBy:   creator,
		LockVersion: 1,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed content: %v", err)
	}
	return c
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }

func PtrTime(v time.Time) *time.Time { return &v }
