package workflow

import (
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/contentflow-backend/internal/domain/contents"
	"github.com/yungbote/contentflow-backend/internal/domain/requests"
	"github.com/yungbote/contentflow-backend/internal/domain/user"
)

var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func admin() user.User {
	return user.User{ID: uuid.New(), Name: "Admin", Role: user.RoleAdmin, IsActive: true}
}

func staff(div user.Division) user.User {
	return user.User{ID: uuid.New(), Name: string(div), Role: user.RoleStaff, Division: div, IsActive: true}
}

func member() user.User {
	return user.User{ID: uuid.New(), Name: "Member", Role: user.RoleMember, IsActive: true}
}

func posterBrief() requests.Brief {
	return requests.Brief{
		Title:            "Poster Kegiatan",
		ContentType:      requests.ContentTypePoster,
		Deadline:         testNow.Add(7 * 24 * time.Hour),
		Purpose:          "Promosi",
		Description:      "Poster untuk kegiatan bulanan",
		TargetAudience:   "Anggota",
		KeyPoints:        []string{"tanggal", "lokasi"},
		PublishPlatforms: []string{"Instagram"},
	}
}

func requestIn(status requests.Status, owner uuid.UUID, team requests.Assignment) *requests.ContentRequest {
	r := &requests.ContentRequest{
		ID:          uuid.New(),
		TicketCode:  "KKI-REQ-0001",
		Status:      status,
		RequestedBy: owner,
		RequestedAt: testNow,
		Assignment:  team,
		LockVersion: 3,
	}
	r.ApplyBrief(posterBrief())
	return r
}

func contentIn(status contents.Status, req *requests.ContentRequest) *contents.Content {
	return &contents.Content{
		ID:          uuid.New(),
		RequestID:   req.ID,
		Title:       req.Title,
		ContentType: req.ContentType,
		Version:     1,
		Status:      status,
		LockVersion: 5,
	}
}
