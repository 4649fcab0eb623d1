package user

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/contentflow-backend/internal/data/repos/testutil"
	types "github.com/yungbote/contentflow-backend/internal/domain"
	domainuser "github.com/yungbote/contentflow-backend/internal/domain/user"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewUserRepo(db, testutil.Logger(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, tx, []*types.User{
		{
			ID:       uuid.New(),
			Name:     "Rina",
			Email:    "userrepo@example.com",
			Role:     domainuser.RoleStaff,
			Division: domainuser.DivisionDesigner,
			IsActive: true,
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("Create: expected 1 user, got %d", len(created))
	}

	got, err := repo.GetByID(ctx, tx, created[0].ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Division != domainuser.DivisionDesigner {
		t.Fatalf("GetByID: unexpected division %q", got.Division)
	}
	if _, err := repo.GetByID(ctx, tx, uuid.New()); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("GetByID (missing): expected ErrRecordNotFound, got %v", err)
	}

	gotByIDs, err := repo.GetByIDs(ctx, tx, []uuid.UUID{created[0].ID})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(gotByIDs) != 1 || gotByIDs[0].ID != created[0].ID {
		t.Fatalf("GetByIDs: unexpected result: %+v", gotByIDs)
	}

	none, err := repo.GetByIDs(ctx, tx, nil)
	if err != nil || len(none) != 0 {
		t.Fatalf("GetByIDs (empty): got %+v err=%v", none, err)
	}
}

func TestListActiveByRoles(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewUserRepo(db, testutil.Logger(t))

	admin := testutil.SeedUser(t, ctx, tx, domainuser.RoleAdmin, domainuser.DivisionGeneral)
	super := testutil.SeedUser(t, ctx, tx, domainuser.RoleSuperadmin, domainuser.DivisionGeneral)
	retired := testutil.SeedUser(t, ctx, tx, domainuser.RoleAdmin, domainuser.DivisionGeneral)
	testutil.SeedUser(t, ctx, tx, domainuser.RoleStaff, domainuser.DivisionDesigner)

	if err := repo.SetActive(ctx, tx, retired.ID, false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}

	got, err := repo.ListActiveByRoles(ctx, tx, domainuser.ElevatedRoles)
	if err != nil {
		t.Fatalf("ListActiveByRoles: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListActiveByRoles: expected 2 users, got %d", len(got))
	}
	seen := map[uuid.UUID]bool{}
	for _, u := range got {
		seen[u.ID] = true
	}
	if !seen[admin.ID] || !seen[super.ID] || seen[retired.ID] {
		t.Fatalf("ListActiveByRoles: unexpected set %+v", got)
	}
}
