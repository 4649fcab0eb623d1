package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/contentflow-backend/internal/data/aggregates"
	"github.com/yungbote/contentflow-backend/internal/data/repos"
	domainagg "github.com/yungbote/contentflow-backend/internal/domain/aggregates"
	"github.com/yungbote/contentflow-backend/internal/domain/user"
	"github.com/yungbote/contentflow-backend/internal/platform/logger"
)

// UserDirectory is the read-only view of users the workflow needs.
type UserDirectory interface {
	// Actor loads the user a command runs as. Unknown ids are unauthorized.
	Actor(ctx context.Context, id uuid.UUID) (user.User, error)
	// ElevatedUserIDs lists every active admin and superadmin.
	ElevatedUserIDs(ctx context.Context) ([]uuid.UUID, error)
	// RequireActive fails with a validation error unless every id is an active user.
	RequireActive(ctx context.Context, ids []uuid.UUID) error
}

type userDirectory struct {
	log   *logger.Logger
	users repos.UserRepo
}

func NewUserDirectory(log *logger.Logger, users repos.UserRepo) UserDirectory {
	return &userDirectory{log: log.With("service", "UserDirectory"), users: users}
}

func (d *userDirectory) Actor(ctx context.Context, id uuid.UUID) (user.User, error) {
	const op = "directory.Actor"
	if id == uuid.Nil {
		return user.User{}, domainagg.NewError(domainagg.CodeUnauthorized, op, "missing actor", nil)
	}
	u, err := d.users.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.User{}, domainagg.NewError(domainagg.CodeUnauthorized, op, "unknown actor", err)
		}
		return user.User{}, aggregates.MapError(op, err)
	}
	return *u, nil
}

func (d *userDirectory) ElevatedUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	list, err := d.users.ListActiveByRoles(ctx, nil, user.ElevatedRoles)
	if err != nil {
		return nil, aggregates.MapError("directory.ElevatedUserIDs", err)
	}
	out := make([]uuid.UUID, 0, len(list))
	for _, u := range list {
		out = append(out, u.ID)
	}
	return out, nil
}

func (d *userDirectory) RequireActive(ctx context.Context, ids []uuid.UUID) error {
	const op = "directory.RequireActive"
	if len(ids) == 0 {
		return nil
	}
	found, err := d.users.GetByIDs(ctx, nil, ids)
	if err != nil {
		return aggregates.MapError(op, err)
	}
	active := make(map[uuid.UUID]bool, len(found))
	for _, u := range found {
		active[u.ID] = u.IsActive
	}
	for _, id := range ids {
		if !active[id] {
			return domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("user %s is not an active member", id), nil)
		}
	}
	return nil
}
