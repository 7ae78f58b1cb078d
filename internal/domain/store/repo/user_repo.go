package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/mohamedaliSwe/mimi-style/internal/domain/store/model"
)

type UserRepo interface {
	CreateUser(ctx context.Context, u *model.User) error

	GetUserByEmail(ctx context.Context, email string) (model.User, error)

	GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error)

	GetUserByVerificationToken(ctx context.Context, token string) (model.User, error)

	GetUserByResetToken(ctx context.Context, token string) (model.User, error)

	UpdateUser(ctx context.Context, u *model.User) error

	DeleteUser(ctx context.Context, id uuid.UUID) error
}
