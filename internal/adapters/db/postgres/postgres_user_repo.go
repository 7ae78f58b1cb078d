package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	customErrors "github.com/mohamedaliSwe/mimi-style/internal/domain/store/errors"
	"github.com/mohamedaliSwe/mimi-style/internal/domain/store/model"
	"gorm.io/gorm"
)

type uniqueField struct {
	column  string
	message string
	value   func(*model.User) string
}

var userUniqueFields = []uniqueField{
	{"email", "Email already registered", func(u *model.User) string { return u.Email }},
	{"username", "User exists", func(u *model.User) string { return u.Username }},
	{"telephone", "Number already registered", func(u *model.User) string { return u.Telephone }},
}

type PostgresUserRepo struct {
	db *gorm.DB
}

func NewPostgresUserRepo(db *gorm.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

func (p *PostgresUserRepo) CreateUser(ctx context.Context, user *model.User) error {
	res := p.db.WithContext(ctx).Create(user)
	if err := res.Error; err != nil {
		if column, ok := uniqueViolation(err, "users"); ok {
			return p.conflict(ctx, user, column)
		}
		return customErrors.WrapInternal(err, "CreateUser")
	}
	return nil
}

func (p *PostgresUserRepo) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return p.first(ctx, "GetUserByEmail", "email = ?", email)
}

func (p *PostgresUserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	return p.first(ctx, "GetUserByID", "id = ?", id)
}

func (p *PostgresUserRepo) GetUserByVerificationToken(ctx context.Context, token string) (model.User, error) {
	return p.first(ctx, "GetUserByVerificationToken", "verification_token = ?", token)
}

func (p *PostgresUserRepo) GetUserByResetToken(ctx context.Context, token string) (model.User, error) {
	return p.first(ctx, "GetUserByResetToken", "reset_token = ?", token)
}

func (p *PostgresUserRepo) first(ctx context.Context, op, query string, arg any) (model.User, error) {
	var u model.User
	res := p.db.WithContext(ctx).Where(query, arg).First(&u)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.User{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.User{}, customErrors.WrapInternal(err, op)
	}

	return u, nil
}

func (p *PostgresUserRepo) UpdateUser(ctx context.Context, user *model.User) error {
	res := p.db.WithContext(ctx).Model(user).Select("*").Omit("CreatedAt").Updates(user)
	if err := res.Error; err != nil {
		if column, ok := uniqueViolation(err, "users"); ok {
			return p.conflict(ctx, user, column)
		}
		return customErrors.WrapInternal(err, "UpdateUser")
	}
	if res.RowsAffected == 0 {
		return customErrors.ErrNotFound
	}

	return nil
}

// DeleteUser removes the user together with the cart items and orders
// that belong to it.
func (p *PostgresUserRepo) DeleteUser(ctx context.Context, id uuid.UUID) error {
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&model.CartItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.Order{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.User{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return customErrors.ErrNotFound
		}
		return nil
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, customErrors.ErrNotFound):
		return err
	default:
		return customErrors.WrapInternal(err, "DeleteUser")
	}
}

// conflict turns a unique violation into an error naming the offending
// field. Fields are checked in email, username, telephone order; the column
// reported by the driver is used when none of them matches.
func (p *PostgresUserRepo) conflict(ctx context.Context, user *model.User, column string) error {
	for _, f := range userUniqueFields {
		var n int64
		err := p.db.WithContext(ctx).Model(&model.User{}).
			Where(f.column+" = ? AND id <> ?", f.value(user), user.ID).
			Count(&n).Error
		if err != nil {
			return customErrors.WrapInternal(err, "conflict lookup")
		}
		if n > 0 {
			return customErrors.NewAlreadyExists(f.column, f.message)
		}
	}

	for _, f := range userUniqueFields {
		if f.column == column {
			return customErrors.NewAlreadyExists(f.column, f.message)
		}
	}
	return customErrors.NewAlreadyExists("", "User already exists")
}
