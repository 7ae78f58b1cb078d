package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/mohamedaliSwe/mimi-style/internal/adapters/mail"
	"github.com/mohamedaliSwe/mimi-style/internal/adapters/transport/http/dto"
	"github.com/mohamedaliSwe/mimi-style/internal/app/validation"
	customErrors "github.com/mohamedaliSwe/mimi-style/internal/domain/store/errors"
	"github.com/mohamedaliSwe/mimi-style/internal/domain/store/jwt"
	"github.com/mohamedaliSwe/mimi-style/internal/domain/store/model"
	repo "github.com/mohamedaliSwe/mimi-style/internal/domain/store/repo"
	"github.com/mohamedaliSwe/mimi-style/internal/infra/config"
	lg "github.com/mohamedaliSwe/mimi-style/internal/infra/log"
	"github.com/nyaruka/phonenumbers"
	"go.uber.org/zap"
)

var (
	errPasswordMismatch = customErrors.NewInvalidArgument("Passwords do not match")
	errEmailUnknown     = customErrors.NewInvalidCredentials("Email not registered")
	errWrongPassword    = customErrors.NewInvalidCredentials("Incorrect password")
	errNotVerified      = customErrors.NewNotVerified("Account not verified")
	errBadToken         = customErrors.NewUnauthorized("Invalid or expired token")
	errUserNotFound     = customErrors.NewNotFound("User not found")
)

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(plain, hash string) (bool, error)
}

// Mailer hands a message off for background delivery.
type Mailer interface {
	Dispatch(msg mail.Message)
}

type Service interface {
	Signup(context.Context, dto.SignupDTO) (model.User, error)
	Verify(ctx context.Context, token string) (model.User, error)
	Login(context.Context, dto.LoginDTO) (model.TokenPair, error)
	Refresh(context.Context, dto.RefreshDTO) (model.TokenPair, error)
	Logout(context.Context, dto.LogoutDTO) error
	Authenticate(ctx context.Context, accessToken string) (jwt.Claims, error)

	GetProfile(ctx context.Context, userID uuid.UUID) (model.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, in dto.UpdateProfileDTO) (model.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, in dto.ChangePasswordDTO) error
	DeleteProfile(ctx context.Context, claims jwt.Claims) error

	ForgotPassword(context.Context, dto.ForgotPasswordDTO) error
	ResetPassword(ctx context.Context, token string, in dto.ResetPasswordDTO) error
}

type authService struct {
	userRepo  repo.UserRepo
	tokenRepo repo.RevocationRepo
	jwtUtil   jwt.JWTUtil
	hasher    PasswordHasher
	mailer    Mailer
	cfg       *config.Config
	v         *validator.Validate
	log       *zap.Logger
}

func New(
	ur repo.UserRepo,
	tr repo.RevocationRepo,
	jm jwt.JWTUtil,
	h PasswordHasher,
	m Mailer,
	cfg *config.Config,
	v *validator.Validate,
	log *zap.Logger,
) Service {
	return &authService{
		userRepo: ur, tokenRepo: tr, jwtUtil: jm, hasher: h, mailer: m,
		cfg: cfg, v: v, log: log,
	}
}

func (a *authService) Signup(ctx context.Context, in dto.SignupDTO) (model.User, error) {
	if err := validation.Struct(a.v, in); err != nil {
		return model.User{}, err
	}
	if in.Password != in.PasswordConfirmation {
		return model.User{}, errPasswordMismatch
	}

	hash, err := a.hasher.Hash(in.Password)
	if err != nil {
		return model.User{}, err
	}

	user := model.User{
		Username:     strings.TrimSpace(in.Username),
		Email:        normalizeEmail(in.Email),
		Telephone:    normalizeTelephone(in.Telephone, a.cfg.TelephoneRegion),
		Address:      strings.TrimSpace(in.Address),
		PasswordHash: hash,
		Role:         model.RoleCustomer,
	}
	if a.cfg.IsAdminEmail(user.Email) {
		user.Role = model.RoleAdmin
	}
	token, err := a.startVerification(&user)
	if err != nil {
		return model.User{}, err
	}

	if err := a.userRepo.CreateUser(ctx, &user); err != nil {
		return model.User{}, err
	}

	a.log.Info("user signed up", lg.Email(user.Email), zap.String("user_id", user.ID.String()))
	a.mailer.Dispatch(verificationMail(user, a.link("/api/auth/verify/", token)))
	return user, nil
}

func (a *authService) Login(ctx context.Context, in dto.LoginDTO) (model.TokenPair, error) {
	if err := validation.Struct(a.v, in); err != nil {
		return model.TokenPair{}, err
	}

	user, err := a.userRepo.GetUserByEmail(ctx, normalizeEmail(in.Email))
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return model.TokenPair{}, errEmailUnknown
	case err != nil:
		return model.TokenPair{}, customErrors.WrapInternal(err, "Login")
	}

	if !user.IsVerified {
		return model.TokenPair{}, errNotVerified
	}

	ok, err := a.hasher.Compare(in.Password, user.PasswordHash)
	if err != nil {
		return model.TokenPair{}, err
	}
	if !ok {
		return model.TokenPair{}, errWrongPassword
	}

	return a.issueTokens(user)
}

// Refresh mints a new access token from a valid refresh token. The refresh
// token itself stays valid until it expires or is logged out.
func (a *authService) Refresh(ctx context.Context, in dto.RefreshDTO) (model.TokenPair, error) {
	if err := validation.Struct(a.v, in); err != nil {
		return model.TokenPair{}, err
	}

	claims, err := a.jwtUtil.ValidateRefreshToken(in.RefreshToken)
	if err != nil {
		return model.TokenPair{}, errBadToken
	}
	if err := a.checkRevoked(ctx, claims); err != nil {
		return model.TokenPair{}, err
	}

	id, err := claims.Identity()
	if err != nil {
		return model.TokenPair{}, errBadToken
	}
	if _, err := a.userRepo.GetUserByID(ctx, id.UserID); err != nil {
		if errors.Is(err, customErrors.ErrNotFound) {
			return model.TokenPair{}, errBadToken
		}
		return model.TokenPair{}, customErrors.WrapInternal(err, "Refresh")
	}

	at, atExp, _, err := a.jwtUtil.GenerateAccessToken(id)
	if err != nil {
		return model.TokenPair{}, err
	}

	now := time.Now()
	return model.TokenPair{
		AccessToken:  at,
		RefreshToken: in.RefreshToken,
		AccessTTL:    atExp.Sub(now),
		RefreshTTL:   claims.ExpiresAt.Sub(now),
		UserId:       id.UserID,
	}, nil
}

// Logout revokes the presented access token and, when given, a second
// token (normally the refresh token) issued to the same user.
func (a *authService) Logout(ctx context.Context, in dto.LogoutDTO) error {
	if err := validation.Struct(a.v, in); err != nil {
		return err
	}

	acc, err := a.Authenticate(ctx, in.AccessToken)
	if err != nil {
		return err
	}
	if err := a.tokenRepo.Revoke(ctx, acc.ID, acc.ExpiresAt.Time); err != nil {
		return customErrors.WrapInternal(err, "Logout")
	}

	if in.RefreshToken == "" {
		return nil
	}
	// usually the refresh token, but any live token of the same user is
	// accepted; an expired or foreign one has nothing left to revoke
	ref, err := a.jwtUtil.ParseAny(in.RefreshToken)
	if err != nil || ref.Subject != acc.Subject {
		return nil
	}
	if err := a.tokenRepo.Revoke(ctx, ref.ID, ref.ExpiresAt.Time); err != nil {
		return customErrors.WrapInternal(err, "Logout")
	}
	return nil
}

func (a *authService) Authenticate(ctx context.Context, accessToken string) (jwt.Claims, error) {
	if accessToken == "" {
		return jwt.Claims{}, customErrors.NewUnauthorized("Missing access token")
	}
	claims, err := a.jwtUtil.ValidateAccessToken(accessToken)
	if err != nil {
		return jwt.Claims{}, errBadToken
	}
	if err := a.checkRevoked(ctx, claims); err != nil {
		return jwt.Claims{}, err
	}
	return claims, nil
}

func (a *authService) checkRevoked(ctx context.Context, claims jwt.Claims) error {
	revoked, err := a.tokenRepo.IsRevoked(ctx, claims.ID)
	if err != nil {
		return customErrors.WrapInternal(err, "IsRevoked")
	}
	if revoked {
		return customErrors.NewUnauthorized("Token has been revoked")
	}
	return nil
}

func (a *authService) GetProfile(ctx context.Context, userID uuid.UUID) (model.User, error) {
	user, err := a.userRepo.GetUserByID(ctx, userID)
	if errors.Is(err, customErrors.ErrNotFound) {
		return model.User{}, errUserNotFound
	}
	return user, err
}

func (a *authService) UpdateProfile(ctx context.Context, userID uuid.UUID, in dto.UpdateProfileDTO) (model.User, error) {
	if err := validation.Struct(a.v, in); err != nil {
		return model.User{}, err
	}

	user, err := a.GetProfile(ctx, userID)
	if err != nil {
		return model.User{}, err
	}

	if in.Username != nil {
		if user.Username, err = required("username", strings.TrimSpace(*in.Username)); err != nil {
			return model.User{}, err
		}
	}
	if in.Email != nil {
		if user.Email, err = required("email", normalizeEmail(*in.Email)); err != nil {
			return model.User{}, err
		}
	}
	if in.Telephone != nil {
		phone := normalizeTelephone(*in.Telephone, a.cfg.TelephoneRegion)
		if user.Telephone, err = required("telephone", phone); err != nil {
			return model.User{}, err
		}
	}
	if in.Address != nil {
		user.Address = strings.TrimSpace(*in.Address)
	}

	if err := a.userRepo.UpdateUser(ctx, &user); err != nil {
		if errors.Is(err, customErrors.ErrNotFound) {
			return model.User{}, errUserNotFound
		}
		return model.User{}, err
	}
	return user, nil
}

func (a *authService) ChangePassword(ctx context.Context, userID uuid.UUID, in dto.ChangePasswordDTO) error {
	if err := validation.Struct(a.v, in); err != nil {
		return err
	}

	user, err := a.GetProfile(ctx, userID)
	if err != nil {
		return err
	}
	ok, err := a.hasher.Compare(in.OldPassword, user.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		return errWrongPassword
	}
	if in.NewPassword != in.PasswordConfirmation {
		return errPasswordMismatch
	}

	if user.PasswordHash, err = a.hasher.Hash(in.NewPassword); err != nil {
		return err
	}
	return a.userRepo.UpdateUser(ctx, &user)
}

// DeleteProfile removes the token's subject and revokes the token itself.
func (a *authService) DeleteProfile(ctx context.Context, claims jwt.Claims) error {
	id, err := claims.Identity()
	if err != nil {
		return errBadToken
	}
	if err := a.userRepo.DeleteUser(ctx, id.UserID); err != nil {
		if errors.Is(err, customErrors.ErrNotFound) {
			return errUserNotFound
		}
		return err
	}
	if err := a.tokenRepo.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		a.log.Warn("revoke after delete", zap.Error(err))
	}

	a.log.Info("user deleted", zap.String("user_id", id.UserID.String()))
	return nil
}

func (a *authService) issueTokens(user model.User) (model.TokenPair, error) {
	id := jwt.Identity{UserID: user.ID, Username: user.Username, Roles: user.Roles()}

	at, atExp, _, err := a.jwtUtil.GenerateAccessToken(id)
	if err != nil {
		return model.TokenPair{}, err
	}
	rt, rtExp, _, err := a.jwtUtil.GenerateRefreshToken(id)
	if err != nil {
		return model.TokenPair{}, err
	}

	now := time.Now()
	return model.TokenPair{
		AccessToken:  at,
		RefreshToken: rt,
		AccessTTL:    atExp.Sub(now),
		RefreshTTL:   rtExp.Sub(now),
		UserId:       user.ID,
	}, nil
}

func (a *authService) link(path, token string) string {
	return a.cfg.AppBaseURL + path + token
}

func required(field, value string) (string, error) {
	if value == "" {
		return "", customErrors.NewMissingField(field)
	}
	return value, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// normalizeTelephone formats numbers it can parse as E.164 and keeps
// anything else as typed.
func normalizeTelephone(raw, region string) string {
	raw = strings.TrimSpace(raw)
	num, err := phonenumbers.Parse(raw, region)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return raw
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}
