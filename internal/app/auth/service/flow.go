package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"html"
	"time"

	"github.com/mohamedaliSwe/mimi-style/internal/adapters/mail"
	"github.com/mohamedaliSwe/mimi-style/internal/adapters/transport/http/dto"
	"github.com/mohamedaliSwe/mimi-style/internal/app/validation"
	customErrors "github.com/mohamedaliSwe/mimi-style/internal/domain/store/errors"
	"github.com/mohamedaliSwe/mimi-style/internal/domain/store/model"
	lg "github.com/mohamedaliSwe/mimi-style/internal/infra/log"
	"go.uber.org/zap"
)

const oneTimeTokenBytes = 32

var (
	errVerifyToken = customErrors.NewInvalidToken("Invalid verification token")
	errResetToken  = customErrors.NewInvalidToken("Invalid reset token")

	errVerifyExpired = customErrors.NewTokenExpired("Verification link expired, a new link has been sent")
	errResetExpired  = customErrors.NewTokenExpired("Reset link expired, a new link has been sent")
)

func newOneTimeToken() (string, error) {
	b := make([]byte, oneTimeTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", customErrors.WrapInternal(err, "generate token")
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func expired(exp *time.Time) bool {
	return exp == nil || !time.Now().Before(*exp)
}

// startVerification replaces any pending verification token on u.
func (a *authService) startVerification(u *model.User) (string, error) {
	token, err := newOneTimeToken()
	if err != nil {
		return "", err
	}
	exp := time.Now().Add(a.cfg.EmailTokenTTL)
	u.VerificationToken, u.VerificationTokenExpires = &token, &exp
	return token, nil
}

// startReset replaces any pending reset token on u.
func (a *authService) startReset(u *model.User) (string, error) {
	token, err := newOneTimeToken()
	if err != nil {
		return "", err
	}
	exp := time.Now().Add(a.cfg.EmailTokenTTL)
	u.ResetToken, u.ResetTokenExpires = &token, &exp
	return token, nil
}

// Verify redeems a verification token. An expired token is replaced and
// mailed again, and the caller gets TokenExpired.
func (a *authService) Verify(ctx context.Context, token string) (model.User, error) {
	if token == "" {
		return model.User{}, errVerifyToken
	}

	user, err := a.userRepo.GetUserByVerificationToken(ctx, token)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return model.User{}, errVerifyToken
	case err != nil:
		return model.User{}, customErrors.WrapInternal(err, "Verify")
	}

	if expired(user.VerificationTokenExpires) {
		fresh, err := a.startVerification(&user)
		if err != nil {
			return model.User{}, err
		}
		if err := a.userRepo.UpdateUser(ctx, &user); err != nil {
			return model.User{}, err
		}
		a.mailer.Dispatch(verificationMail(user, a.link("/api/auth/verify/", fresh)))
		return model.User{}, errVerifyExpired
	}

	user.IsVerified = true
	user.VerificationToken, user.VerificationTokenExpires = nil, nil
	if err := a.userRepo.UpdateUser(ctx, &user); err != nil {
		return model.User{}, err
	}

	a.log.Info("user verified", zap.String("user_id", user.ID.String()))
	return user, nil
}

// ForgotPassword answers the same way whether or not the email exists.
func (a *authService) ForgotPassword(ctx context.Context, in dto.ForgotPasswordDTO) error {
	if err := validation.Struct(a.v, in); err != nil {
		return err
	}

	email := normalizeEmail(in.Email)
	user, err := a.userRepo.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		a.log.Debug("reset requested for unknown email", lg.Email(email))
		return nil
	case err != nil:
		return customErrors.WrapInternal(err, "ForgotPassword")
	}

	token, err := a.startReset(&user)
	if err != nil {
		return err
	}
	if err := a.userRepo.UpdateUser(ctx, &user); err != nil {
		return err
	}

	a.mailer.Dispatch(resetMail(user, a.link("/api/auth/password/reset/", token)))
	return nil
}

// ResetPassword redeems a reset token and stores the new password. The
// token is checked before the body.
func (a *authService) ResetPassword(ctx context.Context, token string, in dto.ResetPasswordDTO) error {
	if token == "" {
		return errResetToken
	}

	user, err := a.userRepo.GetUserByResetToken(ctx, token)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return errResetToken
	case err != nil:
		return customErrors.WrapInternal(err, "ResetPassword")
	}

	if expired(user.ResetTokenExpires) {
		fresh, err := a.startReset(&user)
		if err != nil {
			return err
		}
		if err := a.userRepo.UpdateUser(ctx, &user); err != nil {
			return err
		}
		a.mailer.Dispatch(resetMail(user, a.link("/api/auth/password/reset/", fresh)))
		return errResetExpired
	}

	if err := validation.Struct(a.v, in); err != nil {
		return err
	}
	if in.Password != in.PasswordConfirmation {
		return errPasswordMismatch
	}

	if user.PasswordHash, err = a.hasher.Hash(in.Password); err != nil {
		return err
	}
	user.ResetToken, user.ResetTokenExpires = nil, nil
	if err := a.userRepo.UpdateUser(ctx, &user); err != nil {
		return err
	}

	a.log.Info("password reset", zap.String("user_id", user.ID.String()))
	return nil
}

func verificationMail(u model.User, link string) mail.Message {
	return mail.Message{
		To:      []string{u.Email},
		Subject: "Verify your email",
		Body: fmt.Sprintf("Hi %s,\n\nConfirm your email address by opening the link below:\n%s\n\n"+
			"The link is valid for a limited time.\n", u.Username, link),
		HTMLBody: fmt.Sprintf(`<p>Hi %s,</p><p>Confirm your email address by opening the link below:</p>`+
			`<p><a href="%s">Verify email</a></p><p>The link is valid for a limited time.</p>`, html.EscapeString(u.Username), link),
	}
}

func resetMail(u model.User, link string) mail.Message {
	return mail.Message{
		To:      []string{u.Email},
		Subject: "Reset your password",
		Body: fmt.Sprintf("Hi %s,\n\nUse the link below to choose a new password:\n%s\n\n"+
			"If you did not ask for this, ignore this email.\n", u.Username, link),
		HTMLBody: fmt.Sprintf(`<p>Hi %s,</p><p>Use the link below to choose a new password:</p>`+
			`<p><a href="%s">Reset password</a></p><p>If you did not ask for this, ignore this email.</p>`, html.EscapeString(u.Username), link),
	}
}
