package service

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/iliyamo/sports-complex/internal/database"
	"github.com/iliyamo/sports-complex/internal/model"
	"github.com/iliyamo/sports-complex/internal/repository"
	"github.com/iliyamo/sports-complex/internal/utils"
)

// RegisterInput is a self-service sign up.  The account is always a PLAYER.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Password  string
}

// Session is what login and register hand back to the client.
type Session struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	User      model.User `json:"user"`
}

// AuthConfig carries the knobs of the credential flows.
type AuthConfig struct {
	ResetTTL time.Duration
	BaseURL  string
}

// AuthService authenticates requests and runs the password flows.
type AuthService struct {
	db     *sql.DB
	users  *repository.UserRepo
	resets *repository.ResetTokenRepo
	hasher Hasher
	tokens TokenService
	mailer Mailer
	cfg    AuthConfig
	now    func() time.Time
	secret func() (string, error)
}

func NewAuthService(db *sql.DB, hasher Hasher, tokens TokenService, mailer Mailer, cfg AuthConfig) *AuthService {
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = time.Hour
	}
	return &AuthService{
		db:     db,
		users:  repository.NewUserRepo(db),
		resets: repository.NewResetTokenRepo(db),
		hasher: hasher,
		tokens: tokens,
		mailer: mailer,
		cfg:    cfg,
		now:    func() time.Time { return time.Now().UTC() },
		secret: utils.NewResetSecret,
	}
}

// Authenticate resolves a bearer token to the current user record.  The
// active flag is checked on every call so disabling an account revokes its
// outstanding tokens.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (model.User, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return model.User{}, unauthenticatedErr("missing bearer token")
	}
	uid, _, err := s.tokens.Parse(raw)
	if err != nil {
		return model.User{}, unauthenticatedErr("invalid or expired token")
	}
	u, err := s.users.GetByID(ctx, uid)
	if errors.Is(err, repository.ErrUserNotFound) {
		return model.User{}, unauthenticatedErr("invalid or expired token")
	}
	if err != nil {
		return model.User{}, internalErr("load user", err)
	}
	if !u.IsActive {
		return model.User{}, forbiddenErr(MsgAccountDisabled)
	}
	return u, nil
}

func (s *AuthService) session(u model.User) (Session, error) {
	tok, err := s.tokens.Issue(u.ID, string(u.Role))
	if err != nil {
		return Session{}, internalErr("issue token", err)
	}
	return Session{Token: tok.Token, ExpiresAt: tok.Exp, User: u}, nil
}

// Register creates a PLAYER account with a password of the user's choosing
// and signs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (Session, error) {
	first, last := strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName)
	email, phone := strings.TrimSpace(in.Email), strings.TrimSpace(in.Phone)
	if first == "" || last == "" || email == "" || phone == "" || in.Password == "" {
		return Session{}, validationErr("firstName, lastName, email, phone and password are required")
	}
	if !validEmail(email) {
		return Session{}, validationErr(MsgInvalidEmail)
	}
	if len(in.Password) < MinPasswordLength {
		return Session{}, validationErr(MsgPasswordTooShort)
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return Session{}, internalErr("hash password", err)
	}
	u := model.User{
		FirstName:    first,
		LastName:     last,
		Email:        email,
		PasswordHash: hash,
		Phone:        phone,
		Role:         model.RolePlayer,
		IsActive:     true,
	}
	if _, err := s.users.Create(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return Session{}, conflictErr(MsgEmailExists)
		}
		return Session{}, internalErr("insert user", err)
	}
	stored, err := s.users.GetByID(ctx, u.ID)
	if err != nil {
		return Session{}, internalErr("reload user", err)
	}
	return s.session(stored)
}

// Login checks credentials.  Unknown email and wrong password share one
// message; a disabled account is reported as such only after the password
// matched.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Session{}, validationErr("email and password are required")
	}
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return Session{}, unauthenticatedErr(MsgInvalidCredentials)
	}
	if err != nil {
		return Session{}, internalErr("load user", err)
	}
	if !s.hasher.Verify(u.PasswordHash, password) {
		return Session{}, unauthenticatedErr(MsgInvalidCredentials)
	}
	if !u.IsActive {
		return Session{}, forbiddenErr(MsgAccountDisabled)
	}
	return s.session(u)
}

// ChangePassword rotates the caller's own password and clears the
// must-change flag set on provisioned accounts.
func (s *AuthService) ChangePassword(ctx context.Context, u model.User, current, next string) error {
	if current == "" || next == "" {
		return validationErr("currentPassword and newPassword are required")
	}
	if len(next) < MinPasswordLength {
		return validationErr(MsgPasswordTooShort)
	}
	if current == next {
		return validationErr("new password must differ from the current one")
	}
	if !s.hasher.Verify(u.PasswordHash, current) {
		return validationErr("current password is incorrect")
	}
	hash, err := s.hasher.Hash(next)
	if err != nil {
		return internalErr("hash password", err)
	}
	if err := s.users.UpdatePassword(ctx, u.ID, hash, false); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return notFoundErr(MsgUserNotFound)
		}
		return internalErr("update password", err)
	}
	return nil
}

// ForgotPassword issues a single-use reset token and mails the link when
// the email belongs to an active account.  Callers answer with
// MsgForgotPasswordGeneric whatever happened here, so the only errors
// returned are for malformed input.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return validationErr("email is required")
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			log.Printf("auth: forgot-password lookup failed: %v", err)
		}
		return nil
	}
	if !u.IsActive {
		return nil
	}
	raw, err := s.secret()
	if err != nil {
		log.Printf("auth: reset secret: %v", err)
		return nil
	}
	exp := s.now().Add(s.cfg.ResetTTL)
	if err := s.resets.Store(ctx, u.ID, utils.HashToken(raw), exp); err != nil {
		log.Printf("auth: store reset token for user %d: %v", u.ID, err)
		return nil
	}
	if s.mailer == nil {
		return nil
	}
	link := strings.TrimRight(s.cfg.BaseURL, "/") + "/reset-password?token=" + raw
	err = s.mailer.Send(ctx, Mail{
		To:       u.Email,
		Template: TemplatePasswordReset,
		Subject:  "Reset your password",
		Data: map[string]string{
			"firstName": u.FirstName,
			"token":     raw,
			"link":      link,
			"expiresAt": exp.Format(time.RFC3339),
		},
	})
	if err != nil {
		log.Printf("auth: password_reset mail for user %d not queued: %v", u.ID, err)
	}
	return nil
}

// ResetPassword redeems raw.  The new hash, the used mark and the
// invalidation of the user's other outstanding tokens commit together.
func (s *AuthService) ResetPassword(ctx context.Context, raw, next string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" || next == "" {
		return validationErr("token and newPassword are required")
	}
	if len(next) < MinPasswordLength {
		return validationErr(MsgPasswordTooShort)
	}
	hash, err := s.hasher.Hash(next)
	if err != nil {
		return internalErr("hash password", err)
	}
	now := s.now()
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		resets := s.resets.WithTx(tx)
		t, err := resets.GetByHash(ctx, utils.HashToken(raw))
		if errors.Is(err, repository.ErrTokenNotFound) {
			return validationErr(MsgInvalidResetToken)
		}
		if err != nil {
			return internalErr("load reset token", err)
		}
		if !t.ValidAt(now) {
			return validationErr(MsgInvalidResetToken)
		}
		won, err := resets.MarkUsed(ctx, t.ID, now)
		if err != nil {
			return internalErr("mark token used", err)
		}
		if !won {
			return validationErr(MsgInvalidResetToken)
		}
		if err := s.users.WithTx(tx).UpdatePassword(ctx, t.UserID, hash, false); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return validationErr(MsgInvalidResetToken)
			}
			return internalErr("update password", err)
		}
		if err := resets.InvalidateForUser(ctx, t.UserID, now); err != nil {
			return internalErr("invalidate tokens", err)
		}
		return nil
	})
}
