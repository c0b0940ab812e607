package service

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strings"

	"github.com/iliyamo/sports-complex/internal/database"
	"github.com/iliyamo/sports-complex/internal/model"
	"github.com/iliyamo/sports-complex/internal/repository"
	"github.com/iliyamo/sports-complex/internal/utils"
)

// UserInput is the payload of an administrator create or update.  Sports
// and Qualifications only matter when Role is COACH.
type UserInput struct {
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	Role           string
	Sports         model.Selection
	Qualifications model.Selection
}

// CreateUserResult is returned once; TempPassword is never stored in plain text.
type CreateUserResult struct {
	UserID       uint64     `json:"userId"`
	Role         model.Role `json:"role"`
	Email        string     `json:"email"`
	CoachID      *uint64    `json:"coachId,omitempty"`
	TempPassword string     `json:"temporaryPassword"`
}

// UserDetails is a user with its coach profile, when it has one.
type UserDetails struct {
	model.User
	Coach *model.CoachDetails `json:"coach,omitempty"`
}

// UserService provisions accounts.  Multi-table writes (user plus coach
// profile plus links) run in one transaction.
type UserService struct {
	db           *sql.DB
	users        *repository.UserRepo
	coaches      *repository.CoachRepo
	hasher       Hasher
	mailer       Mailer
	purger       Purger
	tempPassword func() (string, error)
}

// NewUserService wires the provisioning service.  mailer and purger may be nil.
func NewUserService(db *sql.DB, hasher Hasher, mailer Mailer, purger Purger) *UserService {
	if purger == nil {
		purger = nopPurger{}
	}
	return &UserService{
		db:           db,
		users:        repository.NewUserRepo(db),
		coaches:      repository.NewCoachRepo(db),
		hasher:       hasher,
		mailer:       mailer,
		purger:       purger,
		tempPassword: utils.GenerateTempPassword,
	}
}

type normalizedUser struct {
	first, last, email, phone string
	role                      model.Role
}

// validateUserInput applies the ordered create/update rules and stops at
// the first failure: required fields, email shape, role policy, coach data.
// Keeping current, the target's existing role on update, is not an
// assignment; pass "" on create.
func validateUserInput(actor model.Role, in UserInput, current model.Role) (normalizedUser, error) {
	n := normalizedUser{
		first: strings.TrimSpace(in.FirstName),
		last:  strings.TrimSpace(in.LastName),
		email: strings.TrimSpace(in.Email),
		phone: strings.TrimSpace(in.Phone),
	}
	rawRole := strings.TrimSpace(in.Role)
	if n.first == "" || n.last == "" || n.email == "" || n.phone == "" || rawRole == "" {
		return n, validationErr(MsgMissingFields)
	}
	if !validEmail(n.email) {
		return n, validationErr(MsgInvalidEmail)
	}
	role, ok := model.ParseRole(rawRole)
	if !ok {
		return n, validationErr("invalid role")
	}
	if role != current && !model.Allowed(actor, model.OpAssignRole, role) {
		return n, forbiddenErr("you are not allowed to assign role " + string(role))
	}
	n.role = role
	if role == model.RoleCoach {
		if in.Sports.Empty() {
			return n, validationErr(MsgSpecializationRequired)
		}
		if in.Qualifications.Empty() {
			return n, validationErr(MsgQualificationRequired)
		}
	}
	return n, nil
}

func validEmail(email string) bool {
	return strings.Contains(email, "@") && strings.Contains(email, ".")
}

// assocErr turns a link-table failure into a client error when the caller
// named a sport or qualification id that does not exist.
func assocErr(op string, err error) error {
	if errors.Is(err, repository.ErrInvalidReference) {
		return validationErr("unknown sport or qualification id")
	}
	return internalErr(op, err)
}

// Create provisions a new account with a generated temporary password.
// COACH accounts get a coach profile and their sport and qualification
// links in the same transaction.
func (s *UserService) Create(ctx context.Context, actor model.Role, in UserInput) (CreateUserResult, error) {
	n, err := validateUserInput(actor, in, "")
	if err != nil {
		return CreateUserResult{}, err
	}
	taken, err := s.users.EmailTaken(ctx, n.email, 0)
	if err != nil {
		return CreateUserResult{}, internalErr("check email", err)
	}
	if taken {
		return CreateUserResult{}, conflictErr(MsgEmailExists)
	}

	temp, err := s.tempPassword()
	if err != nil {
		return CreateUserResult{}, internalErr("generate password", err)
	}
	hash, err := s.hasher.Hash(temp)
	if err != nil {
		return CreateUserResult{}, internalErr("hash password", err)
	}

	u := model.User{
		FirstName:          n.first,
		LastName:           n.last,
		Email:              n.email,
		PasswordHash:       hash,
		Phone:              n.phone,
		Role:               n.role,
		IsActive:           true,
		MustChangePassword: true,
	}
	res := CreateUserResult{Role: n.role, Email: n.email, TempPassword: temp}

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		id, err := s.users.WithTx(tx).Create(ctx, &u)
		if err != nil {
			if errors.Is(err, repository.ErrEmailExists) {
				return conflictErr(MsgEmailExists)
			}
			return internalErr("insert user", err)
		}
		res.UserID = id
		if n.role != model.RoleCoach {
			return nil
		}
		coaches := s.coaches.WithTx(tx)
		coachID, err := coaches.Create(ctx, id)
		if err != nil {
			return internalErr("insert coach", err)
		}
		res.CoachID = &coachID
		if err := coaches.ReplaceSports(ctx, coachID, in.Sports); err != nil {
			return assocErr("link sports", err)
		}
		if err := coaches.ReplaceQualifications(ctx, coachID, in.Qualifications); err != nil {
			return assocErr("link qualifications", err)
		}
		return nil
	})
	if err != nil {
		return CreateUserResult{}, err
	}
	if n.role == model.RoleCoach && (in.Sports.IsByNames() || in.Qualifications.IsByNames()) {
		s.purger.Purge(ctx)
	}
	s.notifyCreated(ctx, u)
	return res, nil
}

func (s *UserService) notifyCreated(ctx context.Context, u model.User) {
	if s.mailer == nil {
		return
	}
	err := s.mailer.Send(ctx, Mail{
		To:       u.Email,
		Template: TemplateAccountCreated,
		Subject:  "Your sports complex account",
		Data:     map[string]string{"firstName": u.FirstName, "role": string(u.Role)},
	})
	if err != nil {
		log.Printf("users: account_created mail for user %d not queued: %v", u.ID, err)
	}
}

// Update edits profile fields and role.  Role transitions keep the coach
// profile consistent:
//
//	COACH -> COACH       links replaced
//	other -> COACH       profile created, links set
//	COACH -> other       profile and links deleted
//	other -> other       nothing else
//
// The target is loaded before the payload is checked, so an unknown id is
// a 404 whatever the body.  Demoting the last active SUPER_ADMIN fails.
func (s *UserService) Update(ctx context.Context, actor model.Role, targetID uint64, in UserInput) (model.User, error) {
	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.User{}, notFoundErr(MsgUserNotFound)
		}
		return model.User{}, internalErr("load user", err)
	}
	if !model.Allowed(actor, model.OpModifyUser, target.Role) {
		return model.User{}, forbiddenErr("you are not allowed to modify this user")
	}
	n, err := validateUserInput(actor, in, target.Role)
	if err != nil {
		return model.User{}, err
	}
	if n.role != target.Role && target.IsActive {
		if err := s.guardLastSuperAdmin(ctx, target); err != nil {
			return model.User{}, err
		}
	}
	taken, err := s.users.EmailTaken(ctx, n.email, targetID)
	if err != nil {
		return model.User{}, internalErr("check email", err)
	}
	if taken {
		return model.User{}, conflictErr(MsgEmailExists)
	}

	wasCoach := target.Role == model.RoleCoach
	isCoach := n.role == model.RoleCoach
	updated := target
	updated.FirstName, updated.LastName, updated.Email, updated.Phone, updated.Role = n.first, n.last, n.email, n.phone, n.role

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.users.WithTx(tx).UpdateProfile(ctx, updated); err != nil {
			switch {
			case errors.Is(err, repository.ErrEmailExists):
				return conflictErr(MsgEmailExists)
			case errors.Is(err, repository.ErrUserNotFound):
				return notFoundErr(MsgUserNotFound)
			}
			return internalErr("update user", err)
		}
		coaches := s.coaches.WithTx(tx)
		switch {
		case wasCoach && isCoach:
			c, err := coaches.GetByUserID(ctx, targetID)
			if errors.Is(err, repository.ErrCoachNotFound) {
				// profile went missing; recreate it rather than fail the edit
				id, cerr := coaches.Create(ctx, targetID)
				if cerr != nil {
					return internalErr("insert coach", cerr)
				}
				c, err = model.Coach{ID: id, UserID: targetID}, nil
			}
			if err != nil {
				return internalErr("load coach", err)
			}
			return s.applyCoachLinks(ctx, coaches, c.ID, in)
		case !wasCoach && isCoach:
			id, err := coaches.Create(ctx, targetID)
			if err != nil {
				return internalErr("insert coach", err)
			}
			return s.applyCoachLinks(ctx, coaches, id, in)
		case wasCoach && !isCoach:
			if _, err := coaches.DeleteByUserID(ctx, targetID); err != nil {
				return internalErr("delete coach", err)
			}
		}
		return nil
	})
	if err != nil {
		return model.User{}, err
	}
	if isCoach && (in.Sports.IsByNames() || in.Qualifications.IsByNames()) {
		s.purger.Purge(ctx)
	}
	out, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return model.User{}, internalErr("reload user", err)
	}
	return out, nil
}

func (s *UserService) applyCoachLinks(ctx context.Context, coaches *repository.CoachRepo, coachID uint64, in UserInput) error {
	if err := coaches.ReplaceSports(ctx, coachID, in.Sports); err != nil {
		return assocErr("link sports", err)
	}
	if err := coaches.ReplaceQualifications(ctx, coachID, in.Qualifications); err != nil {
		return assocErr("link qualifications", err)
	}
	return nil
}

// loadTarget fetches the account an administrative action is aimed at.
func (s *UserService) loadTarget(ctx context.Context, id uint64) (model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.User{}, notFoundErr(MsgUserNotFound)
		}
		return model.User{}, internalErr("load user", err)
	}
	return u, nil
}

// guardLastSuperAdmin rejects removing target when it is a SUPER_ADMIN and
// at most one active SUPER_ADMIN exists.
func (s *UserService) guardLastSuperAdmin(ctx context.Context, target model.User) error {
	if target.Role != model.RoleSuperAdmin {
		return nil
	}
	n, err := s.users.CountActiveByRole(ctx, model.RoleSuperAdmin)
	if err != nil {
		return internalErr("count super admins", err)
	}
	if n <= 1 {
		return validationErr(MsgLastSuperAdmin)
	}
	return nil
}

// Disable deactivates targetID.  Actors cannot disable themselves; admins
// may only target STAFF, COACH and PLAYER; the last active SUPER_ADMIN
// stays active.
func (s *UserService) Disable(ctx context.Context, actor model.User, targetID uint64) error {
	target, err := s.loadTarget(ctx, targetID)
	if err != nil {
		return err
	}
	if actor.ID == target.ID {
		return validationErr("you cannot disable your own account")
	}
	if !model.Allowed(actor.Role, model.OpToggleActive, target.Role) {
		return forbiddenErr("you are not allowed to disable this user")
	}
	if err := s.guardLastSuperAdmin(ctx, target); err != nil {
		return err
	}
	if err := s.users.SetActive(ctx, targetID, false); err != nil {
		return internalErr("disable user", err)
	}
	return nil
}

// Enable reactivates targetID under the same role policy as Disable.
func (s *UserService) Enable(ctx context.Context, actor model.User, targetID uint64) error {
	target, err := s.loadTarget(ctx, targetID)
	if err != nil {
		return err
	}
	if !model.Allowed(actor.Role, model.OpToggleActive, target.Role) {
		return forbiddenErr("you are not allowed to enable this user")
	}
	if err := s.users.SetActive(ctx, targetID, true); err != nil {
		return internalErr("enable user", err)
	}
	return nil
}

// Delete hard-deletes targetID and, for coaches, the coach profile with
// every sport and qualification link.
func (s *UserService) Delete(ctx context.Context, actorID, targetID uint64) error {
	target, err := s.loadTarget(ctx, targetID)
	if err != nil {
		return err
	}
	if actorID == target.ID {
		return validationErr("you cannot delete your own account")
	}
	if err := s.guardLastSuperAdmin(ctx, target); err != nil {
		return err
	}
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := s.coaches.WithTx(tx).DeleteByUserID(ctx, targetID); err != nil {
			return internalErr("delete coach", err)
		}
		ok, err := s.users.WithTx(tx).Delete(ctx, targetID)
		if err != nil {
			return internalErr("delete user", err)
		}
		if !ok {
			return notFoundErr(MsgUserNotFound)
		}
		return nil
	})
}

// List returns every account, newest first.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, internalErr("list users", err)
	}
	return users, nil
}

// Get returns one account with its coach profile, if any.
func (s *UserService) Get(ctx context.Context, id uint64) (UserDetails, error) {
	u, err := s.loadTarget(ctx, id)
	if err != nil {
		return UserDetails{}, err
	}
	d := UserDetails{User: u}
	if u.CoachID == nil {
		return d, nil
	}
	cd, err := s.coaches.Details(ctx, id)
	if err != nil {
		return UserDetails{}, internalErr("load coach", err)
	}
	d.Coach = &cd
	return d, nil
}
