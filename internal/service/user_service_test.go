package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/sports-complex/internal/database/dbtest"
	"github.com/iliyamo/sports-complex/internal/model"
	"github.com/iliyamo/sports-complex/internal/repository"
)

func playerInput(email string) UserInput {
	return UserInput{FirstName: "Ana", LastName: "Diaz", Email: email, Phone: "555-0101", Role: "PLAYER"}
}

func TestCreateUserNonCoachHasNoProfile(t *testing.T) {
	db := dbtest.Open(t)
	mailer := &fakeMailer{}
	svc := NewUserService(db, testHasher, mailer, nil)
	ctx := context.Background()

	for i, role := range []string{"ADMIN", "STAFF", "PLAYER"} {
		in := playerInput(string(rune('a'+i)) + "@example.com")
		in.Role = role
		res, err := svc.Create(ctx, model.RoleSuperAdmin, in)
		require.NoError(t, err)
		assert.Nil(t, res.CoachID)
		assert.Len(t, res.TempPassword, 12)

		u, err := repository.NewUserRepo(db).GetByID(ctx, res.UserID)
		require.NoError(t, err)
		assert.True(t, u.MustChangePassword)
		assert.True(t, testHasher.Verify(u.PasswordHash, res.TempPassword))
	}
	assert.Equal(t, 0, dbtest.Count(t, db, "coaches"))

	m := mailer.last(t)
	assert.Equal(t, TemplateAccountCreated, m.Template)
	assert.NotContains(t, m.Data, "password")
}

func TestCreateUserValidationOrder(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewUserService(db, testHasher, nil, nil)
	ctx := context.Background()
	seedUser(t, db, "taken@example.com", model.RolePlayer)

	cases := []struct {
		name  string
		actor model.Role
		in    UserInput
		kind  Kind
		msg   string
	}{
		{"missing phone", model.RoleAdmin, UserInput{FirstName: "A", LastName: "B", Email: "bad", Role: "ADMIN"}, KindValidation, MsgMissingFields},
		{"bad email before role", model.RoleAdmin, UserInput{FirstName: "A", LastName: "B", Email: "bad", Phone: "1", Role: "ADMIN"}, KindValidation, MsgInvalidEmail},
		{"admin cannot assign admin", model.RoleAdmin, UserInput{FirstName: "A", LastName: "B", Email: "a@b.c", Phone: "1", Role: "ADMIN"}, KindForbidden, ""},
		{"nobody assigns super admin", model.RoleSuperAdmin, UserInput{FirstName: "A", LastName: "B", Email: "a@b.c", Phone: "1", Role: "SUPER_ADMIN"}, KindForbidden, ""},
		{"unknown role", model.RoleSuperAdmin, UserInput{FirstName: "A", LastName: "B", Email: "a@b.c", Phone: "1", Role: "JANITOR"}, KindValidation, ""},
		{"coach without sports", model.RoleAdmin, UserInput{FirstName: "A", LastName: "B", Email: "taken@example.com", Phone: "1", Role: "COACH",
			Qualifications: model.ByNames([]string{"Level 1"})}, KindValidation, MsgSpecializationRequired},
		{"coach without qualifications", model.RoleAdmin, UserInput{FirstName: "A", LastName: "B", Email: "taken@example.com", Phone: "1", Role: "COACH",
			Sports: model.ByNames([]string{"Tennis"})}, KindValidation, MsgQualificationRequired},
		{"duplicate email last", model.RoleAdmin, playerInput("taken@example.com"), KindConflict, MsgEmailExists},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.actor, tc.in)
			requireKind(t, tc.kind, err)
			if tc.msg != "" {
				var se *Error
				require.ErrorAs(t, err, &se)
				assert.Equal(t, tc.msg, se.Message)
			}
		})
	}
	assert.Equal(t, 1, dbtest.Count(t, db, "users"), "failed creates write nothing")
	assert.Equal(t, 0, dbtest.Count(t, db, "sports"))
}

func TestCreateCoachByIDsAndNames(t *testing.T) {
	db := dbtest.Open(t)
	purger := &countingPurger{}
	svc := NewUserService(db, testHasher, nil, purger)
	ctx := context.Background()
	s1 := seedSport(t, db, "Tennis")
	s2 := seedSport(t, db, "Squash")

	in := playerInput("coach@example.com")
	in.Role = "COACH"
	in.Sports = model.NewSelection([]int64{int64(s1), int64(s2), int64(s1), 0}, []string{"Ignored"})
	in.Qualifications = model.NewSelection(nil, []string{"Level 1", " Level 1 "})
	res, err := svc.Create(ctx, model.RoleAdmin, in)
	require.NoError(t, err)
	require.NotNil(t, res.CoachID)

	assert.Equal(t, 2, dbtest.Count(t, db, "coach_sports WHERE coach_id = ?", *res.CoachID))
	assert.Equal(t, 1, dbtest.Count(t, db, "coach_qualifications WHERE coach_id = ?", *res.CoachID))
	assert.Equal(t, 1, dbtest.Count(t, db, "qualifications WHERE name = 'Level 1'"))
	assert.Equal(t, 0, dbtest.Count(t, db, "sports WHERE name = 'Ignored'"), "ids take precedence over names")
	assert.EqualValues(t, 1, purger.n.Load())

	d, err := svc.Get(ctx, res.UserID)
	require.NoError(t, err)
	require.NotNil(t, d.Coach)
	assert.Len(t, d.Coach.Sports, 2)
}

func TestCreateCoachUnknownSportRollsBack(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewUserService(db, testHasher, nil, nil)
	in := playerInput("coach@example.com")
	in.Role = "COACH"
	in.Sports = model.ByIDs([]int64{404})
	in.Qualifications = model.ByNames([]string{"Level 1"})

	_, err := svc.Create(context.Background(), model.RoleSuperAdmin, in)
	requireKind(t, KindValidation, err)
	assert.Equal(t, 0, dbtest.Count(t, db, "users"))
	assert.Equal(t, 0, dbtest.Count(t, db, "coaches"))
	assert.Equal(t, 0, dbtest.Count(t, db, "qualifications"))
}

func TestUpdateRoleTransitions(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewUserService(db, testHasher, nil, nil)
	ctx := context.Background()
	tennis := seedSport(t, db, "Tennis")
	padel := seedSport(t, db, "Padel")

	in := playerInput("p@example.com")
	res, err := svc.Create(ctx, model.RoleAdmin, in)
	require.NoError(t, err)

	// PLAYER -> COACH
	in.Role = "COACH"
	in.Sports = model.ByIDs([]int64{int64(tennis)})
	in.Qualifications = model.ByNames([]string{"Level 1"})
	u, err := svc.Update(ctx, model.RoleAdmin, res.UserID, in)
	require.NoError(t, err)
	require.NotNil(t, u.CoachID)
	coachID := *u.CoachID

	// COACH -> COACH replaces links
	in.Sports = model.ByIDs([]int64{int64(padel)})
	_, err = svc.Update(ctx, model.RoleAdmin, res.UserID, in)
	require.NoError(t, err)
	assert.Equal(t, 1, dbtest.Count(t, db, "coach_sports WHERE coach_id = ? AND sport_id = ?", coachID, padel))
	assert.Equal(t, 1, dbtest.Count(t, db, "coach_sports WHERE coach_id = ?", coachID))

	// COACH -> PLAYER removes profile and links
	in.Role = "PLAYER"
	u, err = svc.Update(ctx, model.RoleAdmin, res.UserID, in)
	require.NoError(t, err)
	assert.Nil(t, u.CoachID)
	assert.Equal(t, 0, dbtest.Count(t, db, "coaches"))
	assert.Equal(t, 0, dbtest.Count(t, db, "coach_sports"))
	assert.Equal(t, 0, dbtest.Count(t, db, "coach_qualifications"))
	_, err = repository.NewCoachRepo(db).GetByUserID(ctx, res.UserID)
	assert.ErrorIs(t, err, repository.ErrCoachNotFound)
}

func TestUpdateUserRules(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewUserService(db, testHasher, nil, nil)
	ctx := context.Background()
	admin := seedUser(t, db, "admin@example.com", model.RoleAdmin)
	player := seedUser(t, db, "player@example.com", model.RolePlayer)
	seedUser(t, db, "other@example.com", model.RolePlayer)

	_, err := svc.Update(ctx, model.RoleAdmin, 9999, playerInput("x@example.com"))
	requireKind(t, KindNotFound, err)
	// an unknown id wins over a bad body
	_, err = svc.Update(ctx, model.RoleAdmin, 9999, UserInput{Role: "PLAYER"})
	requireKind(t, KindNotFound, err)

	in := playerInput("admin2@example.com")
	in.Role = "STAFF"
	_, err = svc.Update(ctx, model.RoleAdmin, admin.ID, in)
	requireKind(t, KindForbidden, err)

	_, err = svc.Update(ctx, model.RoleAdmin, player.ID, playerInput("other@example.com"))
	requireKind(t, KindConflict, err)

	// keeping one's own email is not a conflict
	u, err := svc.Update(ctx, model.RoleAdmin, player.ID, playerInput("player@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "Ana", u.FirstName)
}

func TestDisableLastSuperAdmin(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewUserService(db, testHasher, nil, nil)
	users := repository.NewUserRepo(db)
	ctx := context.Background()
	root := seedUser(t, db, "root@example.com", model.RoleSuperAdmin)
	other := seedUser(t, db, "root2@example.com", model.RoleSuperAdmin)

	err := svc.Disable(ctx, root, root.ID)
	requireKind(t, KindValidation, err)

	require.NoError(t, svc.Disable(ctx, root, other.ID))
	n, err := users.CountActiveByRole(ctx, model.RoleSuperAdmin)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// root is now the only active one; a re-enabled peer may not disable it
	require.NoError(t, svc.Enable(ctx, root, other.ID))
	require.NoError(t, svc.Disable(ctx, other, root.ID))
	err = svc.Disable(ctx, root, other.ID)
	requireKind(t, KindValidation, err)
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, MsgLastSuperAdmin, se.Message)
}

func TestUpdateLastSuperAdmin(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewUserService(db, testHasher, nil, nil)
	users := repository.NewUserRepo(db)
	ctx := context.Background()
	root := seedUser(t, db, "root@example.com", model.RoleSuperAdmin)

	demote := playerInput("root@example.com")
	demote.Role = "ADMIN"
	_, err := svc.Update(ctx, model.RoleSuperAdmin, root.ID, demote)
	requireKind(t, KindValidation, err)
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, MsgLastSuperAdmin, se.Message)
	n, err := users.CountActiveByRole(ctx, model.RoleSuperAdmin)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// keeping the role is a profile edit, not an assignment
	keep := playerInput("root@example.com")
	keep.Role = "SUPER_ADMIN"
	keep.FirstName = "Renamed"
	u, err := svc.Update(ctx, model.RoleSuperAdmin, root.ID, keep)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", u.FirstName)
	assert.Equal(t, model.RoleSuperAdmin, u.Role)

	// with a second active SUPER_ADMIN the demotion goes through
	seedUser(t, db, "root2@example.com", model.RoleSuperAdmin)
	u, err = svc.Update(ctx, model.RoleSuperAdmin, root.ID, demote)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, u.Role)

	// promotion to SUPER_ADMIN is still never granted
	_, err = svc.Update(ctx, model.RoleSuperAdmin, root.ID, keep)
	requireKind(t, KindForbidden, err)
}

func TestDisableEnablePolicy(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewUserService(db, testHasher, nil, nil)
	ctx := context.Background()
	admin := seedUser(t, db, "admin@example.com", model.RoleAdmin)
	peer := seedUser(t, db, "peer@example.com", model.RoleAdmin)
	coach := seedUser(t, db, "coach@example.com", model.RoleCoach)

	requireKind(t, KindForbidden, svc.Disable(ctx, admin, peer.ID))
	requireKind(t, KindForbidden, svc.Enable(ctx, admin, peer.ID))
	requireKind(t, KindNotFound, svc.Disable(ctx, admin, 9999))

	require.NoError(t, svc.Disable(ctx, admin, coach.ID))
	u, err := repository.NewUserRepo(db).GetByID(ctx, coach.ID)
	require.NoError(t, err)
	assert.False(t, u.IsActive)
	require.NoError(t, svc.Enable(ctx, admin, coach.ID))
}

func TestDeleteUser(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewUserService(db, testHasher, nil, nil)
	ctx := context.Background()
	root := seedUser(t, db, "root@example.com", model.RoleSuperAdmin)
	seedSport(t, db, "Tennis")

	requireKind(t, KindValidation, svc.Delete(ctx, root.ID, root.ID))
	requireKind(t, KindNotFound, svc.Delete(ctx, root.ID, 9999))

	in := playerInput("coach@example.com")
	in.Role = "COACH"
	in.Sports = model.ByNames([]string{"Tennis"})
	in.Qualifications = model.ByNames([]string{"Level 1"})
	res, err := svc.Create(ctx, model.RoleSuperAdmin, in)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, root.ID, res.UserID))
	assert.Equal(t, 0, dbtest.Count(t, db, "users WHERE id = ?", res.UserID))
	assert.Equal(t, 0, dbtest.Count(t, db, "coaches"))
	// hard delete cascades to both link tables
	assert.Equal(t, 0, dbtest.Count(t, db, "coach_sports"))
	assert.Equal(t, 0, dbtest.Count(t, db, "coach_qualifications"))
	assert.Equal(t, 1, dbtest.Count(t, db, "sports"), "taxonomy rows stay")
}

func TestDeleteLastSuperAdminRejected(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewUserService(db, testHasher, nil, nil)
	ctx := context.Background()
	root := seedUser(t, db, "root@example.com", model.RoleSuperAdmin)
	admin := seedUser(t, db, "admin@example.com", model.RoleAdmin)

	requireKind(t, KindValidation, svc.Delete(ctx, admin.ID, root.ID))
	assert.Equal(t, 1, dbtest.Count(t, db, "users WHERE id = ?", root.ID))
}

func TestListUsersNewestFirst(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewUserService(db, testHasher, nil, nil)
	first := seedUser(t, db, "a@example.com", model.RolePlayer)
	second := seedUser(t, db, "b@example.com", model.RolePlayer)

	users, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, second.ID, users[0].ID)
	assert.Equal(t, first.ID, users[1].ID)
}
