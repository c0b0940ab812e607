package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/sports-complex/internal/database/dbtest"
	"github.com/iliyamo/sports-complex/internal/model"
)

func newUser(email string, role model.Role) *model.User {
	return &model.User{FirstName: "Ann", LastName: "Lee", Email: email, PasswordHash: "x", Phone: "555", Role: role, IsActive: true}
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewUserRepo(db)
	ctx := context.Background()
	_, err := repo.Create(ctx, newUser("ann@example.com", model.RolePlayer))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newUser("ann@example.com", model.RoleStaff))
	assert.ErrorIs(t, err, ErrEmailExists)

	// stored emails compare exactly
	_, err = repo.Create(ctx, newUser("Ann@example.com", model.RoleStaff))
	assert.NoError(t, err)
}

func TestUserEmailTakenExcludesSelf(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewUserRepo(db)
	ctx := context.Background()
	id, err := repo.Create(ctx, newUser("ann@example.com", model.RolePlayer))
	require.NoError(t, err)

	taken, err := repo.EmailTaken(ctx, "ann@example.com", id)
	require.NoError(t, err)
	assert.False(t, taken)
	taken, err = repo.EmailTaken(ctx, "ann@example.com", 0)
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestUserGetIncludesCoachID(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	users := NewUserRepo(db)
	id, err := users.Create(ctx, newUser("coach@example.com", model.RoleCoach))
	require.NoError(t, err)
	coachID, err := NewCoachRepo(db).Create(ctx, id)
	require.NoError(t, err)

	u, err := users.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, u.CoachID)
	assert.Equal(t, coachID, *u.CoachID)
	assert.Equal(t, model.RoleCoach, u.Role)
	assert.True(t, u.IsActive)
	assert.WithinDuration(t, time.Now(), u.CreatedAt, 24*time.Hour)

	_, err = users.GetByID(ctx, id+100)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCountActiveByRole(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	users := NewUserRepo(db)
	a, err := users.Create(ctx, newUser("a@example.com", model.RoleSuperAdmin))
	require.NoError(t, err)
	_, err = users.Create(ctx, newUser("b@example.com", model.RoleSuperAdmin))
	require.NoError(t, err)

	n, err := users.CountActiveByRole(ctx, model.RoleSuperAdmin)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, users.SetActive(ctx, a, false))
	n, err = users.CountActiveByRole(ctx, model.RoleSuperAdmin)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
