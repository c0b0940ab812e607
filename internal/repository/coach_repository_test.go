package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/sports-complex/internal/database/dbtest"
	"github.com/iliyamo/sports-complex/internal/model"
)

func TestCoachReplaceByNamesUpserts(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	uid, err := NewUserRepo(db).Create(ctx, newUser("c@example.com", model.RoleCoach))
	require.NoError(t, err)
	coaches := NewCoachRepo(db)
	cid, err := coaches.Create(ctx, uid)
	require.NoError(t, err)

	seedSports(t, db, "Tennis")
	require.NoError(t, coaches.ReplaceSports(ctx, cid, model.ByNames([]string{"Tennis", "Padel", "Tennis"})))
	require.NoError(t, coaches.ReplaceQualifications(ctx, cid, model.ByNames([]string{"Level 1"})))

	assert.Equal(t, 2, dbtest.Count(t, db, "sports"), "Tennis reused, Padel created")
	assert.Equal(t, 2, dbtest.Count(t, db, "coach_sports WHERE coach_id = ?", cid))
	assert.Equal(t, 1, dbtest.Count(t, db, "qualifications WHERE name = 'Level 1'"))

	d, err := coaches.Details(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, cid, d.ID)
	require.Len(t, d.Sports, 2)
	assert.Equal(t, "Padel", d.Sports[0].Name)
	require.Len(t, d.Qualifications, 1)
	assert.Equal(t, "Level 1", d.Qualifications[0].Name)
}

func TestCoachDeleteByUserIDRemovesLinks(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	uid, err := NewUserRepo(db).Create(ctx, newUser("c@example.com", model.RoleCoach))
	require.NoError(t, err)
	coaches := NewCoachRepo(db)
	cid, err := coaches.Create(ctx, uid)
	require.NoError(t, err)
	require.NoError(t, coaches.ReplaceSports(ctx, cid, model.ByNames([]string{"Tennis"})))
	require.NoError(t, coaches.ReplaceQualifications(ctx, cid, model.ByNames([]string{"Level 1"})))

	ok, err := coaches.DeleteByUserID(ctx, uid)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, dbtest.Count(t, db, "coach_sports"))
	assert.Equal(t, 0, dbtest.Count(t, db, "coach_qualifications"))
	_, err = coaches.GetByUserID(ctx, uid)
	assert.ErrorIs(t, err, ErrCoachNotFound)

	ok, err = coaches.DeleteByUserID(ctx, uid)
	require.NoError(t, err)
	assert.False(t, ok)
}
