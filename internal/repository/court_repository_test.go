package repository

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/sports-complex/internal/database"
	"github.com/iliyamo/sports-complex/internal/database/dbtest"
	"github.com/iliyamo/sports-complex/internal/model"
)

func seedSports(t *testing.T, db *sql.DB, names ...string) []uint64 {
	t.Helper()
	repo := NewSportRepo(db)
	ids := make([]uint64, 0, len(names))
	for _, n := range names {
		e, _, err := repo.UpsertByName(context.Background(), n)
		require.NoError(t, err)
		ids = append(ids, e.ID)
	}
	return ids
}

func TestReplaceCourtSports(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	ids := seedSports(t, db, "Tennis", "Padel", "Squash")
	repo := NewCourtRepo(db)
	c := &model.Court{Name: "Court 1", Capacity: 4, PricePerHour: 30, Status: model.CourtAvailable}
	require.NoError(t, repo.Create(ctx, c))
	require.NoError(t, repo.ReplaceSports(ctx, c.ID, ids[:2]))

	require.NoError(t, repo.ReplaceSports(ctx, c.ID, nil))
	got, err := repo.SportIDs(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, repo.ReplaceSports(ctx, c.ID, []uint64{ids[2]}))
	got, err = repo.SportIDs(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{ids[2]}, got)
}

func TestReplaceCourtSportsUnknownSport(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	repo := NewCourtRepo(db)
	c := &model.Court{Name: "Court 1", Capacity: 4, PricePerHour: 30, Status: model.CourtAvailable}
	require.NoError(t, repo.Create(ctx, c))
	assert.ErrorIs(t, repo.ReplaceSports(ctx, c.ID, []uint64{999}), ErrInvalidReference)
}

func TestCourtUpdatePartial(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	repo := NewCourtRepo(db)
	c := &model.Court{Name: "Court 1", Capacity: 4, PricePerHour: 30, Status: model.CourtAvailable}
	require.NoError(t, repo.Create(ctx, c))

	st := model.CourtMaintenance
	require.NoError(t, repo.Update(ctx, c.ID, CourtPatch{Status: &st}))
	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CourtMaintenance, got.Status)
	assert.Equal(t, "Court 1", got.Name)
	assert.Equal(t, 4, got.Capacity)
	assert.InDelta(t, 30.0, got.PricePerHour, 0.001)
}

func TestCourtListSearchAndSports(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	ids := seedSports(t, db, "Tennis", "Padel")
	repo := NewCourtRepo(db)
	older := &model.Court{Name: "Centre Court", Capacity: 4, PricePerHour: 30, Status: model.CourtAvailable}
	newer := &model.Court{Name: "Side court", Capacity: 2, PricePerHour: 15, Status: model.CourtBooked}
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))
	require.NoError(t, repo.ReplaceSports(ctx, older.ID, ids))

	got, err := repo.List(ctx, "COURT")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, newer.ID, got[0].ID, "newest first")
	assert.Equal(t, "", got[0].SportNames)
	assert.ElementsMatch(t, []string{"Tennis", "Padel"}, strings.Split(got[1].SportNames, ","))

	got, err = repo.List(ctx, "centre")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, older.ID, got[0].ID)
}

func TestCourtDeleteInUseKeepsLinks(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	ids := seedSports(t, db, "Tennis")
	repo := NewCourtRepo(db)
	c := &model.Court{Name: "Court 1", Capacity: 4, PricePerHour: 30, Status: model.CourtAvailable}
	require.NoError(t, repo.Create(ctx, c))
	require.NoError(t, repo.ReplaceSports(ctx, c.ID, ids))
	_, err := db.Exec("INSERT INTO blocked_slots (court_id, starts_at, ends_at) VALUES (?, '2026-01-01 10:00:00', '2026-01-01 11:00:00')", c.ID)
	require.NoError(t, err)

	err = database.WithTx(ctx, db, func(tx *sql.Tx) error {
		_, err := repo.WithTx(tx).Delete(ctx, c.ID)
		return err
	})
	assert.ErrorIs(t, err, ErrInUse)
	assert.Equal(t, 1, dbtest.Count(t, db, "court_sports WHERE court_id = ?", c.ID), "rolled back")
	assert.Equal(t, 1, dbtest.Count(t, db, "courts"))
}

func TestCourtDelete(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	repo := NewCourtRepo(db)
	c := &model.Court{Name: "Court 1", Capacity: 4, PricePerHour: 30, Status: model.CourtAvailable}
	require.NoError(t, repo.Create(ctx, c))

	ok, err := repo.Delete(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.Delete(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = repo.GetByID(ctx, c.ID)
	assert.ErrorIs(t, err, ErrCourtNotFound)
}
