package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/sports-complex/internal/database/dbtest"
	"github.com/iliyamo/sports-complex/internal/model"
)

func TestUpsertByNameIsIdempotent(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewSportRepo(db)
	ctx := context.Background()

	first, ok, err := repo.UpsertByName(ctx, "  Padel ")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Padel", first.Name)

	second, ok, err := repo.UpsertByName(ctx, "Padel")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, dbtest.Count(t, db, "sports WHERE name = ?", "Padel"))
}

func TestUpsertByNameEmptyIsNoop(t *testing.T) {
	db := dbtest.Open(t)
	_, ok, err := NewQualificationRepo(db).UpsertByName(context.Background(), "   ")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, dbtest.Count(t, db, "qualifications"))
}

func TestUpsertByNameConcurrent(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewQualificationRepo(db)

	const n = 8
	ids := make([]uint64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e, _, err := repo.UpsertByName(context.Background(), "Level 1")
			assert.NoError(t, err)
			ids[i] = e.ID
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, dbtest.Count(t, db, "qualifications"))
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestTaxonomyListSearchAndActiveFilter(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewSportRepo(db)
	ctx := context.Background()
	for _, n := range []string{"Tennis", "Table Tennis", "Squash", "Badminton"} {
		_, _, err := repo.UpsertByName(ctx, n)
		require.NoError(t, err)
	}
	_, err := db.Exec("UPDATE sports SET is_active = 0 WHERE name = 'Squash'")
	require.NoError(t, err)

	got, err := repo.List(ctx, "TENN")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Table Tennis", got[0].Name)
	assert.Equal(t, "Tennis", got[1].Name)

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3, "inactive sport hidden")
}

func TestTaxonomyListIsCapped(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewQualificationRepo(db)
	for i := 0; i < ListLimit+5; i++ {
		_, err := db.Exec("INSERT INTO qualifications (name) VALUES (?)", "Q"+string(rune('A'+i/26))+string(rune('a'+i%26)))
		require.NoError(t, err)
	}
	got, err := repo.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, got, ListLimit)
}

func TestSportDelete(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	sports := NewSportRepo(db)
	free, _, err := sports.UpsertByName(ctx, "Futsal")
	require.NoError(t, err)
	used, _, err := sports.UpsertByName(ctx, "Volleyball")
	require.NoError(t, err)

	court := &model.Court{Name: "Hall A", Capacity: 10, PricePerHour: 20, Status: model.CourtAvailable}
	courts := NewCourtRepo(db)
	require.NoError(t, courts.Create(ctx, court))
	require.NoError(t, courts.ReplaceSports(ctx, court.ID, []uint64{used.ID}))

	assert.ErrorIs(t, sports.Delete(ctx, used.ID), ErrInUse)
	assert.NoError(t, sports.Delete(ctx, free.ID))
	assert.ErrorIs(t, sports.Delete(ctx, free.ID), ErrEntryNotFound)
}

func TestResolveSelection(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewSportRepo(db)
	ctx := context.Background()

	ids, err := repo.Resolve(ctx, model.ByIDs([]int64{3, 3, -1, 0, 9}))
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 9}, ids)

	ids, err = repo.Resolve(ctx, model.ByNames([]string{"Golf", " Golf", "", "Rugby"}))
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Equal(t, 2, dbtest.Count(t, db, "sports"))
}
