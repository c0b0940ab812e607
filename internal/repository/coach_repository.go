package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/sports-complex/internal/database"
	"github.com/iliyamo/sports-complex/internal/model"
)

// CoachRepo maintains coach profiles and their sport and qualification
// links.  Name-based selections are resolved through the taxonomy
// repositories bound to the same querier, so a single transaction covers
// the upserts and the link rows.
type CoachRepo struct {
	db     database.Querier
	sports *TaxonomyRepo
	quals  *TaxonomyRepo
}

func NewCoachRepo(db database.Querier) *CoachRepo {
	return &CoachRepo{db: db, sports: NewSportRepo(db), quals: NewQualificationRepo(db)}
}

// WithTx returns a copy of the repository bound to q.
func (r *CoachRepo) WithTx(q database.Querier) *CoachRepo { return NewCoachRepo(q) }

// Create inserts a coach profile for userID and returns its id.
func (r *CoachRepo) Create(ctx context.Context, userID uint64) (uint64, error) {
	res, err := r.db.ExecContext(ctx, "INSERT INTO coaches (user_id) VALUES (?)", userID)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByUserID looks up the profile owned by userID.  ErrCoachNotFound when absent.
func (r *CoachRepo) GetByUserID(ctx context.Context, userID uint64) (model.Coach, error) {
	var c model.Coach
	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id FROM coaches WHERE user_id = ? LIMIT 1", userID).Scan(&c.ID, &c.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Coach{}, ErrCoachNotFound
	}
	return c, err
}

// ReplaceSports replaces the coach's sport links with sel, upserting
// names when sel is name-based.
func (r *CoachRepo) ReplaceSports(ctx context.Context, coachID uint64, sel model.Selection) error {
	ids, err := r.sports.Resolve(ctx, sel)
	if err != nil {
		return err
	}
	return replaceAssociations(ctx, r.db, coachSportsTable, coachID, ids)
}

// ReplaceQualifications is ReplaceSports for qualifications.
func (r *CoachRepo) ReplaceQualifications(ctx context.Context, coachID uint64, sel model.Selection) error {
	ids, err := r.quals.Resolve(ctx, sel)
	if err != nil {
		return err
	}
	return replaceAssociations(ctx, r.db, coachQualificationsTable, coachID, ids)
}

// DeleteByUserID removes the coach profile of userID together with all of
// its sport and qualification links.  It reports whether a profile existed.
func (r *CoachRepo) DeleteByUserID(ctx context.Context, userID uint64) (bool, error) {
	c, err := r.GetByUserID(ctx, userID)
	if errors.Is(err, ErrCoachNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := deleteAssociations(ctx, r.db, coachQualificationsTable, c.ID); err != nil {
		return false, err
	}
	if err := deleteAssociations(ctx, r.db, coachSportsTable, c.ID); err != nil {
		return false, err
	}
	if _, err := r.db.ExecContext(ctx, "DELETE FROM coaches WHERE id = ?", c.ID); err != nil {
		return false, err
	}
	return true, nil
}

// Details loads the coach profile of userID with its sports and qualifications.
func (r *CoachRepo) Details(ctx context.Context, userID uint64) (model.CoachDetails, error) {
	c, err := r.GetByUserID(ctx, userID)
	if err != nil {
		return model.CoachDetails{}, err
	}
	sports, err := r.sports.linked(ctx, coachSportsTable, c.ID)
	if err != nil {
		return model.CoachDetails{}, err
	}
	quals, err := r.quals.linked(ctx, coachQualificationsTable, c.ID)
	if err != nil {
		return model.CoachDetails{}, err
	}
	d := model.CoachDetails{Coach: c, Sports: make([]model.Sport, 0, len(sports)), Qualifications: make([]model.Qualification, 0, len(quals))}
	for _, e := range sports {
		d.Sports = append(d.Sports, e.Sport())
	}
	for _, e := range quals {
		d.Qualifications = append(d.Qualifications, e.Qualification())
	}
	return d, nil
}

// SportIDs returns the sport ids linked to coachID.
func (r *CoachRepo) SportIDs(ctx context.Context, coachID uint64) ([]uint64, error) {
	return linkedIDs(ctx, r.db, coachSportsTable, coachID)
}

// QualificationIDs returns the qualification ids linked to coachID.
func (r *CoachRepo) QualificationIDs(ctx context.Context, coachID uint64) ([]uint64, error) {
	return linkedIDs(ctx, r.db, coachQualificationsTable, coachID)
}
