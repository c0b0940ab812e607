// Package repository contains data access logic separated from HTTP handlers.
// This file holds court inventory queries and the court-to-sport links.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/sports-complex/internal/database"
	"github.com/iliyamo/sports-complex/internal/model"
)

// CourtPatch lists the columns an update may change.  Nil fields are left
// untouched.
type CourtPatch struct {
	Name         *string
	Capacity     *int
	PricePerHour *float64
	Status       *model.CourtStatus
}

// Empty reports whether no column is set.
func (p CourtPatch) Empty() bool {
	return p.Name == nil && p.Capacity == nil && p.PricePerHour == nil && p.Status == nil
}

// CourtRepo encapsulates all database queries related to courts.
type CourtRepo struct {
	db     database.Querier
	sports *TaxonomyRepo
}

func NewCourtRepo(db database.Querier) *CourtRepo {
	return &CourtRepo{db: db, sports: NewSportRepo(db)}
}

// WithTx returns a copy of the repository bound to q.
func (r *CourtRepo) WithTx(q database.Querier) *CourtRepo { return NewCourtRepo(q) }

// Create inserts a court and sets c.ID.
func (r *CourtRepo) Create(ctx context.Context, c *model.Court) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO courts (name, capacity, price_per_hour, status) VALUES (?, ?, ?, ?)",
		c.Name, c.Capacity, c.PricePerHour, string(c.Status))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// Exists reports whether a court with id is present.
func (r *CourtRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM courts WHERE id = ?", id).Scan(&n)
	return n > 0, err
}

// Update applies the non-nil fields of p.  The caller checks existence
// first: MySQL reports zero affected rows when values are unchanged.
func (r *CourtRepo) Update(ctx context.Context, id uint64, p CourtPatch) error {
	if p.Empty() {
		return nil
	}
	sets := make([]string, 0, 5)
	args := make([]any, 0, 5)
	if p.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *p.Name)
	}
	if p.Capacity != nil {
		sets = append(sets, "capacity = ?")
		args = append(args, *p.Capacity)
	}
	if p.PricePerHour != nil {
		sets = append(sets, "price_per_hour = ?")
		args = append(args, *p.PricePerHour)
	}
	if p.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*p.Status))
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)
	_, err := r.db.ExecContext(ctx, "UPDATE courts SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	return err
}

// ReplaceSports replaces every court_sports row of courtID with ids.
func (r *CourtRepo) ReplaceSports(ctx context.Context, courtID uint64, ids []uint64) error {
	return replaceAssociations(ctx, r.db, courtSportsTable, courtID, ids)
}

// SportIDs returns the sport ids linked to courtID.
func (r *CourtRepo) SportIDs(ctx context.Context, courtID uint64) ([]uint64, error) {
	return linkedIDs(ctx, r.db, courtSportsTable, courtID)
}

// Delete removes the court's sport links and then the court.  Run it in a
// transaction: when bookings, classes or blocked slots reference the court
// the second statement fails with ErrInUse and the links must come back.
func (r *CourtRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	if err := deleteAssociations(ctx, r.db, courtSportsTable, id); err != nil {
		return false, err
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM courts WHERE id = ?", id)
	if err != nil {
		if isForeignKey(err) {
			return false, ErrInUse
		}
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

const courtListQuery = `SELECT c.id, c.name, c.capacity, c.price_per_hour, c.status, c.created_at,
       GROUP_CONCAT(s.name) AS sports
FROM courts c
LEFT JOIN court_sports cs ON cs.court_id = c.id
LEFT JOIN sports s ON s.id = cs.sport_id
WHERE LOWER(c.name) LIKE ?
GROUP BY c.id, c.name, c.capacity, c.price_per_hour, c.status, c.created_at
ORDER BY c.created_at DESC, c.id DESC`

// List returns courts whose name contains search (case-insensitive),
// newest first, with sport names comma-joined.
func (r *CourtRepo) List(ctx context.Context, search string) ([]model.Court, error) {
	rows, err := r.db.QueryContext(ctx, courtListQuery, "%"+strings.ToLower(strings.TrimSpace(search))+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Court{}
	for rows.Next() {
		var (
			c      model.Court
			status string
			sports sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Capacity, &c.PricePerHour, &status, &c.CreatedAt, &sports); err != nil {
			return nil, err
		}
		c.Status = model.CourtStatus(status)
		c.SportNames = sports.String
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetByID loads one court with its sports.  ErrCourtNotFound when absent.
func (r *CourtRepo) GetByID(ctx context.Context, id uint64) (model.Court, error) {
	var (
		c      model.Court
		status string
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, capacity, price_per_hour, status, created_at FROM courts WHERE id = ?", id).
		Scan(&c.ID, &c.Name, &c.Capacity, &c.PricePerHour, &status, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Court{}, ErrCourtNotFound
	}
	if err != nil {
		return model.Court{}, err
	}
	c.Status = model.CourtStatus(status)
	entries, err := r.sports.linked(ctx, courtSportsTable, c.ID)
	if err != nil {
		return model.Court{}, err
	}
	names := make([]string, 0, len(entries))
	c.Sports = make([]model.Sport, 0, len(entries))
	for _, e := range entries {
		c.Sports = append(c.Sports, e.Sport())
		names = append(names, e.Name)
	}
	c.SportNames = strings.Join(names, ",")
	return c, nil
}
