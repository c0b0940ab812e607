package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/sports-complex/internal/database"
	"github.com/iliyamo/sports-complex/internal/model"
)

// ListLimit caps taxonomy search results.
const ListLimit = 50

// Entry is a row of a taxonomy table.  IsActive is always true for
// tables without an active flag.
type Entry struct {
	ID       uint64
	Name     string
	IsActive bool
}

func (e Entry) Sport() model.Sport { return model.Sport{ID: e.ID, Name: e.Name, IsActive: e.IsActive} }

func (e Entry) Qualification() model.Qualification {
	return model.Qualification{ID: e.ID, Name: e.Name}
}

type taxonomyTable struct {
	table     string
	hasActive bool
}

var (
	sportsTable         = taxonomyTable{table: "sports", hasActive: true}
	qualificationsTable = taxonomyTable{table: "qualifications"}
)

// TaxonomyRepo reads and writes one name-keyed reference table (sports or
// qualifications).  Names are unique; inserts are upserts by name.
type TaxonomyRepo struct {
	db database.Querier
	t  taxonomyTable
}

func NewSportRepo(db database.Querier) *TaxonomyRepo {
	return &TaxonomyRepo{db: db, t: sportsTable}
}

func NewQualificationRepo(db database.Querier) *TaxonomyRepo {
	return &TaxonomyRepo{db: db, t: qualificationsTable}
}

// WithTx returns a copy of the repository bound to q.
func (r *TaxonomyRepo) WithTx(q database.Querier) *TaxonomyRepo {
	return &TaxonomyRepo{db: q, t: r.t}
}

func (r *TaxonomyRepo) columns() string {
	if r.t.hasActive {
		return "id, name, is_active"
	}
	return "id, name"
}

func (r *TaxonomyRepo) scan(s interface{ Scan(...any) error }) (Entry, error) {
	var e Entry
	if r.t.hasActive {
		err := s.Scan(&e.ID, &e.Name, &e.IsActive)
		return e, err
	}
	e.IsActive = true
	err := s.Scan(&e.ID, &e.Name)
	return e, err
}

// UpsertByName trims name and inserts it when absent.  A unique-key
// conflict means another writer got there first and is not an error.  The
// stored row is returned either way; ok is false only for an empty name.
func (r *TaxonomyRepo) UpsertByName(ctx context.Context, name string) (e Entry, ok bool, err error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Entry{}, false, nil
	}
	if _, err := r.db.ExecContext(ctx, fmt.Sprintf("INSERT INTO %s (name) VALUES (?)", r.t.table), name); err != nil && !isDuplicate(err) {
		return Entry{}, false, err
	}
	row := r.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM %s WHERE name = ? LIMIT 1", r.columns(), r.t.table), name)
	e, err = r.scan(row)
	if err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

// GetByID fetches one entry or ErrEntryNotFound.
func (r *TaxonomyRepo) GetByID(ctx context.Context, id uint64) (Entry, error) {
	row := r.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", r.columns(), r.t.table), id)
	e, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrEntryNotFound
	}
	return e, err
}

// List returns entries whose name contains search (case-insensitive),
// alphabetically, at most ListLimit rows.  Inactive sports are hidden.
func (r *TaxonomyRepo) List(ctx context.Context, search string) ([]Entry, error) {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE LOWER(name) LIKE ?", r.columns(), r.t.table)
	args := []any{"%" + strings.ToLower(strings.TrimSpace(search)) + "%"}
	if r.t.hasActive {
		q += " AND is_active = ?"
		args = append(args, true)
	}
	q += fmt.Sprintf(" ORDER BY name ASC LIMIT %d", ListLimit)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Entry{}
	for rows.Next() {
		e, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Delete hard-deletes an entry.  ErrInUse when courts or coaches still
// reference it, ErrEntryNotFound when no row matched.
func (r *TaxonomyRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", r.t.table), id)
	if err != nil {
		if isForeignKey(err) {
			return ErrInUse
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// Resolve turns a selection into ids.  Id selections are returned as-is
// (existence is enforced by the link table's foreign key); names are
// upserted one by one.
func (r *TaxonomyRepo) Resolve(ctx context.Context, sel model.Selection) ([]uint64, error) {
	if !sel.IsByNames() {
		return sel.IDs(), nil
	}
	ids := make([]uint64, 0, len(sel.Names()))
	for _, n := range sel.Names() {
		e, ok, err := r.UpsertByName(ctx, n)
		if err != nil {
			return nil, err
		}
		if ok {
			ids = append(ids, e.ID)
		}
	}
	return ids, nil
}

// linked returns the entries joined to ownerID through link table a.
func (r *TaxonomyRepo) linked(ctx context.Context, a assocTable, ownerID uint64) ([]Entry, error) {
	cols := "t.id, t.name"
	if r.t.hasActive {
		cols += ", t.is_active"
	}
	q := fmt.Sprintf(`SELECT %s FROM %s t
	                  JOIN %s l ON l.%s = t.id
	                  WHERE l.%s = ? ORDER BY t.name`, cols, r.t.table, a.table, a.refCol, a.ownerCol)
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Entry{}
	for rows.Next() {
		e, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
