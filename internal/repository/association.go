package repository

import (
	"context"
	"fmt"

	"github.com/iliyamo/sports-complex/internal/database"
)

// assocTable describes a two-column many-to-many link table.
type assocTable struct {
	table    string
	ownerCol string
	refCol   string
}

var (
	coachSportsTable         = assocTable{table: "coach_sports", ownerCol: "coach_id", refCol: "sport_id"}
	coachQualificationsTable = assocTable{table: "coach_qualifications", ownerCol: "coach_id", refCol: "qualification_id"}
	courtSportsTable         = assocTable{table: "court_sports", ownerCol: "court_id", refCol: "sport_id"}
)

// replaceAssociations deletes every link of ownerID in t and inserts one
// row per id.  Duplicate pairs are skipped; an id with no parent row
// yields ErrInvalidReference.  Callers run it inside a transaction so a
// failed insert never leaves the owner with a partial set.
func replaceAssociations(ctx context.Context, q database.Querier, t assocTable, ownerID uint64, ids []uint64) error {
	if err := deleteAssociations(ctx, q, t, ownerID); err != nil {
		return err
	}
	return insertAssociations(ctx, q, t, ownerID, ids)
}

func insertAssociations(ctx context.Context, q database.Querier, t assocTable, ownerID uint64, ids []uint64) error {
	stmt := fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES (?, ?)", t.table, t.ownerCol, t.refCol)
	for _, id := range ids {
		if _, err := q.ExecContext(ctx, stmt, ownerID, id); err != nil {
			if isDuplicate(err) {
				continue
			}
			if isForeignKey(err) {
				return fmt.Errorf("%s %d: %w", t.refCol, id, ErrInvalidReference)
			}
			return err
		}
	}
	return nil
}

func deleteAssociations(ctx context.Context, q database.Querier, t assocTable, ownerID uint64) error {
	_, err := q.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s = ?", t.table, t.ownerCol), ownerID)
	return err
}

// linkedIDs returns the referenced ids of ownerID in t, ascending.
func linkedIDs(ctx context.Context, q database.Querier, t assocTable, ownerID uint64) ([]uint64, error) {
	rows, err := q.QueryContext(ctx,
		fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? ORDER BY %s", t.refCol, t.table, t.ownerCol, t.refCol), ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []uint64{}
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
