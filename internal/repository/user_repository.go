package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/sports-complex/internal/database"
	"github.com/iliyamo/sports-complex/internal/model"
)

const userColumns = "u.id, u.first_name, u.last_name, u.email, u.password_hash, u.phone, u.role, u.is_active, u.must_change_password, u.created_at, c.id"

// UserRepo persists user accounts.  Every read joins coaches so callers
// see the coach profile id of COACH users.
type UserRepo struct{ db database.Querier }

func NewUserRepo(db database.Querier) *UserRepo { return &UserRepo{db: db} }

// WithTx returns a copy of the repository bound to q.
func (r *UserRepo) WithTx(q database.Querier) *UserRepo { return &UserRepo{db: q} }

func scanUser(s interface{ Scan(...any) error }) (model.User, error) {
	var (
		u       model.User
		role    string
		coachID sql.NullInt64
	)
	err := s.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.Phone,
		&role, &u.IsActive, &u.MustChangePassword, &u.CreatedAt, &coachID)
	if err != nil {
		return model.User{}, err
	}
	u.Role = model.Role(role)
	if coachID.Valid {
		id := uint64(coachID.Int64)
		u.CoachID = &id
	}
	return u, nil
}

// Create inserts u and returns its ID.  ErrEmailExists on a duplicate email.
func (r *UserRepo) Create(ctx context.Context, u *model.User) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (first_name, last_name, email, password_hash, phone, role, is_active, must_change_password)
		 VALUES (?,?,?,?,?,?,?,?)`,
		u.FirstName, u.LastName, u.Email, u.PasswordHash, u.Phone, string(u.Role), u.IsActive, u.MustChangePassword)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	u.ID = uint64(id)
	return u.ID, nil
}

// GetByID fetches a user by id.  ErrUserNotFound when absent.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users u LEFT JOIN coaches c ON c.user_id = u.id WHERE u.id = ? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// GetByEmail fetches a user by exact email.  ErrUserNotFound when absent.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users u LEFT JOIN coaches c ON c.user_id = u.id WHERE u.email = ? LIMIT 1", email))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// EmailTaken reports whether another account (id != excludeID) uses email.
// Pass excludeID 0 to check against every account.
func (r *UserRepo) EmailTaken(ctx context.Context, email string, excludeID uint64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE email = ? AND id <> ?", email, excludeID).Scan(&n)
	return n > 0, err
}

// List returns every user, newest first.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users u LEFT JOIN coaches c ON c.user_id = u.id ORDER BY u.created_at DESC, u.id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UpdateProfile overwrites the editable columns of u.ID.
func (r *UserRepo) UpdateProfile(ctx context.Context, u model.User) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET first_name = ?, last_name = ?, email = ?, phone = ?, role = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		u.FirstName, u.LastName, u.Email, u.Phone, string(u.Role), u.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetActive flips the active flag.
func (r *UserRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", active, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdatePassword stores a new hash and the must-change-password flag.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash string, mustChange bool) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET password_hash = ?, must_change_password = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		hash, mustChange, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Delete removes the user row and reports whether one existed.
func (r *UserRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// CountActiveByRole counts active accounts holding role.
func (r *UserRepo) CountActiveByRole(ctx context.Context, role model.Role) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE role = ? AND is_active = ?", string(role), true).Scan(&n)
	return n, err
}
