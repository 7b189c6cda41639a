package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/eafc-tic/equiptrack/internal/model"
	"github.com/eafc-tic/equiptrack/internal/utils"
)

// UserRepo provides access to the 'users' table. User ids are
// institutional identifiers (emails) and are normalized to lower case on
// every path so lookups are case-insensitive like the rest of the school's
// tooling.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, full_name, role, password_hash, created_at, updated_at"

// Create inserts a new user with a bcrypt-hashed credential.
func (r *UserRepo) Create(ctx context.Context, id, fullName string, role model.Role, password string, cost int) error {
	id = strings.ToLower(strings.TrimSpace(id))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO users (id, full_name, role, password_hash) VALUES (?,?,?,?)",
		id, fullName, string(role), hash)
	if isDuplicate(err) {
		return ErrUserExists
	}
	return err
}

// GetByID fetches a user by normalized id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.FullName, &u.Role, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// List returns users ordered by role (admins first) then name. When
// roleFilter is non-nil only users with that role are returned.
func (r *UserRepo) List(ctx context.Context, roleFilter *model.Role) ([]model.User, error) {
	q := "SELECT " + userColumns + " FROM users"
	args := []interface{}{}
	if roleFilter != nil {
		q += " WHERE role=?"
		args = append(args, string(*roleFilter))
	}
	q += " ORDER BY FIELD(role,'ADMIN','TEACHER','STUDENT'), full_name"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.FullName, &u.Role, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Update changes a user's name, role and optionally the credential. A nil
// newPassword leaves the stored hash untouched. Demoting the last admin is
// rejected with ErrLastAdmin; the count runs inside the same transaction
// as the update so two concurrent demotions cannot both pass the guard.
func (r *UserRepo) Update(ctx context.Context, id, fullName string, role model.Role, newPassword *string, cost int) error {
	id = strings.ToLower(strings.TrimSpace(id))
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var current model.Role
	if err := tx.QueryRowContext(ctx,
		"SELECT role FROM users WHERE id=? FOR UPDATE", id).Scan(&current); err != nil {
		return err
	}
	if current == model.RoleAdmin && role != model.RoleAdmin {
		var others int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM users WHERE role='ADMIN' AND id<>?", id).Scan(&others); err != nil {
			return err
		}
		if others == 0 {
			return ErrLastAdmin
		}
	}

	if newPassword != nil {
		hash, err := utils.HashPassword(*newPassword, cost)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE users SET full_name=?, role=?, password_hash=? WHERE id=?",
			fullName, string(role), hash, id); err != nil {
			return err
		}
	} else {
		if _, err := tx.ExecContext(ctx,
			"UPDATE users SET full_name=?, role=? WHERE id=?",
			fullName, string(role), id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Delete removes a user. Deleting the sole remaining admin is rejected
// with ErrLastAdmin. The row is locked first so concurrent deletes of the
// final two admins cannot interleave past the guard.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	id = strings.ToLower(strings.TrimSpace(id))
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var role model.Role
	if err := tx.QueryRowContext(ctx,
		"SELECT role FROM users WHERE id=? FOR UPDATE", id).Scan(&role); err != nil {
		return err
	}
	if role == model.RoleAdmin {
		var others int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM users WHERE role='ADMIN' AND id<>?", id).Scan(&others); err != nil {
			return err
		}
		if others == 0 {
			return ErrLastAdmin
		}
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id=?", id); err != nil {
		return err
	}
	return tx.Commit()
}
