package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/tour-booking/internal/model"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, name, email, phone, password_hash, role_id, is_active, created_at, updated_at"

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var (
		u     model.User
		phone sql.NullString
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &phone, &u.PasswordHash, &u.RoleID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	u.Phone = phone.String
	return u, err
}

// Create inserts u (with an already hashed password) and fills in its ID.
// The email is normalized to lower case.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	res, err := conn(ctx, r.DB).ExecContext(ctx,
		"INSERT INTO users (name, email, phone, password_hash, role_id, is_active) VALUES (?,?,?,?,?,?)",
		u.Name, u.Email, u.Phone, u.PasswordHash, u.RoleID, u.IsActive)
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(conn(ctx, r.DB).QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
	if err != nil {
		return nil, rowErr(err)
	}
	return &u, nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	u, err := scanUser(conn(ctx, r.DB).QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
	if err != nil {
		return nil, rowErr(err)
	}
	return &u, nil
}

// UpdateProfile changes the user's name and phone.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, name, phone string) error {
	_, err := conn(ctx, r.DB).ExecContext(ctx,
		"UPDATE users SET name=?, phone=? WHERE id=?", name, phone, id)
	return err
}

// List returns all users, newest first.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := conn(ctx, r.DB).QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at DESC, id DESC")
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

// SetActive enables or disables login for a user.
func (r *UserRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	res, err := conn(ctx, r.DB).ExecContext(ctx, "UPDATE users SET is_active=? WHERE id=?", active, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	_, err = r.GetByID(ctx, id)
	return err
}
