// Package roster manages the user records behind login and RBAC:
// students, lecturers, and admins, each with a bcrypt password hash.
package roster

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/campushq/examgate/internal/rbac"
)

const bcryptCost = 12

type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	Role        string `json:"role"`
	Password    string `json:"password,omitempty"` // plaintext on input only, never stored
}

// ErrBadCredentials covers both unknown username and wrong password so
// login responses cannot be used to probe the roster.
var ErrBadCredentials = errors.New("invalid credentials")

func validRole(role string) bool {
	switch role {
	case rbac.RoleStudent, rbac.RoleLecturer, rbac.RoleAdmin:
		return true
	}
	return false
}

// Upsert bulk-creates or updates users inside one transaction. New
// users need a password; existing users keep their hash unless a new
// password is supplied.
func Upsert(ctx context.Context, db *sql.DB, users []User) (inserted, updated int, err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	now := time.Now().Unix()
	for _, u := range users {
		if u.Username == "" {
			return inserted, updated, fmt.Errorf("user with empty username")
		}
		if u.Role == "" {
			u.Role = rbac.RoleStudent
		}
		if !validRole(u.Role) {
			return inserted, updated, fmt.Errorf("invalid role %q for user %s", u.Role, u.Username)
		}
		var phash string
		if u.Password != "" {
			b, e := bcrypt.GenerateFromPassword([]byte(u.Password), bcryptCost)
			if e != nil {
				return inserted, updated, e
			}
			phash = string(b)
		}

		var existingID string
		err = tx.QueryRowContext(ctx,
			`SELECT id FROM users WHERE id=$1 OR username=$2`, u.ID, u.Username).Scan(&existingID)
		switch {
		case err == nil:
			if phash != "" {
				_, err = tx.ExecContext(ctx,
					`UPDATE users SET username=$1, display_name=$2, role=$3, password_hash=$4 WHERE id=$5`,
					u.Username, u.DisplayName, u.Role, phash, existingID)
			} else {
				_, err = tx.ExecContext(ctx,
					`UPDATE users SET username=$1, display_name=$2, role=$3 WHERE id=$4`,
					u.Username, u.DisplayName, u.Role, existingID)
			}
			if err != nil {
				return inserted, updated, err
			}
			updated++
		case errors.Is(err, sql.ErrNoRows):
			if phash == "" {
				return inserted, updated, fmt.Errorf("password required for new user %s", u.Username)
			}
			if u.ID == "" {
				u.ID = uuid.NewString()
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO users (id, username, display_name, password_hash, role, created_at)
				 VALUES ($1,$2,$3,$4,$5,$6)`,
				u.ID, u.Username, u.DisplayName, phash, u.Role, now)
			if err != nil {
				return inserted, updated, err
			}
			inserted++
		default:
			return inserted, updated, err
		}
	}
	return inserted, updated, nil
}

// Authenticate checks a username/password pair and returns the user on
// success.
func Authenticate(ctx context.Context, db *sql.DB, username, password string) (User, error) {
	var (
		u    User
		hash string
	)
	err := db.QueryRowContext(ctx,
		`SELECT id, username, display_name, password_hash, role FROM users WHERE username=$1`,
		username).Scan(&u.ID, &u.Username, &u.DisplayName, &hash, &u.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrBadCredentials
	}
	if err != nil {
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return User{}, ErrBadCredentials
	}
	return u, nil
}

// List returns users, optionally filtered by role, ordered by username.
func List(ctx context.Context, db *sql.DB, role string) ([]User, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if role == "" {
		rows, err = db.QueryContext(ctx,
			`SELECT id, username, display_name, role FROM users ORDER BY username`)
	} else {
		rows, err = db.QueryContext(ctx,
			`SELECT id, username, display_name, role FROM users WHERE role=$1 ORDER BY username`, role)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.DisplayName, &u.Role); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
