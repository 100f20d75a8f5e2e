package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/xid"
	"github.com/sizem-re/placelist/internal/apperror"
	"github.com/sizem-re/placelist/internal/model"
	"github.com/sizem-re/placelist/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// Upsert inserts or updates a user keyed on FID.
//
// First sign-in inserts a row with a fresh internal ID; later sign-ins
// keep the existing ID and refresh the profile fields. The UNIQUE
// constraint on fid backstops the lookup: if two first-time sign-ins for
// the same FID race, the second INSERT fails instead of creating a
// duplicate user.
func (db *DB) Upsert(ctx context.Context, user *model.User) error {
	var existingID string
	err := db.conn.QueryRowContext(ctx,
		`SELECT id FROM users WHERE fid = ?`, user.FID,
	).Scan(&existingID)

	if err != nil && err != sql.ErrNoRows {
		return apperror.Storage("looking up user by fid", err)
	}

	if existingID != "" {
		user.ID = existingID
		user.UpdatedAt = time.Now()
		_, err = db.conn.ExecContext(ctx,
			`UPDATE users SET username = ?, display_name = ?, pfp_url = ?, updated_at = ?
			 WHERE id = ?`,
			user.Username,
			user.DisplayName,
			user.PfpURL,
			user.UpdatedAt,
			user.ID,
		)
		if err != nil {
			return apperror.Storage("updating user", err)
		}

		// Re-read created_at so the returned record is complete.
		err = db.conn.QueryRowContext(ctx,
			`SELECT created_at FROM users WHERE id = ?`, user.ID,
		).Scan(&user.CreatedAt)
		if err != nil {
			return apperror.Storage("reading user timestamps", err)
		}
		return nil
	}

	now := time.Now()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO users (id, fid, username, display_name, pfp_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.FID,
		user.Username,
		user.DisplayName,
		user.PfpURL,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return apperror.Storage("inserting user", err)
	}

	return nil
}

// GetUserByID retrieves a user by internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return db.getUser(ctx, `WHERE id = ?`, id)
}

// GetUserByFID retrieves a user by Farcaster ID.
func (db *DB) GetUserByFID(ctx context.Context, fid string) (*model.User, error) {
	return db.getUser(ctx, `WHERE fid = ?`, fid)
}

func (db *DB) getUser(ctx context.Context, where, arg string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, fid, username, display_name, pfp_url, created_at, updated_at
		 FROM users `+where,
		arg,
	).Scan(
		&u.ID,
		&u.FID,
		&u.Username,
		&u.DisplayName,
		&u.PfpURL,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", arg)
		}
		return nil, apperror.Storage("getting user", err)
	}

	return &u, nil
}
