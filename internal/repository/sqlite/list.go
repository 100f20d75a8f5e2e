package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sizem-re/placelist/internal/apperror"
	"github.com/sizem-re/placelist/internal/model"
	"github.com/sizem-re/placelist/internal/repository"
)

var _ repository.ListRepository = (*DB)(nil)

// CreateList inserts a new list and assigns its ID and timestamps.
func (db *DB) CreateList(ctx context.Context, list *model.List) error {
	list.ID = xid.New().String()

	now := time.Now()
	list.CreatedAt = now
	list.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO lists (id, title, description, visibility, owner_id,
		                    cover_image_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		list.ID,
		list.Title,
		list.Description,
		string(list.Visibility),
		list.OwnerID,
		list.CoverImageURL,
		list.CreatedAt,
		list.UpdatedAt,
	)
	if err != nil {
		return apperror.Storage("inserting list", err)
	}

	return nil
}

func (db *DB) GetListByID(ctx context.Context, id string) (*model.List, error) {
	row := db.conn.QueryRowContext(ctx,
		listSelect+` WHERE id = ?`, id,
	)

	list, err := scanList(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("list", id)
		}
		return nil, apperror.Storage("getting list", err)
	}

	return list, nil
}

func (db *DB) ListsByOwner(ctx context.Context, ownerID string) ([]model.List, error) {
	rows, err := db.conn.QueryContext(ctx,
		listSelect+` WHERE owner_id = ? ORDER BY created_at DESC`, ownerID,
	)
	if err != nil {
		return nil, apperror.Storage("listing lists by owner", err)
	}
	defer rows.Close()

	return collectLists(rows)
}

// UpdateList writes all mutable fields of the list.
func (db *DB) UpdateList(ctx context.Context, list *model.List) error {
	list.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE lists
		 SET title = ?, description = ?, visibility = ?, owner_id = ?,
		     cover_image_url = ?, updated_at = ?
		 WHERE id = ?`,
		list.Title,
		list.Description,
		string(list.Visibility),
		list.OwnerID,
		list.CoverImageURL,
		list.UpdatedAt,
		list.ID,
	)
	if err != nil {
		return apperror.Storage("updating list", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperror.Storage("checking rows affected", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("list", list.ID)
	}

	return nil
}

// DeleteList removes the list and its membership rows. Two statements,
// not a transaction: a crash in between leaves memberships orphaned,
// which the repair tooling class of operations is expected to handle.
func (db *DB) DeleteList(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM lists WHERE id = ?`, id,
	)
	if err != nil {
		return apperror.Storage("deleting list", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperror.Storage("checking rows affected", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("list", id)
	}

	if _, err := db.conn.ExecContext(ctx,
		`DELETE FROM list_places WHERE list_id = ?`, id,
	); err != nil {
		return apperror.Storage("deleting list memberships", err)
	}

	return nil
}

// AddPlace inserts a membership row. No duplicate check: adding the same
// place to the same list twice produces two rows.
func (db *DB) AddPlace(ctx context.Context, membership *model.ListPlace) error {
	membership.ID = xid.New().String()
	membership.AddedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO list_places (id, list_id, place_id, added_by, note, photo_url, added_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		membership.ID,
		membership.ListID,
		membership.PlaceID,
		membership.AddedBy,
		membership.Note,
		membership.PhotoURL,
		membership.AddedAt,
	)
	if err != nil {
		return apperror.Storage("inserting list membership", err)
	}

	return nil
}

// RemovePlace deletes memberships matching the selector. Deleting an
// absent membership is a no-op, not an error — the operation is
// idempotent from the caller's point of view.
func (db *DB) RemovePlace(ctx context.Context, sel repository.MembershipSelector) error {
	var err error
	switch {
	case sel.MembershipID != "":
		_, err = db.conn.ExecContext(ctx,
			`DELETE FROM list_places WHERE id = ?`, sel.MembershipID,
		)
	case sel.ListID != "" && sel.PlaceID != "":
		_, err = db.conn.ExecContext(ctx,
			`DELETE FROM list_places WHERE list_id = ? AND place_id = ?`,
			sel.ListID, sel.PlaceID,
		)
	default:
		return fmt.Errorf("sqlite: membership selector needs an id or a (listId, placeId) pair")
	}

	if err != nil {
		return apperror.Storage("deleting list membership", err)
	}
	return nil
}

func (db *DB) MembershipsForList(ctx context.Context, listID string) ([]model.ListPlace, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, list_id, place_id, added_by, note, photo_url, added_at
		 FROM list_places
		 WHERE list_id = ?
		 ORDER BY added_at ASC`,
		listID,
	)
	if err != nil {
		return nil, apperror.Storage("listing memberships", err)
	}
	defer rows.Close()

	memberships := []model.ListPlace{}
	for rows.Next() {
		var m model.ListPlace
		if err := rows.Scan(
			&m.ID, &m.ListID, &m.PlaceID, &m.AddedBy,
			&m.Note, &m.PhotoURL, &m.AddedAt,
		); err != nil {
			return nil, apperror.Storage("scanning membership row", err)
		}
		memberships = append(memberships, m)
	}

	if err := rows.Err(); err != nil {
		return nil, apperror.Storage("iterating memberships", err)
	}

	return memberships, nil
}

// ListsContainingPlace joins memberships to lists. DISTINCT collapses
// duplicate memberships of the same (list, place) pair to one list.
func (db *DB) ListsContainingPlace(ctx context.Context, placeID string) ([]model.List, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT DISTINCT l.id, l.title, l.description, l.visibility, l.owner_id,
		        l.cover_image_url, l.created_at, l.updated_at
		 FROM lists l
		 JOIN list_places lp ON lp.list_id = l.id
		 WHERE lp.place_id = ?
		 ORDER BY l.created_at DESC`,
		placeID,
	)
	if err != nil {
		return nil, apperror.Storage("listing lists containing place", err)
	}
	defer rows.Close()

	return collectLists(rows)
}

// ReassignOwner re-points lists.owner_id from one user to another.
func (db *DB) ReassignOwner(ctx context.Context, fromUserID, toUserID string) (int64, error) {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE lists SET owner_id = ?, updated_at = ? WHERE owner_id = ?`,
		toUserID, time.Now(), fromUserID,
	)
	if err != nil {
		return 0, apperror.Storage("reassigning list owner", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, apperror.Storage("checking rows affected", err)
	}
	return n, nil
}

// ReassignAdder re-points list_places.added_by from one user to another.
func (db *DB) ReassignAdder(ctx context.Context, fromUserID, toUserID string) (int64, error) {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE list_places SET added_by = ? WHERE added_by = ?`,
		toUserID, fromUserID,
	)
	if err != nil {
		return 0, apperror.Storage("reassigning membership adder", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, apperror.Storage("checking rows affected", err)
	}
	return n, nil
}

const listSelect = `SELECT id, title, description, visibility, owner_id,
                           cover_image_url, created_at, updated_at
                    FROM lists`

func scanList(scan func(dest ...any) error) (*model.List, error) {
	var l model.List
	var visibility string

	err := scan(
		&l.ID,
		&l.Title,
		&l.Description,
		&visibility,
		&l.OwnerID,
		&l.CoverImageURL,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.Visibility = model.Visibility(visibility)
	return &l, nil
}

func collectLists(rows *sql.Rows) ([]model.List, error) {
	lists := []model.List{}
	for rows.Next() {
		list, err := scanList(rows.Scan)
		if err != nil {
			return nil, apperror.Storage("scanning list row", err)
		}
		lists = append(lists, *list)
	}

	if err := rows.Err(); err != nil {
		return nil, apperror.Storage("iterating lists", err)
	}

	return lists, nil
}
