package sqlite

import (
	"context"
	"database/sql"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sizem-re/placelist/internal/apperror"
	"github.com/sizem-re/placelist/internal/geo"
	"github.com/sizem-re/placelist/internal/model"
	"github.com/sizem-re/placelist/internal/repository"
)

var _ repository.PlaceRepository = (*DB)(nil)

// Create inserts a place. The caller may supply an ID (imports and
// client-generated ids); otherwise a fresh xid is assigned.
func (db *DB) Create(ctx context.Context, place *model.Place) error {
	if place.ID == "" {
		place.ID = xid.New().String()
	}

	now := time.Now()
	place.CreatedAt = now
	place.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO places (id, name, address, latitude, longitude, category,
		                     description, website_url, image_url, created_by,
		                     created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		place.ID,
		place.Name,
		place.Address,
		formatCoord(place.Latitude),
		formatCoord(place.Longitude),
		place.Category,
		place.Description,
		place.WebsiteURL,
		place.ImageURL,
		place.CreatedBy,
		place.CreatedAt,
		place.UpdatedAt,
	)
	if err != nil {
		return apperror.Storage("inserting place", err)
	}

	return nil
}

// GetByID retrieves a single place. Junk coordinates in the stored row
// come back as zero values; only geospatial queries drop such rows.
func (db *DB) GetByID(ctx context.Context, id string) (*model.Place, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, name, address, latitude, longitude, category, description,
		        website_url, image_url, created_by, created_at, updated_at
		 FROM places
		 WHERE id = ?`,
		id,
	)

	place, _, err := scanPlace(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("place", id)
		}
		return nil, apperror.Storage("getting place", err)
	}

	return place, nil
}

// List retrieves places matching the filter.
//
// Owner and name narrowing happen in SQL. The bounding box is applied in
// Go after coordinate coercion: stored latitude/longitude are TEXT and
// may be junk, and rows that fail to parse as finite in-range numbers
// must be dropped from geospatial results — logged, never an error.
func (db *DB) List(ctx context.Context, filter repository.PlaceFilter) ([]model.Place, error) {
	query := `SELECT id, name, address, latitude, longitude, category, description,
	                 website_url, image_url, created_by, created_at, updated_at
	          FROM places`
	var conds []string
	var args []any

	if filter.CreatedBy != "" {
		conds = append(conds, "created_by = ?")
		args = append(args, filter.CreatedBy)
	}
	if filter.NameContains != "" {
		conds = append(conds, "name LIKE '%' || ? || '%' COLLATE NOCASE")
		args = append(args, filter.NameContains)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperror.Storage("listing places", err)
	}
	defer rows.Close()

	places := []model.Place{}
	for rows.Next() {
		place, coordsOK, err := scanPlace(rows.Scan)
		if err != nil {
			return nil, apperror.Storage("scanning place row", err)
		}

		if filter.BBox != nil {
			if !coordsOK {
				db.logger.Warn("dropping place with unusable coordinates from geospatial result",
					slog.String("id", place.ID),
				)
				continue
			}
			if !filter.BBox.Contains(place.Latitude, place.Longitude) {
				continue
			}
		}

		places = append(places, *place)
	}

	if err := rows.Err(); err != nil {
		return nil, apperror.Storage("iterating places", err)
	}

	return places, nil
}

// Update writes all mutable fields of the place. Field-level merging is
// the service layer's job (fetch, apply partial changes, save).
func (db *DB) Update(ctx context.Context, place *model.Place) error {
	place.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE places
		 SET name = ?, address = ?, latitude = ?, longitude = ?, category = ?,
		     description = ?, website_url = ?, image_url = ?, created_by = ?,
		     updated_at = ?
		 WHERE id = ?`,
		place.Name,
		place.Address,
		formatCoord(place.Latitude),
		formatCoord(place.Longitude),
		place.Category,
		place.Description,
		place.WebsiteURL,
		place.ImageURL,
		place.CreatedBy,
		place.UpdatedAt,
		place.ID,
	)
	if err != nil {
		return apperror.Storage("updating place", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperror.Storage("checking rows affected", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("place", place.ID)
	}

	return nil
}

// Delete removes a place. Membership rows pointing at it are left in
// place (weak references); repair tooling handles orphans.
func (db *DB) Delete(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM places WHERE id = ?`, id,
	)
	if err != nil {
		return apperror.Storage("deleting place", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperror.Storage("checking rows affected", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("place", id)
	}

	return nil
}

// ReassignCreator re-points created_by from one user to another.
// Part of the attribution repair batch; returns the row count.
func (db *DB) ReassignCreator(ctx context.Context, fromUserID, toUserID string) (int64, error) {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE places SET created_by = ?, updated_at = ? WHERE created_by = ?`,
		toUserID, time.Now(), fromUserID,
	)
	if err != nil {
		return 0, apperror.Storage("reassigning place creator", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, apperror.Storage("checking rows affected", err)
	}
	return n, nil
}

// scanPlace reads a place row, coercing the TEXT coordinate columns to
// float64. The second return reports whether both coordinates parsed and
// fall inside the valid range.
func scanPlace(scan func(dest ...any) error) (*model.Place, bool, error) {
	var p model.Place
	var latRaw, lngRaw string

	err := scan(
		&p.ID,
		&p.Name,
		&p.Address,
		&latRaw,
		&lngRaw,
		&p.Category,
		&p.Description,
		&p.WebsiteURL,
		&p.ImageURL,
		&p.CreatedBy,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, false, err
	}

	lat, latErr := strconv.ParseFloat(strings.TrimSpace(latRaw), 64)
	lng, lngErr := strconv.ParseFloat(strings.TrimSpace(lngRaw), 64)
	ok := latErr == nil && lngErr == nil && geo.ValidCoordinates(lat, lng)
	if ok {
		p.Latitude = lat
		p.Longitude = lng
	}

	return &p, ok, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
