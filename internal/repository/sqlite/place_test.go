package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sizem-re/placelist/internal/apperror"
	"github.com/sizem-re/placelist/internal/geo"
	"github.com/sizem-re/placelist/internal/model"
	"github.com/sizem-re/placelist/internal/repository"
)

func createTestPlace(t *testing.T, db *DB, name string, lat, lng float64) *model.Place {
	t.Helper()
	place := &model.Place{
		Name:      name,
		Latitude:  lat,
		Longitude: lng,
	}
	if err := db.Create(context.Background(), place); err != nil {
		t.Fatalf("failed to create test place: %v", err)
	}
	return place
}

func TestPlaceCreateGet(t *testing.T) {
	db := newTestDB(t)

	place := &model.Place{
		Name:       "Cafe X",
		Address:    "1 Main St",
		Latitude:   40.0,
		Longitude:  -73.0,
		Category:   "cafe",
		WebsiteURL: "https://cafex.example.com",
		CreatedBy:  "user-1",
	}

	if err := db.Create(context.Background(), place); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if place.ID == "" {
		t.Fatal("Create() did not set place.ID")
	}

	found, err := db.GetByID(context.Background(), place.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	if found.Name != "Cafe X" {
		t.Errorf("Name = %q, want %q", found.Name, "Cafe X")
	}
	if found.Latitude != 40.0 || found.Longitude != -73.0 {
		t.Errorf("coordinates = (%v, %v), want (40, -73)", found.Latitude, found.Longitude)
	}
	if found.CreatedBy != "user-1" {
		t.Errorf("CreatedBy = %q, want %q", found.CreatedBy, "user-1")
	}
}

func TestPlaceCreate_ClientSuppliedID(t *testing.T) {
	db := newTestDB(t)

	place := &model.Place{
		ID:        "client-chosen-id",
		Name:      "Imported Spot",
		Latitude:  1,
		Longitude: 2,
	}
	if err := db.Create(context.Background(), place); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if place.ID != "client-chosen-id" {
		t.Errorf("Create() replaced supplied ID with %q", place.ID)
	}
	if _, err := db.GetByID(context.Background(), "client-chosen-id"); err != nil {
		t.Errorf("GetByID() by supplied ID error = %v", err)
	}
}

func TestPlaceGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByID(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestPlaceUpdate(t *testing.T) {
	db := newTestDB(t)
	place := createTestPlace(t, db, "Old Name", 10, 20)

	place.Name = "New Name"
	place.Description = "now with a description"
	if err := db.Update(context.Background(), place); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	found, err := db.GetByID(context.Background(), place.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.Name != "New Name" {
		t.Errorf("Name = %q, want %q", found.Name, "New Name")
	}
	if found.Description != "now with a description" {
		t.Errorf("Description = %q", found.Description)
	}
}

func TestPlaceUpdate_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Update(context.Background(), &model.Place{ID: "missing", Name: "x"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestPlaceDelete(t *testing.T) {
	db := newTestDB(t)
	place := createTestPlace(t, db, "Doomed", 0, 0)

	if err := db.Delete(context.Background(), place.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err := db.GetByID(context.Background(), place.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}

	if err := db.Delete(context.Background(), place.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestPlaceList_ByCreator(t *testing.T) {
	db := newTestDB(t)

	mine := createTestPlace(t, db, "Mine", 1, 1)
	mine.CreatedBy = "me"
	if err := db.Update(context.Background(), mine); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	createTestPlace(t, db, "Someone else's", 2, 2)

	places, err := db.List(context.Background(), repository.PlaceFilter{CreatedBy: "me"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if len(places) != 1 {
		t.Fatalf("List() returned %d places, want 1", len(places))
	}
	if places[0].ID != mine.ID {
		t.Errorf("List() returned %q, want %q", places[0].ID, mine.ID)
	}
}

func TestPlaceList_NameContains(t *testing.T) {
	db := newTestDB(t)
	createTestPlace(t, db, "Blue Bottle Coffee", 1, 1)
	createTestPlace(t, db, "Corner Bakery", 2, 2)

	tests := []struct {
		query string
		want  int
	}{
		{"bottle", 1},  // case-insensitive substring
		{"BOTTLE", 1},
		{"e", 2},
		{"pizza", 0},
	}

	for _, tt := range tests {
		places, err := db.List(context.Background(), repository.PlaceFilter{NameContains: tt.query})
		if err != nil {
			t.Fatalf("List(%q) error = %v", tt.query, err)
		}
		if len(places) != tt.want {
			t.Errorf("List(%q) returned %d places, want %d", tt.query, len(places), tt.want)
		}
	}
}

func TestPlaceList_BoundingBox(t *testing.T) {
	db := newTestDB(t)

	near := createTestPlace(t, db, "Near", 40.05, -73.0) // ~5.5 km north of center
	createTestPlace(t, db, "Far", 41.0, -73.0)           // ~111 km north

	box := geo.NewBoundingBox(40.0, -73.0, 10)
	places, err := db.List(context.Background(), repository.PlaceFilter{BBox: &box})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if len(places) != 1 {
		t.Fatalf("List() returned %d places, want 1", len(places))
	}
	if places[0].ID != near.ID {
		t.Errorf("List() returned %q, want the near place %q", places[0].ID, near.ID)
	}
}

func TestPlaceList_DropsUnparsableCoordinates(t *testing.T) {
	db := newTestDB(t)
	createTestPlace(t, db, "Good", 40.0, -73.0)

	// Simulate imported junk: coordinates that don't parse as numbers.
	_, err := db.conn.Exec(
		`INSERT INTO places (id, name, latitude, longitude) VALUES ('junk', 'Junk', 'n/a', '-73.0')`,
	)
	if err != nil {
		t.Fatalf("inserting junk row: %v", err)
	}

	box := geo.NewBoundingBox(40.0, -73.0, 10)
	places, err := db.List(context.Background(), repository.PlaceFilter{BBox: &box})
	if err != nil {
		t.Fatalf("List() with junk row error = %v", err)
	}

	if len(places) != 1 || places[0].Name != "Good" {
		t.Errorf("List() = %d places, want only the parsable one", len(places))
	}

	// Without a bounding box the junk row is still returned (zero coords).
	all, err := db.List(context.Background(), repository.PlaceFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("unfiltered List() = %d places, want 2", len(all))
	}
}

func TestPlaceList_DropsOutOfRangeCoordinates(t *testing.T) {
	db := newTestDB(t)

	_, err := db.conn.Exec(
		`INSERT INTO places (id, name, latitude, longitude) VALUES ('oob', 'Out of range', '95.0', '-73.0')`,
	)
	if err != nil {
		t.Fatalf("inserting out-of-range row: %v", err)
	}

	box := geo.NewBoundingBox(89.5, -73.0, 100)
	places, err := db.List(context.Background(), repository.PlaceFilter{BBox: &box})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(places) != 0 {
		t.Errorf("List() included a row with latitude 95, want it dropped")
	}
}

func TestPlaceReassignCreator(t *testing.T) {
	db := newTestDB(t)

	for i := 0; i < 3; i++ {
		p := createTestPlace(t, db, "P", float64(i), float64(i))
		p.CreatedBy = "wrong-user"
		if err := db.Update(context.Background(), p); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
	}
	other := createTestPlace(t, db, "Other", 5, 5)
	other.CreatedBy = "innocent"
	if err := db.Update(context.Background(), other); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	n, err := db.ReassignCreator(context.Background(), "wrong-user", "right-user")
	if err != nil {
		t.Fatalf("ReassignCreator() error = %v", err)
	}
	if n != 3 {
		t.Errorf("ReassignCreator() rows = %d, want 3", n)
	}

	places, err := db.List(context.Background(), repository.PlaceFilter{CreatedBy: "right-user"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(places) != 3 {
		t.Errorf("places now owned by right-user = %d, want 3", len(places))
	}

	untouched, err := db.GetByID(context.Background(), other.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if untouched.CreatedBy != "innocent" {
		t.Errorf("unrelated place CreatedBy = %q, want %q", untouched.CreatedBy, "innocent")
	}
}
