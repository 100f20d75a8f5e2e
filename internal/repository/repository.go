// Package repository declares the storage interfaces the service layer
// programs against. The sqlite subpackage is the only implementation;
// tests substitute in-memory fakes.
package repository

import (
	"context"

	"github.com/sizem-re/placelist/internal/geo"
	"github.com/sizem-re/placelist/internal/model"
)

// PlaceFilter narrows a place listing. Zero-value fields are ignored.
type PlaceFilter struct {
	CreatedBy    string           // only places created by this user
	NameContains string           // case-insensitive substring match on name
	BBox         *geo.BoundingBox // only places inside this bounding box
}

// MembershipSelector identifies a list membership either directly by its
// ID or by the (list, place) pair.
type MembershipSelector struct {
	MembershipID string
	ListID       string
	PlaceID      string
}

type UserRepository interface {
	// Upsert inserts or updates a user keyed on FID. On return the
	// user's ID and timestamps are populated.
	Upsert(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByFID(ctx context.Context, fid string) (*model.User, error)
}

type PlaceRepository interface {
	Create(ctx context.Context, place *model.Place) error
	GetByID(ctx context.Context, id string) (*model.Place, error)
	List(ctx context.Context, filter PlaceFilter) ([]model.Place, error)
	Update(ctx context.Context, place *model.Place) error
	Delete(ctx context.Context, id string) error
	// ReassignCreator re-points created_by from one user to another and
	// returns the number of rows changed.
	ReassignCreator(ctx context.Context, fromUserID, toUserID string) (int64, error)
}

type ListRepository interface {
	CreateList(ctx context.Context, list *model.List) error
	GetListByID(ctx context.Context, id string) (*model.List, error)
	ListsByOwner(ctx context.Context, ownerID string) ([]model.List, error)
	UpdateList(ctx context.Context, list *model.List) error
	DeleteList(ctx context.Context, id string) error

	AddPlace(ctx context.Context, membership *model.ListPlace) error
	// RemovePlace deletes a membership. Removing an absent membership is
	// not an error.
	RemovePlace(ctx context.Context, sel MembershipSelector) error
	MembershipsForList(ctx context.Context, listID string) ([]model.ListPlace, error)
	ListsContainingPlace(ctx context.Context, placeID string) ([]model.List, error)

	ReassignOwner(ctx context.Context, fromUserID, toUserID string) (int64, error)
	ReassignAdder(ctx context.Context, fromUserID, toUserID string) (int64, error)
}
