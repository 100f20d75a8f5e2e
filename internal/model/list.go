package model

import "time"

// Visibility controls who can see and contribute to a list.
type Visibility string

const (
	VisibilityPrivate   Visibility = "private"   // owner only
	VisibilityPublic    Visibility = "public"    // anyone can view
	VisibilityCommunity Visibility = "community" // anyone can view and add places
)

// ValidVisibility reports whether s is one of the three visibility values.
func ValidVisibility(s string) bool {
	switch Visibility(s) {
	case VisibilityPrivate, VisibilityPublic, VisibilityCommunity:
		return true
	}
	return false
}

// List is a curated collection of places owned by a user.
type List struct {
	ID            string     `json:"id"            db:"id"`
	Title         string     `json:"title"         db:"title"`
	Description   string     `json:"description"   db:"description"`
	Visibility    Visibility `json:"visibility"    db:"visibility"`
	OwnerID       string     `json:"ownerId"       db:"owner_id"`
	CoverImageURL string     `json:"coverImageUrl" db:"cover_image_url"`
	CreatedAt     time.Time  `json:"createdAt"     db:"created_at"`
	UpdatedAt     time.Time  `json:"updatedAt"     db:"updated_at"`
}

// The permission predicates are pure functions over a list and a user ID —
// no I/O, no stored roles. An empty userID means an anonymous caller.

// CanEdit reports whether the user may modify the list itself
// (title, description, visibility, deletion). Owner only.
func (l *List) CanEdit(userID string) bool {
	return userID != "" && userID == l.OwnerID
}

// CanAddTo reports whether the user may add places to the list.
// The owner always can; community lists accept contributions from anyone
// signed in.
func (l *List) CanAddTo(userID string) bool {
	if l.CanEdit(userID) {
		return true
	}
	return userID != "" && l.Visibility == VisibilityCommunity
}

// CanView reports whether the user may see the list at all.
// Public and community lists are visible to everyone, including anonymous
// callers; private lists only to their owner.
func (l *List) CanView(userID string) bool {
	if l.Visibility == VisibilityPublic || l.Visibility == VisibilityCommunity {
		return true
	}
	return l.CanEdit(userID)
}

// ListPlace is a membership row attaching a Place to a List, with
// attribution for who added it. Both references are weak back-references:
// deleting a place does not cascade here, and orphaned rows are expected
// to be cleaned up administratively.
//
// (listID, placeID) is conceptually unique per list but the schema does
// not enforce it; callers that must not double-add should check first.
type ListPlace struct {
	ID       string    `json:"id"       db:"id"`
	ListID   string    `json:"listId"   db:"list_id"`
	PlaceID  string    `json:"placeId"  db:"place_id"`
	AddedBy  string    `json:"addedBy"  db:"added_by"`
	Note     string    `json:"note"     db:"note"`
	PhotoURL string    `json:"photoUrl" db:"photo_url"`
	AddedAt  time.Time `json:"addedAt"  db:"added_at"`
}
