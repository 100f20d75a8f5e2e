// Package model defines the data structures shared across the application.
package model

import "time"

// User is a local account reconciled from a Farcaster identity.
//
// The FID (Farcaster ID) is the external identity anchor: the users table
// carries a UNIQUE constraint on it, so one Farcaster account maps to
// exactly one local user no matter how many times sign-in runs. We still
// generate our own internal string ID (xid) so primary keys aren't tied
// to a third party's numbering scheme.
//
// Profile fields come from the identity provider and are refreshed on
// every successful sign-in; missing values fall back to the empty string
// rather than a nullable pointer.
type User struct {
	ID          string    `json:"id"          db:"id"`
	FID         string    `json:"fid"         db:"fid"` // Farcaster ID, e.g. "3621"
	Username    string    `json:"username"    db:"username"`
	DisplayName string    `json:"displayName" db:"display_name"`
	PfpURL      string    `json:"pfpUrl"      db:"pfp_url"` // profile picture URL
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt"   db:"updated_at"`
}
