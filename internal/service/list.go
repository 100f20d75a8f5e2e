package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sizem-re/placelist/internal/apperror"
	"github.com/sizem-re/placelist/internal/model"
	"github.com/sizem-re/placelist/internal/repository"
)

const MaxListTitleLength = 150

// ListService handles lists and their place memberships.
type ListService struct {
	repo   repository.ListRepository
	users  repository.UserRepository
	logger *slog.Logger
}

func NewListService(repo repository.ListRepository, users repository.UserRepository, logger *slog.Logger) *ListService {
	return &ListService{
		repo:   repo,
		users:  users,
		logger: logger,
	}
}

// ListInput is the caller-supplied data for creating a list.
type ListInput struct {
	OwnerID       string
	Title         string
	Description   string
	Visibility    string // defaults to private when empty
	CoverImageURL string
}

// AddPlaceInput describes a membership to create.
type AddPlaceInput struct {
	ListID   string
	PlaceID  string
	AddedBy  string // empty for unattributed adds
	Note     string
	PhotoURL string
}

// CreateList validates and saves a new list.
//
// The owner reference is checked best-effort: the user must exist at
// creation time, but nothing prevents it disappearing afterwards — there
// is no foreign key, and repair tooling fixes attribution after the fact.
func (s *ListService) CreateList(ctx context.Context, in ListInput) (*model.List, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "list title is required")
	}
	if len(title) > MaxListTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("list title must be %d characters or less", MaxListTitleLength))
	}

	ownerID := strings.TrimSpace(in.OwnerID)
	if ownerID == "" {
		return nil, apperror.ValidationFailed("ownerId", "list owner is required")
	}

	visibility := strings.TrimSpace(in.Visibility)
	if visibility == "" {
		visibility = string(model.VisibilityPrivate)
	}
	if !model.ValidVisibility(visibility) {
		return nil, apperror.ValidationFailed("visibility",
			"visibility must be one of private, public, community")
	}

	if _, err := s.users.GetUserByID(ctx, ownerID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.ValidationFailed("ownerId", "list owner does not exist")
		}
		return nil, fmt.Errorf("checking list owner: %w", err)
	}

	list := &model.List{
		Title:         title,
		Description:   strings.TrimSpace(in.Description),
		Visibility:    model.Visibility(visibility),
		OwnerID:       ownerID,
		CoverImageURL: strings.TrimSpace(in.CoverImageURL),
	}

	if err := s.repo.CreateList(ctx, list); err != nil {
		s.logger.Error("failed to create list",
			slog.String("title", title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating list: %w", err)
	}

	s.logger.Info("list created",
		slog.String("id", list.ID),
		slog.String("ownerID", list.OwnerID),
	)

	return list, nil
}

// GetList returns a list the viewer is allowed to see. viewerID is empty
// for anonymous callers. A private list is reported as forbidden rather
// than pretending it doesn't exist — its ID is already known to the
// caller.
func (s *ListService) GetList(ctx context.Context, id, viewerID string) (*model.List, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "list id is required")
	}

	list, err := s.repo.GetListByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !list.CanView(viewerID) {
		return nil, apperror.Forbidden("this list is private")
	}

	return list, nil
}

// ListsForOwner returns the owner's lists, filtered to what the viewer
// may see. An owner browsing their own profile sees everything; everyone
// else sees only public and community lists.
func (s *ListService) ListsForOwner(ctx context.Context, ownerID, viewerID string) ([]model.List, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, apperror.ValidationFailed("ownerId", "owner id is required")
	}

	lists, err := s.repo.ListsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing lists: %w", err)
	}

	visible := lists[:0]
	for _, l := range lists {
		if l.CanView(viewerID) {
			visible = append(visible, l)
		}
	}

	return visible, nil
}

// UpdateList modifies list metadata. Owner only.
func (s *ListService) UpdateList(ctx context.Context, id, editorID string, in ListInput) (*model.List, error) {
	list, err := s.repo.GetListByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !list.CanEdit(editorID) {
		return nil, apperror.Forbidden("only the owner can edit a list")
	}

	if title := strings.TrimSpace(in.Title); title != "" {
		if len(title) > MaxListTitleLength {
			return nil, apperror.ValidationFailed("title",
				fmt.Sprintf("list title must be %d characters or less", MaxListTitleLength))
		}
		list.Title = title
	}
	if in.Description != "" {
		list.Description = strings.TrimSpace(in.Description)
	}
	if vis := strings.TrimSpace(in.Visibility); vis != "" {
		if !model.ValidVisibility(vis) {
			return nil, apperror.ValidationFailed("visibility",
				"visibility must be one of private, public, community")
		}
		list.Visibility = model.Visibility(vis)
	}
	if in.CoverImageURL != "" {
		list.CoverImageURL = strings.TrimSpace(in.CoverImageURL)
	}

	if err := s.repo.UpdateList(ctx, list); err != nil {
		return nil, fmt.Errorf("updating list: %w", err)
	}

	s.logger.Info("list updated", slog.String("id", list.ID))

	return list, nil
}

// DeleteList removes a list and its memberships. Owner only.
func (s *ListService) DeleteList(ctx context.Context, id, editorID string) error {
	list, err := s.repo.GetListByID(ctx, id)
	if err != nil {
		return err
	}

	if !list.CanEdit(editorID) {
		return apperror.Forbidden("only the owner can delete a list")
	}

	if err := s.repo.DeleteList(ctx, id); err != nil {
		return fmt.Errorf("deleting list: %w", err)
	}

	s.logger.Info("list deleted", slog.String("id", id))
	return nil
}

// AddPlace attaches a place to a list.
//
// Both ids are required. When the add is attributed (AddedBy set), the
// contribution rules apply: owner always, anyone signed-in on community
// lists. Unattributed adds are accepted for compatibility with imports.
// No duplicate check is performed — adding the same place twice creates
// two membership rows.
func (s *ListService) AddPlace(ctx context.Context, in AddPlaceInput) (*model.ListPlace, error) {
	listID := strings.TrimSpace(in.ListID)
	placeID := strings.TrimSpace(in.PlaceID)
	if listID == "" {
		return nil, apperror.ValidationFailed("listId", "list id is required")
	}
	if placeID == "" {
		return nil, apperror.ValidationFailed("placeId", "place id is required")
	}

	list, err := s.repo.GetListByID(ctx, listID)
	if err != nil {
		return nil, err
	}

	addedBy := strings.TrimSpace(in.AddedBy)
	if addedBy != "" && !list.CanAddTo(addedBy) {
		return nil, apperror.Forbidden("you cannot add places to this list")
	}

	membership := &model.ListPlace{
		ListID:   listID,
		PlaceID:  placeID,
		AddedBy:  addedBy,
		Note:     strings.TrimSpace(in.Note),
		PhotoURL: strings.TrimSpace(in.PhotoURL),
	}

	if err := s.repo.AddPlace(ctx, membership); err != nil {
		s.logger.Error("failed to add place to list",
			slog.String("listID", listID),
			slog.String("placeID", placeID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("adding place to list: %w", err)
	}

	s.logger.Info("place added to list",
		slog.String("listID", listID),
		slog.String("placeID", placeID),
	)

	return membership, nil
}

// RemovePlace detaches a place from a list, by membership ID or by the
// (list, place) pair. Removing an absent membership succeeds — the
// operation is idempotent for the caller.
func (s *ListService) RemovePlace(ctx context.Context, sel repository.MembershipSelector) error {
	if sel.MembershipID == "" && (sel.ListID == "" || sel.PlaceID == "") {
		return apperror.ValidationFailed("selector",
			"either a membership id or both listId and placeId are required")
	}

	if err := s.repo.RemovePlace(ctx, sel); err != nil {
		return fmt.Errorf("removing place from list: %w", err)
	}

	return nil
}

// Memberships returns the membership rows of a list the viewer can see.
func (s *ListService) Memberships(ctx context.Context, listID, viewerID string) ([]model.ListPlace, error) {
	list, err := s.GetList(ctx, listID, viewerID)
	if err != nil {
		return nil, err
	}

	memberships, err := s.repo.MembershipsForList(ctx, list.ID)
	if err != nil {
		return nil, fmt.Errorf("listing memberships: %w", err)
	}

	return memberships, nil
}

// ListsContainingPlace returns the lists a place belongs to, filtered to
// what the viewer may see.
func (s *ListService) ListsContainingPlace(ctx context.Context, placeID, viewerID string) ([]model.List, error) {
	placeID = strings.TrimSpace(placeID)
	if placeID == "" {
		return nil, apperror.ValidationFailed("placeId", "place id is required")
	}

	lists, err := s.repo.ListsContainingPlace(ctx, placeID)
	if err != nil {
		return nil, fmt.Errorf("listing lists containing place: %w", err)
	}

	visible := lists[:0]
	for _, l := range lists {
		if l.CanView(viewerID) {
			visible = append(visible, l)
		}
	}

	return visible, nil
}
