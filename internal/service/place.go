package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sizem-re/placelist/internal/apperror"
	"github.com/sizem-re/placelist/internal/geo"
	"github.com/sizem-re/placelist/internal/model"
	"github.com/sizem-re/placelist/internal/repository"
)

const (
	MaxPlaceNameLength = 200
	MaxDescriptionLen  = 2000
)

// PlaceService handles business logic for places: validation, partial
// updates, and the proximity search.
type PlaceService struct {
	repo   repository.PlaceRepository
	logger *slog.Logger
}

func NewPlaceService(repo repository.PlaceRepository, logger *slog.Logger) *PlaceService {
	return &PlaceService{
		repo:   repo,
		logger: logger,
	}
}

// PlaceInput is the caller-supplied data for creating a place. ID is
// optional; when set it is used verbatim (imports and client-generated
// identifiers).
type PlaceInput struct {
	ID          string
	Name        string
	Address     string
	Latitude    float64
	Longitude   float64
	Category    string
	Description string
	WebsiteURL  string
	ImageURL    string
	CreatedBy   string
}

// PlaceUpdate carries a partial update: nil fields are left unchanged.
type PlaceUpdate struct {
	Name        *string
	Address     *string
	Latitude    *float64
	Longitude   *float64
	Category    *string
	Description *string
	WebsiteURL  *string
	ImageURL    *string
}

// NearFilter is a proximity query: places within radiusKm of the centre,
// by bounding-box over-approximation.
type NearFilter struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
}

// SearchOptions narrows a place listing. Zero values are ignored.
type SearchOptions struct {
	CreatedBy string
	Query     string // case-insensitive substring match on name
	Near      *NearFilter
}

// Create validates and saves a new place. Name and in-range coordinates
// are required.
func (s *PlaceService) Create(ctx context.Context, in PlaceInput) (*model.Place, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "place name is required")
	}
	if len(name) > MaxPlaceNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("place name must be %d characters or less", MaxPlaceNameLength))
	}
	if !geo.ValidCoordinates(in.Latitude, in.Longitude) {
		return nil, apperror.ValidationFailed("coordinates",
			"latitude must be in [-90,90] and longitude in [-180,180]")
	}
	if len(in.Description) > MaxDescriptionLen {
		return nil, apperror.ValidationFailed("description",
			fmt.Sprintf("description must be %d characters or less", MaxDescriptionLen))
	}

	place := &model.Place{
		ID:          strings.TrimSpace(in.ID),
		Name:        name,
		Address:     strings.TrimSpace(in.Address),
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		Category:    strings.TrimSpace(in.Category),
		Description: strings.TrimSpace(in.Description),
		WebsiteURL:  strings.TrimSpace(in.WebsiteURL),
		ImageURL:    strings.TrimSpace(in.ImageURL),
		CreatedBy:   strings.TrimSpace(in.CreatedBy),
	}

	if err := s.repo.Create(ctx, place); err != nil {
		s.logger.Error("failed to create place",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating place: %w", err)
	}

	s.logger.Info("place created",
		slog.String("id", place.ID),
		slog.String("name", place.Name),
	)

	return place, nil
}

// Get retrieves a place by ID.
func (s *PlaceService) Get(ctx context.Context, id string) (*model.Place, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "place id is required")
	}
	return s.repo.GetByID(ctx, id)
}

// Update applies a partial update: fetch, merge the supplied fields,
// save. Coordinates are re-validated as a pair so an update can't push a
// place out of range.
func (s *PlaceService) Update(ctx context.Context, id string, upd PlaceUpdate) (*model.Place, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "place id is required")
	}

	place, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, apperror.ValidationFailed("name", "place name cannot be emptied")
		}
		if len(name) > MaxPlaceNameLength {
			return nil, apperror.ValidationFailed("name",
				fmt.Sprintf("place name must be %d characters or less", MaxPlaceNameLength))
		}
		place.Name = name
	}
	if upd.Address != nil {
		place.Address = strings.TrimSpace(*upd.Address)
	}
	if upd.Latitude != nil {
		place.Latitude = *upd.Latitude
	}
	if upd.Longitude != nil {
		place.Longitude = *upd.Longitude
	}
	if upd.Latitude != nil || upd.Longitude != nil {
		if !geo.ValidCoordinates(place.Latitude, place.Longitude) {
			return nil, apperror.ValidationFailed("coordinates",
				"latitude must be in [-90,90] and longitude in [-180,180]")
		}
	}
	if upd.Category != nil {
		place.Category = strings.TrimSpace(*upd.Category)
	}
	if upd.Description != nil {
		if len(*upd.Description) > MaxDescriptionLen {
			return nil, apperror.ValidationFailed("description",
				fmt.Sprintf("description must be %d characters or less", MaxDescriptionLen))
		}
		place.Description = strings.TrimSpace(*upd.Description)
	}
	if upd.WebsiteURL != nil {
		place.WebsiteURL = strings.TrimSpace(*upd.WebsiteURL)
	}
	if upd.ImageURL != nil {
		place.ImageURL = strings.TrimSpace(*upd.ImageURL)
	}

	if err := s.repo.Update(ctx, place); err != nil {
		s.logger.Error("failed to update place",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating place: %w", err)
	}

	s.logger.Info("place updated", slog.String("id", place.ID))

	return place, nil
}

// Delete removes a place by ID.
func (s *PlaceService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "place id is required")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("place deleted", slog.String("id", id))
	return nil
}

// Search lists places matching the options. A proximity filter turns into
// a bounding box: Δlat = r/111, Δlng = r/(111·cos lat). The box is an
// over-approximation of the circle; rows whose stored coordinates don't
// coerce to valid numbers are dropped from proximity results by the
// repository, never surfaced as errors.
func (s *PlaceService) Search(ctx context.Context, opts SearchOptions) ([]model.Place, error) {
	filter := repository.PlaceFilter{
		CreatedBy:    strings.TrimSpace(opts.CreatedBy),
		NameContains: strings.TrimSpace(opts.Query),
	}

	if opts.Near != nil {
		if !geo.ValidCoordinates(opts.Near.Latitude, opts.Near.Longitude) {
			return nil, apperror.ValidationFailed("coordinates",
				"search centre must be a valid coordinate pair")
		}
		if opts.Near.RadiusKm <= 0 {
			return nil, apperror.ValidationFailed("radius", "radius must be positive")
		}
		box := geo.NewBoundingBox(opts.Near.Latitude, opts.Near.Longitude, opts.Near.RadiusKm)
		filter.BBox = &box
	}

	places, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to search places", slog.String("error", err.Error()))
		return nil, fmt.Errorf("searching places: %w", err)
	}

	return places, nil
}
