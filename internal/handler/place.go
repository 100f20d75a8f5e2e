package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/sizem-re/placelist/internal/apperror"
	"github.com/sizem-re/placelist/internal/model"
	"github.com/sizem-re/placelist/internal/service"
)

// PlaceHandler manages CRUD and search for places.
type PlaceHandler struct {
	places *service.PlaceService
	logger *slog.Logger
}

// NewPlaceHandler creates a PlaceHandler.
func NewPlaceHandler(places *service.PlaceService, logger *slog.Logger) *PlaceHandler {
	return &PlaceHandler{places: places, logger: logger}
}

type coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// placeJSON is the wire shape for a place: coordinates nested under a
// single key rather than two top-level columns.
type placeJSON struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Address     string      `json:"address,omitempty"`
	Coordinates coordinates `json:"coordinates"`
	Type        string      `json:"type,omitempty"`
	Description string      `json:"description,omitempty"`
	WebsiteURL  string      `json:"website_url,omitempty"`
	ImageURL    string      `json:"image_url,omitempty"`
	CreatedBy   string      `json:"created_by,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

func toPlaceJSON(p *model.Place) placeJSON {
	return placeJSON{
		ID:          p.ID,
		Name:        p.Name,
		Address:     p.Address,
		Coordinates: coordinates{Lat: p.Latitude, Lng: p.Longitude},
		Type:        p.Category,
		Description: p.Description,
		WebsiteURL:  p.WebsiteURL,
		ImageURL:    p.ImageURL,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toPlaceJSONList(places []model.Place) []placeJSON {
	out := make([]placeJSON, 0, len(places))
	for i := range places {
		out = append(out, toPlaceJSON(&places[i]))
	}
	return out
}

type createPlaceRequest struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Address     string   `json:"address"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	WebsiteURL  string   `json:"website_url"`
	ImageURL    string   `json:"image_url"`
	CreatedBy   string   `json:"created_by"`
}

// HandleCreate stores a new place.
//
// HTTP: POST /api/places
func (h *PlaceHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createPlaceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Lat == nil || req.Lng == nil {
		writeError(w, apperror.ValidationFailed("lat", "lat and lng are required"))
		return
	}

	place, err := h.places.Create(r.Context(), service.PlaceInput{
		ID:          req.ID,
		Name:        req.Name,
		Address:     req.Address,
		Latitude:    *req.Lat,
		Longitude:   *req.Lng,
		Category:    req.Type,
		Description: req.Description,
		WebsiteURL:  req.WebsiteURL,
		ImageURL:    req.ImageURL,
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toPlaceJSON(place))
}

// HandleList searches places, optionally filtered by creator, name query,
// and proximity.
//
// HTTP: GET /api/places?userId=&query=&lat=&lng=&radius=
//
// The three proximity parameters travel together; supplying some but not
// all of them is a validation error.
func (h *PlaceHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	opts := service.SearchOptions{
		CreatedBy: q.Get("userId"),
		Query:     q.Get("query"),
	}

	latStr, lngStr, radiusStr := q.Get("lat"), q.Get("lng"), q.Get("radius")
	if latStr != "" || lngStr != "" || radiusStr != "" {
		if latStr == "" || lngStr == "" || radiusStr == "" {
			writeError(w, apperror.ValidationFailed("radius", "lat, lng and radius must be supplied together"))
			return
		}
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			writeError(w, apperror.ValidationFailed("lat", "must be a number"))
			return
		}
		lng, err := strconv.ParseFloat(lngStr, 64)
		if err != nil {
			writeError(w, apperror.ValidationFailed("lng", "must be a number"))
			return
		}
		radius, err := strconv.ParseFloat(radiusStr, 64)
		if err != nil {
			writeError(w, apperror.ValidationFailed("radius", "must be a number"))
			return
		}
		opts.Near = &service.NearFilter{Latitude: lat, Longitude: lng, RadiusKm: radius}
	}

	places, err := h.places.Search(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPlaceJSONList(places))
}

// HandleGet returns one place by id.
//
// HTTP: GET /api/places/{id}
func (h *PlaceHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	place, err := h.places.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlaceJSON(place))
}

type updatePlaceRequest struct {
	Name        *string  `json:"name"`
	Address     *string  `json:"address"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	Type        *string  `json:"type"`
	Description *string  `json:"description"`
	WebsiteURL  *string  `json:"website_url"`
	ImageURL    *string  `json:"image_url"`
}

// HandlePatch partially updates a place. Absent fields keep their stored
// values.
//
// HTTP: PATCH /api/places/{id}
func (h *PlaceHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	var req updatePlaceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	place, err := h.places.Update(r.Context(), r.PathValue("id"), service.PlaceUpdate{
		Name:        req.Name,
		Address:     req.Address,
		Latitude:    req.Lat,
		Longitude:   req.Lng,
		Category:    req.Type,
		Description: req.Description,
		WebsiteURL:  req.WebsiteURL,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPlaceJSON(place))
}

// HandleDelete removes a place.
//
// HTTP: DELETE /api/places/{id}
func (h *PlaceHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.places.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
