package handler

import (
	"log/slog"
	"net/http"

	"github.com/sizem-re/placelist/internal/apperror"
	"github.com/sizem-re/placelist/internal/auth"
	"github.com/sizem-re/placelist/internal/repository"
	"github.com/sizem-re/placelist/internal/service"
)

// ListHandler manages lists and their place memberships.
type ListHandler struct {
	lists  *service.ListService
	logger *slog.Logger
}

// NewListHandler creates a ListHandler.
func NewListHandler(lists *service.ListService, logger *slog.Logger) *ListHandler {
	return &ListHandler{lists: lists, logger: logger}
}

// viewerID returns the authenticated user's id, or "" for anonymous
// callers. Visibility filtering happens in the service.
func viewerID(r *http.Request) string {
	id, _ := auth.UserIDFromContext(r.Context())
	return id
}

type createListRequest struct {
	OwnerID       string `json:"ownerId"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Visibility    string `json:"visibility"`
	CoverImageURL string `json:"coverImageUrl"`
}

// HandleCreate creates a list. The owner is the authenticated user when
// present; unauthenticated callers must name an owner explicitly.
//
// HTTP: POST /api/lists
func (h *ListHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createListRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ownerID := req.OwnerID
	if id, ok := auth.UserIDFromContext(r.Context()); ok {
		ownerID = id
	}

	list, err := h.lists.CreateList(r.Context(), service.ListInput{
		OwnerID:       ownerID,
		Title:         req.Title,
		Description:   req.Description,
		Visibility:    req.Visibility,
		CoverImageURL: req.CoverImageURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, list)
}

// HandleList returns an owner's lists, filtered by what the caller may
// view.
//
// HTTP: GET /api/lists?ownerId= (userId accepted as an alias)
func (h *ListHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("ownerId")
	if ownerID == "" {
		ownerID = r.URL.Query().Get("userId")
	}
	if ownerID == "" {
		ownerID = viewerID(r)
	}
	if ownerID == "" {
		writeError(w, apperror.ValidationFailed("ownerId", "owner id is required"))
		return
	}

	lists, err := h.lists.ListsForOwner(r.Context(), ownerID, viewerID(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, lists)
}

// HandleGet returns one list.
//
// HTTP: GET /api/lists/{id}
func (h *ListHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	list, err := h.lists.GetList(r.Context(), r.PathValue("id"), viewerID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleUpdate replaces a list's editable fields. Owner only.
//
// HTTP: PATCH /api/lists/{id}
func (h *ListHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req createListRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	list, err := h.lists.UpdateList(r.Context(), r.PathValue("id"), viewerID(r), service.ListInput{
		Title:         req.Title,
		Description:   req.Description,
		Visibility:    req.Visibility,
		CoverImageURL: req.CoverImageURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// HandleDelete removes a list and its memberships. Owner only.
//
// HTTP: DELETE /api/lists/{id}
func (h *ListHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.lists.DeleteList(r.Context(), r.PathValue("id"), viewerID(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleMemberships returns the memberships of a list.
//
// HTTP: GET /api/lists/{id}/places
func (h *ListHandler) HandleMemberships(w http.ResponseWriter, r *http.Request) {
	memberships, err := h.lists.Memberships(r.Context(), r.PathValue("id"), viewerID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, memberships)
}

type addPlaceRequest struct {
	ListID   string `json:"listId"`
	PlaceID  string `json:"placeId"`
	UserID   string `json:"userId"`
	Note     string `json:"note"`
	PhotoURL string `json:"photoUrl"`
}

// HandleAddPlace attaches a place to a list.
//
// HTTP: POST /api/list-places
//
// The adder is the authenticated user when present, else the userId from
// the body, else the add is unattributed (legacy import path).
func (h *ListHandler) HandleAddPlace(w http.ResponseWriter, r *http.Request) {
	var req addPlaceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	addedBy := req.UserID
	if id, ok := auth.UserIDFromContext(r.Context()); ok {
		addedBy = id
	}

	membership, err := h.lists.AddPlace(r.Context(), service.AddPlaceInput{
		ListID:   req.ListID,
		PlaceID:  req.PlaceID,
		AddedBy:  addedBy,
		Note:     req.Note,
		PhotoURL: req.PhotoURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, membership)
}

// HandleRemovePlace detaches a place from a list, selected either by the
// (listId, placeId) pair or by membership id. Removing an absent
// membership succeeds.
//
// HTTP: DELETE /api/list-places?listId=&placeId= or ?id=
func (h *ListHandler) HandleRemovePlace(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	err := h.lists.RemovePlace(r.Context(), repository.MembershipSelector{
		MembershipID: q.Get("id"),
		ListID:       q.Get("listId"),
		PlaceID:      q.Get("placeId"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// HandleListsContainingPlace returns the lists a place belongs to, minus
// those the caller may not view.
//
// HTTP: GET /api/places/{id}/lists
func (h *ListHandler) HandleListsContainingPlace(w http.ResponseWriter, r *http.Request) {
	lists, err := h.lists.ListsContainingPlace(r.Context(), r.PathValue("id"), viewerID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lists)
}
