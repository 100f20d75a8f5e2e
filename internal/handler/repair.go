package handler

import (
	"log/slog"
	"net/http"

	"github.com/sizem-re/placelist/internal/apperror"
	"github.com/sizem-re/placelist/internal/auth"
	"github.com/sizem-re/placelist/internal/service"
)

// RepairHandler exposes the administrative ownership repair.
type RepairHandler struct {
	repair       *service.RepairService
	adminKeyHash string
	logger       *slog.Logger
}

// NewRepairHandler creates a RepairHandler. adminKeyHash is the bcrypt
// hash the X-Admin-Key header is checked against; when empty the endpoint
// always refuses.
func NewRepairHandler(repair *service.RepairService, adminKeyHash string, logger *slog.Logger) *RepairHandler {
	return &RepairHandler{repair: repair, adminKeyHash: adminKeyHash, logger: logger}
}

type reassignOwnerRequest struct {
	WrongOwnerID   string `json:"wrongOwnerId"`
	CorrectOwnerID string `json:"correctOwnerId"`
}

// HandleReassignOwner rewrites ownership references from one user id to
// another across places, lists, and memberships.
//
// HTTP: POST /admin/reassign-owner
// Auth: X-Admin-Key header
//
// The response reports per-table update counts. A failed table shows up
// in the errors array; the other tables are still attempted, so a 200
// response can carry partial results.
func (h *RepairHandler) HandleReassignOwner(w http.ResponseWriter, r *http.Request) {
	if err := auth.CheckAdminKey(h.adminKeyHash, r.Header.Get("X-Admin-Key")); err != nil {
		h.logger.Warn("repair: admin key rejected", slog.String("remote", r.RemoteAddr))
		writeError(w, apperror.Unauthorized("invalid admin key"))
		return
	}

	var req reassignOwnerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	report, err := h.repair.ReassignOwner(r.Context(), req.WrongOwnerID, req.CorrectOwnerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}
