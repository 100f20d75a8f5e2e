package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sizem-re/placelist/internal/apperror"
	"github.com/sizem-re/placelist/internal/repository"
)

// RepairService is the administrative batch fix-up for wrong attribution:
// it re-points the owner/creator references across all three tables from
// one user ID to another.
//
// The three table updates run independently and are NOT atomic as a
// group. A failure in one table is captured in the report and does not
// abort the others; a crash mid-way leaves some tables repaired and some
// not. That partial-consistency tradeoff is deliberate — the operation is
// re-runnable, and re-running it converges.
type RepairService struct {
	places repository.PlaceRepository
	lists  repository.ListRepository
	logger *slog.Logger
}

func NewRepairService(places repository.PlaceRepository, lists repository.ListRepository, logger *slog.Logger) *RepairService {
	return &RepairService{
		places: places,
		lists:  lists,
		logger: logger,
	}
}

// RepairReport gives per-table row counts and any captured errors.
type RepairReport struct {
	Places     int64    `json:"places"`
	Lists      int64    `json:"lists"`
	ListPlaces int64    `json:"listPlaces"`
	Errors     []string `json:"errors,omitempty"`
}

// ReassignOwner rewrites every owner/creator reference equal to
// fromUserID to toUserID, across places, lists, and list memberships.
func (s *RepairService) ReassignOwner(ctx context.Context, fromUserID, toUserID string) (*RepairReport, error) {
	fromUserID = strings.TrimSpace(fromUserID)
	toUserID = strings.TrimSpace(toUserID)

	if fromUserID == "" || toUserID == "" {
		return nil, apperror.ValidationFailed("ownerId", "both the wrong and the correct owner id are required")
	}
	if fromUserID == toUserID {
		return nil, apperror.ValidationFailed("ownerId", "wrong and correct owner ids must differ")
	}

	report := &RepairReport{}

	if n, err := s.places.ReassignCreator(ctx, fromUserID, toUserID); err != nil {
		s.logger.Error("repair: places table failed", slog.String("error", err.Error()))
		report.Errors = append(report.Errors, "places: "+err.Error())
	} else {
		report.Places = n
	}

	if n, err := s.lists.ReassignOwner(ctx, fromUserID, toUserID); err != nil {
		s.logger.Error("repair: lists table failed", slog.String("error", err.Error()))
		report.Errors = append(report.Errors, "lists: "+err.Error())
	} else {
		report.Lists = n
	}

	if n, err := s.lists.ReassignAdder(ctx, fromUserID, toUserID); err != nil {
		s.logger.Error("repair: list_places table failed", slog.String("error", err.Error()))
		report.Errors = append(report.Errors, "list_places: "+err.Error())
	} else {
		report.ListPlaces = n
	}

	s.logger.Info("ownership repair completed",
		slog.String("from", fromUserID),
		slog.String("to", toUserID),
		slog.Int64("places", report.Places),
		slog.Int64("lists", report.Lists),
		slog.Int64("listPlaces", report.ListPlaces),
		slog.Int("errors", len(report.Errors)),
	)

	return report, nil
}
