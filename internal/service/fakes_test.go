package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/sizem-re/placelist/internal/apperror"
	"github.com/sizem-re/placelist/internal/model"
	"github.com/sizem-re/placelist/internal/repository"
)

// In-memory fakes for the repository interfaces. Hand-written rather than
// generated so each test reads without a mock framework's indirection;
// error fields simulate storage failures.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- users ---

type fakeUserRepo struct {
	users  map[string]*model.User // keyed by internal ID
	byFID  map[string]*model.User
	nextID int

	upsertErr error
	getErr    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users: make(map[string]*model.User),
		byFID: make(map[string]*model.User),
	}
}

func (f *fakeUserRepo) Upsert(_ context.Context, user *model.User) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}

	if existing, ok := f.byFID[user.FID]; ok {
		existing.Username = user.Username
		existing.DisplayName = user.DisplayName
		existing.PfpURL = user.PfpURL
		existing.UpdatedAt = time.Now()
		*user = *existing
		return nil
	}

	f.nextID++
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	stored := *user
	f.users[user.ID] = &stored
	f.byFID[user.FID] = &stored
	return nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	result := *u
	return &result, nil
}

func (f *fakeUserRepo) GetUserByFID(_ context.Context, fid string) (*model.User, error) {
	u, ok := f.byFID[fid]
	if !ok {
		return nil, apperror.NotFound("user", fid)
	}
	result := *u
	return &result, nil
}

// --- places ---

type fakePlaceRepo struct {
	places []*model.Place
	nextID int

	createErr   error
	listErr     error
	reassignErr error
}

func newFakePlaceRepo() *fakePlaceRepo {
	return &fakePlaceRepo{}
}

func (f *fakePlaceRepo) Create(_ context.Context, place *model.Place) error {
	if f.createErr != nil {
		return f.createErr
	}
	if place.ID == "" {
		f.nextID++
		place.ID = fmt.Sprintf("place-%d", f.nextID)
	}
	now := time.Now()
	place.CreatedAt = now
	place.UpdatedAt = now

	stored := *place
	f.places = append(f.places, &stored)
	return nil
}

func (f *fakePlaceRepo) GetByID(_ context.Context, id string) (*model.Place, error) {
	for _, p := range f.places {
		if p.ID == id {
			result := *p
			return &result, nil
		}
	}
	return nil, apperror.NotFound("place", id)
}

func (f *fakePlaceRepo) List(_ context.Context, filter repository.PlaceFilter) ([]model.Place, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}

	result := []model.Place{}
	for _, p := range f.places {
		if filter.CreatedBy != "" && p.CreatedBy != filter.CreatedBy {
			continue
		}
		if filter.NameContains != "" &&
			!strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.NameContains)) {
			continue
		}
		if filter.BBox != nil && !filter.BBox.Contains(p.Latitude, p.Longitude) {
			continue
		}
		result = append(result, *p)
	}
	return result, nil
}

func (f *fakePlaceRepo) Update(_ context.Context, place *model.Place) error {
	for i, p := range f.places {
		if p.ID == place.ID {
			place.UpdatedAt = time.Now()
			stored := *place
			f.places[i] = &stored
			return nil
		}
	}
	return apperror.NotFound("place", place.ID)
}

func (f *fakePlaceRepo) Delete(_ context.Context, id string) error {
	for i, p := range f.places {
		if p.ID == id {
			f.places = append(f.places[:i], f.places[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("place", id)
}

func (f *fakePlaceRepo) ReassignCreator(_ context.Context, fromUserID, toUserID string) (int64, error) {
	if f.reassignErr != nil {
		return 0, f.reassignErr
	}
	var n int64
	for _, p := range f.places {
		if p.CreatedBy == fromUserID {
			p.CreatedBy = toUserID
			n++
		}
	}
	return n, nil
}

// --- lists ---

type fakeListRepo struct {
	lists       []*model.List
	memberships []*model.ListPlace
	nextID      int

	addErr         error
	reassignOwner  error
	reassignAdders error
}

func newFakeListRepo() *fakeListRepo {
	return &fakeListRepo{}
}

func (f *fakeListRepo) CreateList(_ context.Context, list *model.List) error {
	f.nextID++
	list.ID = fmt.Sprintf("list-%d", f.nextID)
	now := time.Now()
	list.CreatedAt = now
	list.UpdatedAt = now

	stored := *list
	f.lists = append(f.lists, &stored)
	return nil
}

func (f *fakeListRepo) GetListByID(_ context.Context, id string) (*model.List, error) {
	for _, l := range f.lists {
		if l.ID == id {
			result := *l
			return &result, nil
		}
	}
	return nil, apperror.NotFound("list", id)
}

func (f *fakeListRepo) ListsByOwner(_ context.Context, ownerID string) ([]model.List, error) {
	result := []model.List{}
	for _, l := range f.lists {
		if l.OwnerID == ownerID {
			result = append(result, *l)
		}
	}
	return result, nil
}

func (f *fakeListRepo) UpdateList(_ context.Context, list *model.List) error {
	for i, l := range f.lists {
		if l.ID == list.ID {
			stored := *list
			f.lists[i] = &stored
			return nil
		}
	}
	return apperror.NotFound("list", list.ID)
}

func (f *fakeListRepo) DeleteList(_ context.Context, id string) error {
	for i, l := range f.lists {
		if l.ID == id {
			f.lists = append(f.lists[:i], f.lists[i+1:]...)
			kept := f.memberships[:0]
			for _, m := range f.memberships {
				if m.ListID != id {
					kept = append(kept, m)
				}
			}
			f.memberships = kept
			return nil
		}
	}
	return apperror.NotFound("list", id)
}

func (f *fakeListRepo) AddPlace(_ context.Context, membership *model.ListPlace) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.nextID++
	membership.ID = fmt.Sprintf("membership-%d", f.nextID)
	membership.AddedAt = time.Now()

	stored := *membership
	f.memberships = append(f.memberships, &stored)
	return nil
}

func (f *fakeListRepo) RemovePlace(_ context.Context, sel repository.MembershipSelector) error {
	kept := f.memberships[:0]
	for _, m := range f.memberships {
		match := (sel.MembershipID != "" && m.ID == sel.MembershipID) ||
			(sel.MembershipID == "" && m.ListID == sel.ListID && m.PlaceID == sel.PlaceID)
		if !match {
			kept = append(kept, m)
		}
	}
	f.memberships = kept
	return nil
}

func (f *fakeListRepo) MembershipsForList(_ context.Context, listID string) ([]model.ListPlace, error) {
	result := []model.ListPlace{}
	for _, m := range f.memberships {
		if m.ListID == listID {
			result = append(result, *m)
		}
	}
	return result, nil
}

func (f *fakeListRepo) ListsContainingPlace(_ context.Context, placeID string) ([]model.List, error) {
	seen := map[string]bool{}
	result := []model.List{}
	for _, m := range f.memberships {
		if m.PlaceID != placeID || seen[m.ListID] {
			continue
		}
		seen[m.ListID] = true
		for _, l := range f.lists {
			if l.ID == m.ListID {
				result = append(result, *l)
			}
		}
	}
	return result, nil
}

func (f *fakeListRepo) ReassignOwner(_ context.Context, fromUserID, toUserID string) (int64, error) {
	if f.reassignOwner != nil {
		return 0, f.reassignOwner
	}
	var n int64
	for _, l := range f.lists {
		if l.OwnerID == fromUserID {
			l.OwnerID = toUserID
			n++
		}
	}
	return n, nil
}

func (f *fakeListRepo) ReassignAdder(_ context.Context, fromUserID, toUserID string) (int64, error) {
	if f.reassignAdders != nil {
		return 0, f.reassignAdders
	}
	var n int64
	for _, m := range f.memberships {
		if m.AddedBy == fromUserID {
			m.AddedBy = toUserID
			n++
		}
	}
	return n, nil
}
