package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sizem-re/placelist/internal/auth"
	"github.com/sizem-re/placelist/internal/handler"
	"github.com/sizem-re/placelist/internal/model"
	"github.com/sizem-re/placelist/internal/repository/sqlite"
	"github.com/sizem-re/placelist/internal/service"
)

// testEnv wires the handlers over an in-memory database so handler tests
// exercise the real decode → service → repository path.
type testEnv struct {
	db     *sqlite.DB
	auth   *handler.AuthHandler
	places *handler.PlaceHandler
	lists  *handler.ListHandler

	authService  *service.AuthService
	listService  *service.ListService
	placeService *service.PlaceService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := sqlite.New(":memory:", logger)
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("handler-test-secret-16+chars")
	if err != nil {
		t.Fatalf("creating token service: %v", err)
	}

	authService := service.NewAuthService(db, tokens, nil, nil, logger)
	placeService := service.NewPlaceService(db, logger)
	listService := service.NewListService(db, db, logger)

	return &testEnv{
		db:           db,
		auth:         handler.NewAuthHandler(authService, logger),
		places:       handler.NewPlaceHandler(placeService, logger),
		lists:        handler.NewListHandler(listService, logger),
		authService:  authService,
		listService:  listService,
		placeService: placeService,
	}
}

func (e *testEnv) registerUser(t *testing.T, fid string) *model.User {
	t.Helper()
	user, err := e.authService.Reconcile(context.Background(), fid, service.Profile{Username: "u" + fid})
	if err != nil {
		t.Fatalf("registering test user: %v", err)
	}
	return user
}

// doJSON builds a request with a JSON body and records the handler's
// response. userID, when non-empty, is injected the way the auth
// middleware would.
func doJSON(h http.HandlerFunc, method, target, body, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req = req.WithContext(auth.WithUserID(req.Context(), userID))
	}
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

// doJSONID is doJSON for routes with an {id} path parameter.
func doJSONID(h http.HandlerFunc, method, target, body, userID, id string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.SetPathValue("id", id)
	if userID != "" {
		req = req.WithContext(auth.WithUserID(req.Context(), userID))
	}
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(dst); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
}
