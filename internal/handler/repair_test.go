package handler_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sizem-re/placelist/internal/auth"
	"github.com/sizem-re/placelist/internal/handler"
	"github.com/sizem-re/placelist/internal/service"
)

const testAdminKey = "correct-horse-battery"

func newRepairEnv(t *testing.T) (*testEnv, *handler.RepairHandler) {
	t.Helper()
	env := newTestEnv(t)

	hash, err := auth.HashAdminKey(testAdminKey)
	if err != nil {
		t.Fatalf("hashing admin key: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repairService := service.NewRepairService(env.db, env.db, logger)
	return env, handler.NewRepairHandler(repairService, hash, logger)
}

func doRepair(h *handler.RepairHandler, body, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/admin/reassign-owner", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("X-Admin-Key", key)
	}
	rr := httptest.NewRecorder()
	h.HandleReassignOwner(rr, req)
	return rr
}

func TestHandleReassignOwner(t *testing.T) {
	env, repair := newRepairEnv(t)
	wrong := env.registerUser(t, "1")
	correct := env.registerUser(t, "2")

	// Two places and one list attributed to the wrong user.
	for _, body := range []string{
		`{"name":"A","lat":1.0,"lng":1.0,"created_by":"` + wrong.ID + `"}`,
		`{"name":"B","lat":2.0,"lng":2.0,"created_by":"` + wrong.ID + `"}`,
	} {
		rr := doJSON(env.places.HandleCreate, http.MethodPost, "/api/places", body, "")
		assert.Equal(t, http.StatusCreated, rr.Code)
	}
	rr := doJSON(env.lists.HandleCreate, http.MethodPost, "/api/lists",
		`{"title":"Misowned"}`, wrong.ID)
	assert.Equal(t, http.StatusCreated, rr.Code)

	body := `{"wrongOwnerId":"` + wrong.ID + `","correctOwnerId":"` + correct.ID + `"}`
	rr = doRepair(repair, body, testAdminKey)

	assert.Equal(t, http.StatusOK, rr.Code)

	var report struct {
		Places     int64    `json:"places"`
		Lists      int64    `json:"lists"`
		ListPlaces int64    `json:"listPlaces"`
		Errors     []string `json:"errors"`
	}
	decodeBody(t, rr, &report)
	assert.EqualValues(t, 2, report.Places)
	assert.EqualValues(t, 1, report.Lists)
	assert.EqualValues(t, 0, report.ListPlaces)
	assert.Empty(t, report.Errors)
}

func TestHandleReassignOwner_AdminKey(t *testing.T) {
	_, repair := newRepairEnv(t)
	body := `{"wrongOwnerId":"a","correctOwnerId":"b"}`

	t.Run("missing key", func(t *testing.T) {
		rr := doRepair(repair, body, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("wrong key", func(t *testing.T) {
		rr := doRepair(repair, body, "guess")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestHandleReassignOwner_Validation(t *testing.T) {
	_, repair := newRepairEnv(t)

	t.Run("same id", func(t *testing.T) {
		rr := doRepair(repair, `{"wrongOwnerId":"x","correctOwnerId":"x"}`, testAdminKey)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("missing id", func(t *testing.T) {
		rr := doRepair(repair, `{"wrongOwnerId":"x"}`, testAdminKey)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
