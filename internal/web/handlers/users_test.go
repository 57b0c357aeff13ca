package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kozaktomas/smart-attendance/internal/constants"
	"github.com/kozaktomas/smart-attendance/internal/imaging"
	"github.com/rs/zerolog"
)

func TestUsersHandler_List(t *testing.T) {
	env := newTestEnv(t, nil)
	h := env.attendanceHandler()
	assertStatusCode(t, register(t, h, "Alice", "A1", testPhoto(t, red)), http.StatusCreated)
	assertStatusCode(t, register(t, h, "Bob", "B2", testPhoto(t, green)), http.StatusCreated)

	recorder := httptest.NewRecorder()
	NewUsersHandler(env.service, zerolog.Nop()).List(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/users", nil))

	assertStatusCode(t, recorder, http.StatusOK)
	if strings.Contains(recorder.Body.String(), "base64") {
		t.Error("roster listing must not inline photos")
	}

	var users []UserResponse
	parseJSONResponse(t, recorder, &users)
	if len(users) != 2 || users[0].ID != "A1" || users[1].ID != "B2" {
		t.Errorf("unexpected roster: %+v", users)
	}
}

func TestUsersHandler_ListEmpty(t *testing.T) {
	env := newTestEnv(t, nil)

	recorder := httptest.NewRecorder()
	NewUsersHandler(env.service, zerolog.Nop()).List(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/users", nil))

	assertStatusCode(t, recorder, http.StatusOK)
	if body := strings.TrimSpace(recorder.Body.String()); body != "[]" {
		t.Errorf("expected empty JSON array, got %s", body)
	}
}

func TestUsersHandler_Photo(t *testing.T) {
	env := newTestEnv(t, nil)
	assertStatusCode(t, register(t, env.attendanceHandler(), "Alice Nováková", "A1", testPhoto(t, red)), http.StatusCreated)
	h := NewUsersHandler(env.service, zerolog.Nop())

	tests := []struct {
		name string
		id   string
		code int
	}{
		{"by id", "A1", http.StatusOK},
		{"by name without diacritics", "alice novakova", http.StatusOK},
		{"unknown", "Z9", http.StatusNotFound},
		{"missing", "", http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := requestWithChiParams(httptest.NewRequest(http.MethodGet, "/api/v1/users/x/photo", nil), map[string]string{"id": tc.id})
			recorder := httptest.NewRecorder()
			h.Photo(recorder, req)

			assertStatusCode(t, recorder, tc.code)
			if tc.code != http.StatusOK {
				return
			}
			assertContentType(t, recorder, "image/jpeg")
			if _, err := imaging.Decode(recorder.Body.Bytes()); err != nil {
				t.Errorf("photo is not a decodable image: %v", err)
			}
		})
	}
}

func TestUsersHandler_CorruptStoredPhoto(t *testing.T) {
	env := newTestEnv(t, nil)
	blob := []byte(`[{"id":"A1","name":"Alice","photo":"data:image/jpeg;base64,%%%"}]`)
	if err := env.backend.Put(t.Context(), constants.UsersKey, blob); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	req := requestWithChiParams(httptest.NewRequest(http.MethodGet, "/api/v1/users/A1/photo", nil), map[string]string{"id": "A1"})
	recorder := httptest.NewRecorder()
	NewUsersHandler(env.service, zerolog.Nop()).Photo(recorder, req)

	assertStatusCode(t, recorder, http.StatusInternalServerError)
	if bytes.HasPrefix(recorder.Body.Bytes(), []byte{0xFF, 0xD8}) {
		t.Error("corrupt photo must not be served as JPEG")
	}
}
