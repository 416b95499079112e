package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvdesk/internal/config"
)

func testStore() *Store {
	cfg := &config.Config{}
	cfg.Session.Secret = "test-secret"
	return NewStore(cfg)
}

// carryCookies copies the Set-Cookie headers from a response onto a
// follow-up request the way a browser would: for repeated names only the
// last value survives.
func carryCookies(t *testing.T, w *httptest.ResponseRecorder, r *http.Request) {
	t.Helper()
	byName := make(map[string]*http.Cookie)
	for _, c := range w.Result().Cookies() {
		byName[c.Name] = c
	}
	for _, c := range byName {
		r.AddCookie(c)
	}
}

func TestStore_UploadRoundTrip(t *testing.T) {
	s := testStore()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/upload", nil)
	ref := UploadReference{Filename: "orders.csv", Path: "uploads/orders.csv"}
	require.NoError(t, s.SetUpload(w, r, ref))

	next := httptest.NewRequest(http.MethodGet, "/display", nil)
	carryCookies(t, w, next)

	got, ok := s.Upload(next)
	require.True(t, ok)
	assert.Equal(t, ref, got)
}

func TestStore_UploadMissing(t *testing.T) {
	s := testStore()

	r := httptest.NewRequest(http.MethodGet, "/display", nil)
	_, ok := s.Upload(r)
	assert.False(t, ok)
}

func TestStore_ClearUpload(t *testing.T) {
	s := testStore()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/upload", nil)
	require.NoError(t, s.SetUpload(w, r, UploadReference{Filename: "orders.csv"}))

	next := httptest.NewRequest(http.MethodGet, "/display", nil)
	carryCookies(t, w, next)
	w2 := httptest.NewRecorder()
	require.NoError(t, s.ClearUpload(w2, next))

	third := httptest.NewRequest(http.MethodGet, "/display", nil)
	carryCookies(t, w2, third)
	_, ok := s.Upload(third)
	assert.False(t, ok)
}

func TestStore_FlashesDrain(t *testing.T) {
	s := testStore()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/filter", nil)
	s.Flash(w, r, LevelSuccess, "Filters applied: Order Date = 2024-01-01")
	s.Flash(w, r, LevelWarning, "Column 'Restaurant Name' not found for filtering.")

	next := httptest.NewRequest(http.MethodGet, "/display", nil)
	carryCookies(t, w, next)
	w2 := httptest.NewRecorder()

	flashes := s.Flashes(w2, next)
	require.Len(t, flashes, 2)
	assert.Equal(t, Flash{Level: LevelSuccess, Message: "Filters applied: Order Date = 2024-01-01"}, flashes[0])
	assert.Equal(t, LevelWarning, flashes[1].Level)

	// Drained: a second render sees nothing.
	third := httptest.NewRequest(http.MethodGet, "/display", nil)
	carryCookies(t, w2, third)
	assert.Empty(t, s.Flashes(httptest.NewRecorder(), third))
}

func TestStore_SingleSetCookiePerResponse(t *testing.T) {
	s := testStore()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/upload", nil)
	require.NoError(t, s.SetUpload(w, r, UploadReference{Filename: "orders.csv"}))
	s.Flash(w, r, LevelSuccess, "one")
	s.Flash(w, r, LevelWarning, "two")

	// Each save replaces the queued cookie instead of stacking another,
	// so the one header carries the complete session snapshot.
	require.Len(t, w.Result().Cookies(), 1)

	next := httptest.NewRequest(http.MethodGet, "/display", nil)
	carryCookies(t, w, next)

	_, ok := s.Upload(next)
	assert.True(t, ok)
	assert.Len(t, s.Flashes(httptest.NewRecorder(), next), 2)
}
