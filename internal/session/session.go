// Package session wraps gorilla/sessions with the small surface the web
// handlers need: one upload reference per browser session plus flash
// messages for the redirect-then-render flow.
package session

import (
	"encoding/gob"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"

	"csvdesk/internal/config"
)

// Flash levels map onto the alert styles the page renders.
const (
	LevelSuccess = "success"
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelDanger  = "danger"
)

// Flash is a one-shot message shown on the next page render.
type Flash struct {
	Level   string
	Message string
}

// UploadReference points at the file the session is currently working on.
type UploadReference struct {
	Filename string
	Path     string
}

func init() {
	gob.Register(Flash{})
	gob.Register(UploadReference{})
}

const uploadKey = "upload"

// Store issues and decodes session cookies.
type Store struct {
	store *sessions.CookieStore
}

// NewStore creates the cookie store from the configured secret.
func NewStore(cfg *config.Config) *Store {
	cs := sessions.NewCookieStore([]byte(cfg.Session.Secret))
	cs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Store{store: cs}
}

func (s *Store) get(r *http.Request) *sessions.Session {
	// Get never fails for cookie stores in a way we can act on: a bad or
	// expired cookie just yields a fresh session.
	sess, _ := s.store.Get(r, config.SessionCookieName)
	return sess
}

// save writes the session cookie, replacing any snapshot an earlier save in
// the same request already queued. Without this, each save stacks another
// same-name Set-Cookie header and clients may honor the stale first one.
func (s *Store) save(w http.ResponseWriter, r *http.Request, sess *sessions.Session) error {
	header := w.Header()
	queued := header.Values("Set-Cookie")
	kept := make([]string, 0, len(queued))
	for _, c := range queued {
		if !strings.HasPrefix(c, config.SessionCookieName+"=") {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		header.Del("Set-Cookie")
	} else {
		header["Set-Cookie"] = kept
	}
	return sess.Save(r, w)
}

// Upload returns the session's current upload reference, if any.
func (s *Store) Upload(r *http.Request) (UploadReference, bool) {
	sess := s.get(r)
	ref, ok := sess.Values[uploadKey].(UploadReference)
	return ref, ok
}

// SetUpload records the upload the session is working on.
func (s *Store) SetUpload(w http.ResponseWriter, r *http.Request, ref UploadReference) error {
	sess := s.get(r)
	sess.Values[uploadKey] = ref
	if err := s.save(w, r, sess); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// ClearUpload drops the session's upload reference.
func (s *Store) ClearUpload(w http.ResponseWriter, r *http.Request) error {
	sess := s.get(r)
	delete(sess.Values, uploadKey)
	if err := s.save(w, r, sess); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Flash queues a message for the next page render.
func (s *Store) Flash(w http.ResponseWriter, r *http.Request, level, message string) {
	sess := s.get(r)
	sess.AddFlash(Flash{Level: level, Message: message})
	// A session too large or an unwritable response header is not worth
	// failing the request over; the message is just lost.
	_ = s.save(w, r, sess)
}

// Flashes drains and returns all queued messages.
func (s *Store) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	sess := s.get(r)
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	flashes := make([]Flash, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(Flash); ok {
			flashes = append(flashes, f)
		}
	}
	_ = s.save(w, r, sess)
	return flashes
}
