// Package session implements server-side sessions for the web pages.  The
// browser only holds a signed token naming the session id; the admin flag
// and the pending flash message live in a Store.
package session

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/school-booking/internal/utils"
)

// Data is the state kept per visitor.
type Data struct {
	Admin bool   `json:"admin,omitempty"`
	Flash string `json:"flash,omitempty"`
}

// Session is a loaded session.  A zero ID means the visitor has none yet;
// one is assigned on the first Save.
type Session struct {
	ID string
	Data
}

// IsAdmin reports whether the session carries the administrator flag.
func (s *Session) IsAdmin() bool { return s != nil && s.Admin }

// Options configure a Manager.
type Options struct {
	Secret     string
	TTL        time.Duration
	CookieName string
	Secure     bool
}

// Manager loads and persists sessions through a Store and a signed cookie.
type Manager struct {
	store Store
	opts  Options
}

// NewManager returns a Manager.  It panics when store is nil or the secret
// is empty.
func NewManager(store Store, opts Options) *Manager {
	if store == nil {
		panic("nil store passed to session.NewManager")
	}
	if opts.Secret == "" {
		panic("empty secret passed to session.NewManager")
	}
	if opts.TTL <= 0 {
		opts.TTL = 2 * time.Hour
	}
	if opts.CookieName == "" {
		opts.CookieName = "reservas"
	}
	return &Manager{store: store, opts: opts}
}

// CookieName returns the name of the session cookie.
func (m *Manager) CookieName() string { return m.opts.CookieName }

// Load returns the session named by the request cookie.  A missing,
// forged or expired cookie yields an empty session rather than an error;
// only store failures are reported.
func (m *Manager) Load(r *http.Request) (*Session, error) {
	ck, err := r.Cookie(m.opts.CookieName)
	if err != nil || ck.Value == "" {
		return &Session{}, nil
	}
	sid, err := utils.ParseSessionToken(m.opts.Secret, ck.Value)
	if err != nil {
		return &Session{}, nil
	}
	data, ok, err := m.store.Get(r.Context(), sid)
	if err != nil {
		return &Session{}, err
	}
	if !ok {
		return &Session{}, nil
	}
	return &Session{ID: sid, Data: data}, nil
}

// Save persists s, assigning an id first if it has none, and refreshes the
// cookie so its expiry tracks the stored session.
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, s *Session) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if err := m.store.Set(ctx, s.ID, s.Data, m.opts.TTL); err != nil {
		return err
	}
	token, exp, err := utils.NewSessionToken(m.opts.Secret, s.ID, m.opts.TTL)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		MaxAge:   int(m.opts.TTL / time.Second),
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Regenerate moves s to a fresh id and drops the old one, so an id known
// before login is useless afterwards.
func (m *Manager) Regenerate(ctx context.Context, w http.ResponseWriter, s *Session) error {
	if s.ID != "" {
		if err := m.store.Delete(ctx, s.ID); err != nil {
			return err
		}
	}
	s.ID = uuid.NewString()
	return m.Save(ctx, w, s)
}

// Destroy clears s, deletes it from the store and expires the cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, s *Session) error {
	var err error
	if s.ID != "" {
		err = m.store.Delete(ctx, s.ID)
	}
	s.ID = ""
	s.Data = Data{}
	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return err
}

// SetFlash stores msg for the next page view.
func (m *Manager) SetFlash(ctx context.Context, w http.ResponseWriter, s *Session, msg string) error {
	s.Flash = msg
	return m.Save(ctx, w, s)
}

// PopFlash returns the pending flash message and clears it.  A session
// without a message is left untouched.
func (m *Manager) PopFlash(ctx context.Context, w http.ResponseWriter, s *Session) (string, error) {
	msg := s.Flash
	if msg == "" {
		return "", nil
	}
	s.Flash = ""
	return msg, m.Save(ctx, w, s)
}
