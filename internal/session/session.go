package session

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	CookieName = "warbler_session"
	// CurrUserKey is the session field holding the logged in user's id.
	CurrUserKey = "curr_user"

	contextKey = "session"
)

// Flash categories used by the templates.
const (
	FlashSuccess = "success"
	FlashDanger  = "danger"
	FlashInfo    = "info"
)

type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Data is what the store persists for one session.
type Data struct {
	CurrUser *uint   `json:"curr_user,omitempty"`
	Flashes  []Flash `json:"flashes,omitempty"`
}

func (d Data) empty() bool {
	return d.CurrUser == nil && len(d.Flashes) == 0
}

// Session is the per-request view of a stored session.
type Session struct {
	id      string
	data    Data
	dirty   bool
	// fresh marks an id minted during the current request.
	fresh   bool
	manager *Manager
}

func newSession(id string, data Data) *Session {
	return &Session{id: id, data: data}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Data() Data {
	return s.data
}

func (s *Session) CurrUser() (uint, bool) {
	if s.data.CurrUser == nil {
		return 0, false
	}
	return *s.data.CurrUser, true
}

func (s *Session) SetCurrUser(userID uint) {
	s.data.CurrUser = &userID
	s.dirty = true
}

func (s *Session) ClearCurrUser() {
	if s.data.CurrUser == nil {
		return
	}
	s.data.CurrUser = nil
	s.dirty = true
}

func (s *Session) AddFlash(category, message string) {
	s.data.Flashes = append(s.data.Flashes, Flash{Category: category, Message: message})
	s.dirty = true
}

// Flashes returns the pending flashes and clears them.
func (s *Session) Flashes() []Flash {
	flashes := s.data.Flashes
	if len(flashes) > 0 {
		s.data.Flashes = nil
		s.dirty = true
	}
	return flashes
}

// Default returns the request's session. Without the middleware a detached
// session is returned so callers never deal with nil.
func Default(c *gin.Context) *Session {
	if v, ok := c.Get(contextKey); ok {
		if s, ok := v.(*Session); ok {
			return s
		}
	}
	s := newSession("", Data{})
	c.Set(contextKey, s)
	return s
}

// Login moves the session to the authenticated state under a fresh id.
// The cookie the visitor held before logging in stops resolving to a session.
func Login(c *gin.Context, userID uint) {
	s := Default(c)
	if s.manager != nil && !s.fresh {
		if err := s.manager.regenerate(c, s); err != nil {
			log.Error().Err(err).Msg("Failed to regenerate session")
		}
	}
	s.SetCurrUser(userID)
}

// Logout moves the session back to anonymous. Pending flashes survive.
func Logout(c *gin.Context) {
	Default(c).ClearCurrUser()
}

func AddFlash(c *gin.Context, category, message string) {
	Default(c).AddFlash(category, message)
}
