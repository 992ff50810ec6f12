package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var ErrInvalidToken = errors.New("invalid session token")

// Manager signs session cookies and moves session data in and out of the store.
type Manager struct {
	store  Store
	secret []byte
	ttl    time.Duration
	secure bool
}

func NewManager(store Store, secret string, ttl time.Duration, secure bool) *Manager {
	return &Manager{
		store:  store,
		secret: []byte(secret),
		ttl:    ttl,
		secure: secure,
	}
}

func (m *Manager) sign(id string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   id,
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// parse returns the session id carried by a signed cookie value.
func (m *Manager) parse(tokenStr string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// Load resolves a cookie value to its session. A valid token whose record
// has expired yields an empty session with the same id.
func (m *Manager) Load(ctx context.Context, token string) (*Session, error) {
	id, err := m.parse(token)
	if err != nil {
		return nil, err
	}

	data, err := m.store.Get(ctx, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return newSession(id, data), nil
}

// Save persists the session, removing the record once it holds nothing.
func (m *Manager) Save(ctx context.Context, s *Session) error {
	if s.id == "" {
		return nil
	}
	if s.data.empty() {
		return m.store.Delete(ctx, s.id)
	}
	return m.store.Save(ctx, s.id, s.data, m.ttl)
}

// Issue stores data under a new session and returns the cookie for it.
func (m *Manager) Issue(ctx context.Context, data Data) (*http.Cookie, error) {
	s := newSession(uuid.NewString(), data)
	if err := m.Save(ctx, s); err != nil {
		return nil, err
	}
	return m.cookie(s.id)
}

func (m *Manager) cookie(id string) (*http.Cookie, error) {
	token, err := m.sign(id)
	if err != nil {
		return nil, err
	}
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// regenerate moves the session data to a new id, drops the old record and
// sets the cookie for the new id. It must run before the response is written.
func (m *Manager) regenerate(c *gin.Context, s *Session) error {
	id := uuid.NewString()
	cookie, err := m.cookie(id)
	if err != nil {
		return err
	}

	if s.id != "" {
		if err := m.store.Delete(c.Request.Context(), s.id); err != nil {
			return err
		}
	}

	s.id = id
	s.dirty = true
	http.SetCookie(c.Writer, cookie)
	return nil
}

// Middleware attaches the session to the request and persists it after the
// handler when it changed. The cookie is written before the handler runs.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var s *Session
		if token, err := c.Cookie(CookieName); err == nil && token != "" {
			s, err = m.Load(ctx, token)
			if err != nil && !errors.Is(err, ErrInvalidToken) {
				log.Error().Err(err).Msg("Failed to load session")
			}
		}

		if s == nil {
			s = newSession(uuid.NewString(), Data{})
			s.fresh = true
			cookie, err := m.cookie(s.id)
			if err != nil {
				log.Error().Err(err).Msg("Failed to sign session cookie")
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			http.SetCookie(c.Writer, cookie)
		}

		s.manager = m
		c.Set(contextKey, s)
		c.Next()

		if !s.dirty {
			return
		}
		if err := m.Save(ctx, s); err != nil {
			log.Error().Err(err).Str("session_id", s.id).Msg("Failed to save session")
		}
	}
}
