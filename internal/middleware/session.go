package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
)

// ErrInvalidSessionConfig indicates missing or malformed session options.
var ErrInvalidSessionConfig = errors.New("session: invalid config")

const (
	defaultSessionCookie   = "portfolio_session"
	defaultSessionLifetime = 24 * time.Hour
)

// SessionData is the signed cookie payload. It identifies the browser so that
// mounted pages cannot be driven from another session.
type SessionData struct {
	ID        string    `json:"id"`
	CSRFToken string    `json:"csrf"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionConfig configures Sessions.
type SessionConfig struct {
	CookieName string
	HashKey    []byte
	BlockKey   []byte
	Secure     bool
	Lifetime   time.Duration
	Now        func() time.Time
}

// Sessions issues and verifies the session cookie.
type Sessions struct {
	cfg   SessionConfig
	codec *securecookie.SecureCookie
}

// NewSessions builds the cookie codec. A nil hash key generates an ephemeral
// one, so sessions do not survive restarts.
func NewSessions(cfg SessionConfig) (*Sessions, error) {
	if cfg.CookieName == "" {
		cfg.CookieName = defaultSessionCookie
	}
	if cfg.Lifetime <= 0 {
		cfg.Lifetime = defaultSessionLifetime
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if len(cfg.HashKey) == 0 {
		cfg.HashKey = securecookie.GenerateRandomKey(32)
		if cfg.HashKey == nil {
			return nil, fmt.Errorf("%w: could not generate hash key", ErrInvalidSessionConfig)
		}
	}
	switch len(cfg.BlockKey) {
	case 0, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: block key must be 16, 24 or 32 bytes", ErrInvalidSessionConfig)
	}
	codec := securecookie.New(cfg.HashKey, cfg.BlockKey)
	codec.SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(int(cfg.Lifetime.Seconds()))
	return &Sessions{cfg: cfg, codec: codec}, nil
}

// CookieName returns the session cookie name.
func (s *Sessions) CookieName() string { return s.cfg.CookieName }

// Middleware loads or starts a session and stores it in the request context.
// New sessions are written before the handler runs so the cookie precedes any body.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sd, ok := s.read(r)
		if !ok {
			sd = &SessionData{
				ID:        uuid.NewString(),
				CSRFToken: newCSRFToken(),
				CreatedAt: s.cfg.Now().UTC(),
			}
			if err := s.write(w, sd); err != nil {
				WriteError(w, r, http.StatusInternalServerError, "session_error", "could not start session")
				return
			}
		}
		ctx := context.WithValue(r.Context(), ctxKeySession, sd)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Encode returns a cookie value for sd; tests use it to impersonate a browser.
func (s *Sessions) Encode(sd SessionData) (string, error) {
	return s.codec.Encode(s.cfg.CookieName, sd)
}

func (s *Sessions) read(r *http.Request) (*SessionData, bool) {
	c, err := r.Cookie(s.cfg.CookieName)
	if err != nil || c.Value == "" {
		return nil, false
	}
	var sd SessionData
	if err := s.codec.Decode(s.cfg.CookieName, c.Value, &sd); err != nil {
		return nil, false
	}
	if sd.ID == "" || sd.CSRFToken == "" {
		return nil, false
	}
	return &sd, true
}

func (s *Sessions) write(w http.ResponseWriter, sd *SessionData) error {
	value, err := s.codec.Encode(s.cfg.CookieName, sd)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  s.cfg.Now().Add(s.cfg.Lifetime),
	})
	return nil
}

// GetSession returns the session from context, or an empty one.
func GetSession(r *http.Request) *SessionData {
	if sd, ok := r.Context().Value(ctxKeySession).(*SessionData); ok && sd != nil {
		return sd
	}
	return &SessionData{}
}

func newCSRFToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
