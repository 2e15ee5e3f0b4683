package httpx

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
)

// SessionCookieName is the cookie that carries the session-held access token.
const SessionCookieName = "sembuddy_session"

const sessionTokenKey = "access_token"

// SessionStore keeps the access token in a signed, HttpOnly cookie so
// browser clients can authenticate without handling the bearer header.
type SessionStore struct {
	store *sessions.CookieStore
}

// NewSessionStore returns a store signing cookies with hashKey (at least
// 32 bytes). secure marks the cookie Secure; turn it off only for plain
// HTTP development.
func NewSessionStore(hashKey []byte, secure bool) (*SessionStore, error) {
	if len(hashKey) < 32 {
		return nil, errors.New("httpx: session key must be at least 32 bytes")
	}
	cs := sessions.NewCookieStore(hashKey)
	cs.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionStore{store: cs}, nil
}

// SaveToken stores token in the session cookie for ttl.
func (s *SessionStore) SaveToken(w http.ResponseWriter, r *http.Request, token string, ttl time.Duration) error {
	sess, _ := s.store.Get(r, SessionCookieName) // a bad cookie yields a fresh session
	sess.Values[sessionTokenKey] = token
	sess.Options.MaxAge = int(ttl.Seconds())
	return sess.Save(r, w)
}

// Token returns the access token held in the session, or "".
func (s *SessionStore) Token(r *http.Request) string {
	sess, err := s.store.Get(r, SessionCookieName)
	if err != nil {
		return ""
	}
	tok, _ := sess.Values[sessionTokenKey].(string)
	return tok
}

// Clear expires the session cookie.
func (s *SessionStore) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, _ := s.store.Get(r, SessionCookieName)
	delete(sess.Values, sessionTokenKey)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}
