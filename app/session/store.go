package session

import (
	"net/http"

	"github.com/vibast-solutions/ms-go-webauth/config"

	"github.com/gorilla/sessions"
	"github.com/sirupsen/logrus"
)

const CookieName = "webauth-session"

type Store struct {
	store sessions.Store
}

func NewStore(store sessions.Store) *Store {
	return &Store{store: store}
}

// NewCookieStore keeps the whole session in a signed cookie.
func NewCookieStore(cfg config.SessionConfig) *Store {
	store := sessions.NewCookieStore([]byte(cfg.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.MaxAge,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return NewStore(store)
}

// Get loads the request's session. A cookie that no longer decodes (rotated
// secret, tampering) is replaced by a fresh session.
func (s *Store) Get(r *http.Request) (*Session, error) {
	base, err := s.store.Get(r, CookieName)
	if err != nil {
		if base == nil {
			return nil, err
		}
		logrus.WithError(err).Debug("Discarding undecodable session cookie")
		base.Values = map[interface{}]interface{}{}
		return &Session{base: base, needsSave: true}, nil
	}

	return &Session{base: base}, nil
}

func (s *Store) Save(r *http.Request, w http.ResponseWriter, sess *Session) error {
	if err := s.store.Save(r, w, sess.base); err != nil {
		return err
	}

	sess.needsSave = false
	return nil
}
