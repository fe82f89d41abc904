package session

import (
	"encoding/gob"

	"github.com/vibast-solutions/ms-go-webauth/app/entity"

	"github.com/gorilla/sessions"
)

// Flash slots.
const (
	FlashError = "error"
	FlashInfo  = "info"
	FlashEmail = "email"
)

const userKey = "user"

func init() {
	gob.Register(entity.SessionUser{})
}

type Session struct {
	base      *sessions.Session
	needsSave bool
}

func (s *Session) NeedsSave() bool {
	return s.needsSave
}

func (s *Session) User() (entity.SessionUser, bool) {
	user, ok := s.base.Values[userKey].(entity.SessionUser)
	return user, ok
}

func (s *Session) SetUser(user entity.SessionUser) {
	s.needsSave = true
	s.base.Values[userKey] = user
}

// Destroy drops every value and expires the cookie on the next save.
func (s *Session) Destroy() {
	s.needsSave = true
	for key := range s.base.Values {
		delete(s.base.Values, key)
	}
	s.base.Options.MaxAge = -1
}

func (s *Session) AddFlash(key, message string) {
	s.needsSave = true
	s.base.AddFlash(message, key)
}

// Flash consumes the slot and returns its first message, or "" when empty.
func (s *Session) Flash(key string) string {
	flashes := s.base.Flashes(key)
	if len(flashes) == 0 {
		return ""
	}

	s.needsSave = true
	msg, _ := flashes[0].(string)
	return msg
}
