package session

import (
	"encoding/base64"
	"math/rand"
	"time"

	"github.com/jhlee0409/sidedish-sub001/platform/generate"
	"github.com/jhlee0409/sidedish-sub001/platform/service"
)

// List is a collection of sessions.
type List []*Session

// Map is a session collection with their id as index.
type Map map[string]*Session

// QueryOptions is used to narrow-down session queries.
type QueryOptions struct {
	Enabled *bool
	IDs     []string
	UserIDs []uint64
}

// Service for session interactions.
type Service interface {
	service.Lifecycle

	Put(namespace string, session *Session) (*Session, error)
	Query(namespace string, opts QueryOptions) (List, error)
}

// ServiceMiddleware is a chainable behaviour modifier for Service.
type ServiceMiddleware func(Service) Service

// Session attaches a session id to a user id.
type Session struct {
	CreatedAt time.Time
	Enabled   bool
	ID        string
	UserID    uint64
}

// Validate performs semantic checks on the Session.
func (s *Session) Validate() error {
	if s.UserID == 0 {
		return wrapError(ErrInvalidSession, "UserID must be set")
	}

	return nil
}

func generateID() string {
	src := rand.NewSource(time.Now().UnixNano())

	return base64.StdEncoding.EncodeToString(generate.RandomBytes(src, 20))
}
