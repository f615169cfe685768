package whisper

import (
	"fmt"
	"time"

	"github.com/jhlee0409/sidedish-sub001/platform/service"
)

// ContentMax is the upper bound for whisper content length.
const ContentMax = 2000

// List is a Whisper collection.
type List []*Whisper

func (l List) Len() int {
	return len(l)
}

func (l List) Less(i, j int) bool {
	return l[i].CreatedAt.After(l[j].CreatedAt)
}

func (l List) Swap(i, j int) {
	l[i], l[j] = l[j], l[i]
}

// SenderIDs returns all user ids of the associated whisper senders.
func (l List) SenderIDs() []uint64 {
	ids := []uint64{}

	for _, w := range l {
		ids = append(ids, w.SenderID)
	}

	return ids
}

// Map is a Whisper collection indexed by id.
type Map map[uint64]*Whisper

// QueryOptions are passed to narrow down queries for whispers.
type QueryOptions struct {
	Before     time.Time `json:"-"`
	Deleted    bool      `json:"deleted,omitempty"`
	ID         *uint64   `json:"id,omitempty"`
	Limit      int       `json:"-"`
	ProjectIDs []uint64  `json:"project_ids,omitempty"`
	Read       *bool     `json:"read,omitempty"`
	SenderIDs  []uint64  `json:"sender_ids,omitempty"`
}

// Service for whisper interactions.
type Service interface {
	service.Lifecycle

	Count(namespace string, opts QueryOptions) (int, error)
	Put(namespace string, whisper *Whisper) (*Whisper, error)
	Query(namespace string, opts QueryOptions) (List, error)
}

// ServiceMiddleware is a chainable behaviour modifier for Service.
type ServiceMiddleware func(Service) Service

// Whisper is private feedback on a project, visible to the project owner
// only.
type Whisper struct {
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Deleted   bool      `json:"deleted"`
	ID        uint64    `json:"id"`
	ProjectID uint64    `json:"project_id"`
	Read      bool      `json:"read"`
	SenderID  uint64    `json:"sender_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MatchOpts indicates if the Whisper matches the given QueryOptions.
func (w *Whisper) MatchOpts(opts *QueryOptions) bool {
	if opts == nil {
		return true
	}

	if w.Deleted != opts.Deleted {
		return false
	}

	if opts.ID != nil && w.ID != *opts.ID {
		return false
	}

	if !opts.Before.IsZero() && !w.CreatedAt.Before(opts.Before) {
		return false
	}

	if opts.Read != nil && w.Read != *opts.Read {
		return false
	}

	if len(opts.ProjectIDs) > 0 {
		discard := true

		for _, id := range opts.ProjectIDs {
			if w.ProjectID == id {
				discard = false
			}
		}

		if discard {
			return false
		}
	}

	if len(opts.SenderIDs) > 0 {
		discard := true

		for _, id := range opts.SenderIDs {
			if w.SenderID == id {
				discard = false
			}
		}

		if discard {
			return false
		}
	}

	return true
}

// Validate returns an error if a constraint on the Whisper is not
// full-filled.
func (w *Whisper) Validate() error {
	if w.Content == "" {
		return wrapError(ErrInvalidWhisper, "missing content")
	}

	if len(w.Content) > ContentMax {
		return wrapError(ErrInvalidWhisper, "content too long")
	}

	if w.ProjectID == 0 {
		return wrapError(ErrInvalidWhisper, "missing project")
	}

	if w.SenderID == 0 {
		return wrapError(ErrInvalidWhisper, "missing sender")
	}

	return nil
}

func flakeNamespace(ns string) string {
	return fmt.Sprintf("%s_%s", ns, "whispers")
}
