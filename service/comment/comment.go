package comment

import (
	"fmt"
	"time"

	"github.com/jhlee0409/sidedish-sub001/platform/service"
)

// ContentMax is the upper bound for comment content length.
const ContentMax = 2000

// Comment is a short text a user leaves on a project.
type Comment struct {
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Deleted   bool      `json:"deleted"`
	ID        uint64    `json:"id"`
	OwnerID   uint64    `json:"owner_id"`
	ProjectID uint64    `json:"project_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MatchOpts indicates if the Comment matches the given QueryOptions.
func (c *Comment) MatchOpts(opts *QueryOptions) bool {
	if opts == nil {
		return true
	}

	if c.Deleted != opts.Deleted {
		return false
	}

	if opts.ID != nil && c.ID != *opts.ID {
		return false
	}

	if !opts.Before.IsZero() && !c.CreatedAt.Before(opts.Before) {
		return false
	}

	if len(opts.OwnerIDs) > 0 {
		discard := true

		for _, id := range opts.OwnerIDs {
			if c.OwnerID == id {
				discard = false
			}
		}

		if discard {
			return false
		}
	}

	if len(opts.ProjectIDs) > 0 {
		discard := true

		for _, id := range opts.ProjectIDs {
			if c.ProjectID == id {
				discard = false
			}
		}

		if discard {
			return false
		}
	}

	return true
}

// Validate returns an error if a constraint on the Comment is not
// full-filled.
func (c *Comment) Validate() error {
	if c.Content == "" {
		return wrapError(ErrInvalidComment, "missing content")
	}

	if len(c.Content) > ContentMax {
		return wrapError(ErrInvalidComment, "content too long")
	}

	if c.OwnerID == 0 {
		return wrapError(ErrInvalidComment, "missing owner")
	}

	if c.ProjectID == 0 {
		return wrapError(ErrInvalidComment, "missing project")
	}

	return nil
}

// CountsMap is the number of comments per project indexed by project id.
type CountsMap map[uint64]uint64

// List is a Comment collection.
type List []*Comment

func (l List) Len() int {
	return len(l)
}

func (l List) Less(i, j int) bool {
	return l[i].CreatedAt.After(l[j].CreatedAt)
}

func (l List) Swap(i, j int) {
	l[i], l[j] = l[j], l[i]
}

// OwnerIDs returns all user ids of the associated comment owners.
func (l List) OwnerIDs() []uint64 {
	ids := []uint64{}

	for _, c := range l {
		ids = append(ids, c.OwnerID)
	}

	return ids
}

// Map is a Comment collection indexed by id.
type Map map[uint64]*Comment

// QueryOptions are passed to narrow down queries for comments.
type QueryOptions struct {
	Before     time.Time `json:"-"`
	Deleted    bool      `json:"deleted,omitempty"`
	ID         *uint64   `json:"id,omitempty"`
	Limit      int       `json:"-"`
	OwnerIDs   []uint64  `json:"owner_ids,omitempty"`
	ProjectIDs []uint64  `json:"project_ids,omitempty"`
}

// Service for comment interactions.
type Service interface {
	service.Lifecycle

	Count(namespace string, opts QueryOptions) (int, error)
	CountMulti(namespace string, projectIDs ...uint64) (CountsMap, error)
	Put(namespace string, comment *Comment) (*Comment, error)
	Query(namespace string, opts QueryOptions) (List, error)
}

// ServiceMiddleware is a chainable behaviour modifier for Service.
type ServiceMiddleware func(Service) Service

func flakeNamespace(ns string) string {
	return fmt.Sprintf("%s_%s", ns, "comments")
}
