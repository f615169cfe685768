package project

import (
	"fmt"
	"time"

	"github.com/asaskevich/govalidator"

	"github.com/jhlee0409/sidedish-sub001/platform/service"
	"github.com/jhlee0409/sidedish-sub001/platform/source"
)

// Limits enforced on Project fields.
const (
	NameMax        = 80
	TaglineMax     = 140
	DescriptionMax = 4000
	TagsMax        = 10
)

// Visibility variants available for Projects.
const (
	VisibilityPrivate Visibility = 10
	VisibilityPublic  Visibility = 30
)

// Consumer observes state changes.
type Consumer interface {
	Consume() (*StateChange, error)
}

// List is a Project collection.
type List []*Project

func (l List) Len() int {
	return len(l)
}

func (l List) Less(i, j int) bool {
	return l[i].CreatedAt.After(l[j].CreatedAt)
}

func (l List) Swap(i, j int) {
	l[i], l[j] = l[j], l[i]
}

// IDs returns the ids of all projects in the list.
func (l List) IDs() []uint64 {
	ids := []uint64{}

	for _, p := range l {
		ids = append(ids, p.ID)
	}

	return ids
}

// OwnerIDs returns all user ids of the associated project owners.
func (l List) OwnerIDs() []uint64 {
	ids := []uint64{}

	for _, p := range l {
		ids = append(ids, p.OwnerID)
	}

	return ids
}

// Map is a Project collection indexed by id.
type Map map[uint64]*Project

// Producer creates a state change notification.
type Producer interface {
	Propagate(namespace string, old, new *Project) (string, error)
}

// Project is a side-project shared by a user, the central entity everything
// else hangs off of.
type Project struct {
	CreatedAt   time.Time  `json:"created_at"`
	Deleted     bool       `json:"deleted"`
	Description string     `json:"description"`
	ID          uint64     `json:"id"`
	ImageURL    string     `json:"image_url"`
	Name        string     `json:"name"`
	OwnerID     uint64     `json:"owner_id"`
	RepoURL     string     `json:"repo_url"`
	Tagline     string     `json:"tagline"`
	Tags        []string   `json:"tags"`
	UpdatedAt   time.Time  `json:"updated_at"`
	URL         string     `json:"url"`
	Visibility  Visibility `json:"visibility"`
}

// MatchOpts indicates if the Project matches the given QueryOptions.
func (p *Project) MatchOpts(opts *QueryOptions) bool {
	if opts == nil {
		return true
	}

	if p.Deleted != opts.Deleted {
		return false
	}

	if opts.ID != nil && p.ID != *opts.ID {
		return false
	}

	if !opts.Before.IsZero() && !p.CreatedAt.Before(opts.Before) {
		return false
	}

	if len(opts.IDs) > 0 {
		discard := true

		for _, id := range opts.IDs {
			if p.ID == id {
				discard = false
			}
		}

		if discard {
			return false
		}
	}

	if len(opts.OwnerIDs) > 0 {
		discard := true

		for _, id := range opts.OwnerIDs {
			if p.OwnerID == id {
				discard = false
			}
		}

		if discard {
			return false
		}
	}

	if len(opts.Tags) > 0 {
		for _, t := range opts.Tags {
			discard := true

			for _, tag := range p.Tags {
				if tag == t {
					discard = false
				}
			}

			if discard {
				return false
			}
		}
	}

	if len(opts.Visibilities) > 0 {
		discard := true

		for _, v := range opts.Visibilities {
			if p.Visibility == v {
				discard = false
			}
		}

		if discard {
			return false
		}
	}

	return true
}

// Validate returns an error if a constraint on the Project is not
// full-filled.
func (p *Project) Validate() error {
	if p.OwnerID == 0 {
		return wrapError(ErrInvalidProject, "missing owner")
	}

	if p.Name == "" {
		return wrapError(ErrInvalidProject, "missing name")
	}

	if len(p.Name) > NameMax {
		return wrapError(ErrInvalidProject, "name too long")
	}

	if len(p.Tagline) > TaglineMax {
		return wrapError(ErrInvalidProject, "tagline too long")
	}

	if len(p.Description) > DescriptionMax {
		return wrapError(ErrInvalidProject, "description too long")
	}

	if len(p.Tags) > TagsMax {
		return wrapError(ErrInvalidProject, "too many tags")
	}

	for _, u := range []string{p.ImageURL, p.RepoURL, p.URL} {
		if u != "" && !govalidator.IsURL(u) {
			return wrapError(ErrInvalidProject, "invalid url '%s'", u)
		}
	}

	vs := []Visibility{
		VisibilityPrivate,
		VisibilityPublic,
	}

	if !inVisibilities(p.Visibility, vs) {
		return wrapError(ErrInvalidProject, "unsupported visibility")
	}

	return nil
}

// QueryOptions are passed to narrow down queries for projects.
type QueryOptions struct {
	Before       time.Time    `json:"-"`
	Deleted      bool         `json:"deleted,omitempty"`
	ID           *uint64      `json:"id,omitempty"`
	IDs          []uint64     `json:"ids,omitempty"`
	Limit        int          `json:"-"`
	OwnerIDs     []uint64     `json:"owner_ids,omitempty"`
	Tags         []string     `json:"tags,omitempty"`
	Visibilities []Visibility `json:"visibilities,omitempty"`
}

// Service for project interactions.
type Service interface {
	service.Lifecycle

	Count(namespace string, opts QueryOptions) (int, error)
	Put(namespace string, project *Project) (*Project, error)
	Query(namespace string, opts QueryOptions) (List, error)
}

// ServiceMiddleware is a chainable behaviour modifier for Service.
type ServiceMiddleware func(Service) Service

// StateChange transports all information necessary to observe state changes.
type StateChange struct {
	AckID     string
	ID        string
	Namespace string
	New       *Project
	Old       *Project
	SentAt    time.Time
}

// Source encapsulates state change notification operations.
type Source interface {
	source.Acker
	Consumer
	Producer
}

// SourceMiddleware is a chainable behaviour modifier for Source.
type SourceMiddleware func(Source) Source

// Visibility determines who can see a Project when consumed.
type Visibility uint8

func flakeNamespace(ns string) string {
	return fmt.Sprintf("%s_%s", ns, "projects")
}

func inVisibilities(c Visibility, vs []Visibility) bool {
	if len(vs) == 0 {
		return true
	}

	for _, v := range vs {
		if c == v {
			return true
		}
	}

	return false
}
