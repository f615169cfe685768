package reaction

import (
	"fmt"
	"sort"
	"time"

	serr "github.com/jhlee0409/sidedish-sub001/error"
	"github.com/jhlee0409/sidedish-sub001/platform/service"
	"github.com/jhlee0409/sidedish-sub001/platform/source"
)

// Supported Reaction types.
const (
	TypeLike Type = iota + 1
	TypeLove
	TypeClap
	TypeWow
	TypeIdea
)

// IdentifierToType maps external identifiers to Reaction types.
var IdentifierToType = map[string]Type{
	"clap": TypeClap,
	"idea": TypeIdea,
	"like": TypeLike,
	"love": TypeLove,
	"wow":  TypeWow,
}

// TypeToIdentifier maps Reaction types to their external identifiers.
var TypeToIdentifier = map[Type]string{
	TypeClap: "clap",
	TypeIdea: "idea",
	TypeLike: "like",
	TypeLove: "love",
	TypeWow:  "wow",
}

// Consumer observes state changes.
type Consumer interface {
	Consume() (*StateChange, error)
}

// Counts bundles all Reaction counts by type.
type Counts struct {
	Clap uint64 `json:"clap"`
	Idea uint64 `json:"idea"`
	Like uint64 `json:"like"`
	Love uint64 `json:"love"`
	Wow  uint64 `json:"wow"`
}

// CountsMap bundles all Counts for a set of projects indexed by project id.
type CountsMap map[uint64]Counts

// List is a collection of Reaction.
type List []*Reaction

func (rs List) Len() int {
	return len(rs)
}

func (rs List) Less(i, j int) bool {
	return rs[i].UpdatedAt.After(rs[j].UpdatedAt)
}

func (rs List) Swap(i, j int) {
	rs[i], rs[j] = rs[j], rs[i]
}

// OwnerIDs returns the list of owner ids for the Reaction collection.
func (rs List) OwnerIDs() []uint64 {
	is := []uint64{}

	for _, r := range rs {
		is = append(is, r.OwnerID)
	}

	return is
}

// Map is a Reaction collection with their id as index.
type Map map[uint64]*Reaction

// ToList turns the Map into a List sorted by update time.
func (m Map) ToList() List {
	rs := List{}

	for _, r := range m {
		rs = append(rs, r)
	}

	sort.Sort(rs)

	return rs
}

// Producer creates a state change notification.
type Producer interface {
	Propagate(namespace string, old, new *Reaction) (string, error)
}

// QueryOptions to narrow-down queries.
type QueryOptions struct {
	Before     time.Time `json:"-"`
	Deleted    *bool     `json:"deleted,omitempty"`
	IDs        []uint64  `json:"ids"`
	Limit      int       `json:"-"`
	OwnerIDs   []uint64  `json:"owner_ids"`
	ProjectIDs []uint64  `json:"project_ids"`
	Types      []Type    `json:"types"`
}

// Reaction is the building block to express quick sentiment on Projects.
type Reaction struct {
	Deleted   bool
	ID        uint64
	OwnerID   uint64
	ProjectID uint64
	Type      Type
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks for semantic correctness.
func (r *Reaction) Validate() error {
	if r.OwnerID == 0 {
		return serr.Wrap(serr.ErrInvalidReaction, "missing owner id")
	}

	if r.ProjectID == 0 {
		return serr.Wrap(serr.ErrInvalidReaction, "missing project id")
	}

	if r.Type < TypeLike || r.Type > TypeIdea {
		return serr.Wrap(serr.ErrInvalidReaction, "unsupported type '%d'", r.Type)
	}

	return nil
}

// Service for Reaction interactions.
type Service interface {
	service.Lifecycle

	Count(namespace string, opts QueryOptions) (uint, error)
	CountMulti(namespace string, opts QueryOptions) (CountsMap, error)
	Put(namespace string, reaction *Reaction) (*Reaction, error)
	Query(namespace string, opts QueryOptions) (List, error)
}

// ServiceMiddleware is a chainable behaviour modifier for Service.
type ServiceMiddleware func(Service) Service

// StateChange transports all information necessary to observe state changes.
type StateChange struct {
	AckID     string
	ID        string
	Namespace string
	New       *Reaction
	Old       *Reaction
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

// Type is used to distinct Reactions by type.
type Type uint

func flakeNamespace(ns string) string {
	return fmt.Sprintf("%s_%s", ns, "reactions")
}
