package core

import (
	"github.com/jhlee0409/sidedish-sub001/service/project"
	"github.com/jhlee0409/sidedish-sub001/service/reaction"
	"github.com/jhlee0409/sidedish-sub001/service/user"
)

// ReactionFeed is a collection of Reactions with their referenced users.
type ReactionFeed struct {
	Reactions reaction.List
	UserMap   user.Map
}

// ReactionCreateFunc sets a Reaction of the given type on the project for the
// origin, reviving a previously removed one if present.
type ReactionCreateFunc func(
	ns string,
	origin Origin,
	projectID uint64,
	reactionType reaction.Type,
) (*reaction.Reaction, error)

// ReactionCreate sets a Reaction of the given type on the project for the
// origin, reviving a previously removed one if present.
func ReactionCreate(
	projects project.Service,
	reactions reaction.Service,
) ReactionCreateFunc {
	return func(
		ns string,
		origin Origin,
		projectID uint64,
		reactionType reaction.Type,
	) (*reaction.Reaction, error) {
		if _, err := projectExists(projects, ns, origin, projectID); err != nil {
			return nil, err
		}

		rs, err := reactions.Query(ns, reaction.QueryOptions{
			OwnerIDs: []uint64{
				origin.UserID,
			},
			ProjectIDs: []uint64{
				projectID,
			},
			Types: []reaction.Type{
				reactionType,
			},
		})
		if err != nil {
			return nil, err
		}

		if len(rs) == 1 && rs[0].Deleted == false {
			return rs[0], nil
		}

		var r *reaction.Reaction

		if len(rs) == 1 {
			r = rs[0]
			r.Deleted = false
		} else {
			r = &reaction.Reaction{
				Deleted:   false,
				OwnerID:   origin.UserID,
				ProjectID: projectID,
				Type:      reactionType,
			}
		}

		if err := r.Validate(); err != nil {
			return nil, wrapError(ErrInvalidEntity, "%s", err)
		}

		return reactions.Put(ns, r)
	}
}

// ReactionDeleteFunc removes an existing Reaction from the project.
type ReactionDeleteFunc func(
	ns string,
	origin Origin,
	projectID uint64,
	reactionType reaction.Type,
) error

// ReactionDelete removes an existing Reaction from the project.
func ReactionDelete(
	projects project.Service,
	reactions reaction.Service,
) ReactionDeleteFunc {
	return func(
		ns string,
		origin Origin,
		projectID uint64,
		reactionType reaction.Type,
	) error {
		if _, err := projectExists(projects, ns, origin, projectID); err != nil {
			return err
		}

		rs, err := reactions.Query(ns, reaction.QueryOptions{
			Deleted: &defaultDeleted,
			OwnerIDs: []uint64{
				origin.UserID,
			},
			ProjectIDs: []uint64{
				projectID,
			},
			Types: []reaction.Type{
				reactionType,
			},
		})
		if err != nil {
			return err
		}

		if len(rs) == 0 {
			return nil
		}

		r := rs[0]
		r.Deleted = true

		_, err = reactions.Put(ns, r)

		return err
	}
}

// ReactionCountsProjectFunc returns the Reaction tallies by type for the
// project.
type ReactionCountsProjectFunc func(
	ns string,
	origin Origin,
	projectID uint64,
) (reaction.Counts, error)

// ReactionCountsProject returns the Reaction tallies by type for the project.
func ReactionCountsProject(
	projects project.Service,
	reactions reaction.Service,
) ReactionCountsProjectFunc {
	return func(
		ns string,
		origin Origin,
		projectID uint64,
	) (reaction.Counts, error) {
		if _, err := projectExists(projects, ns, origin, projectID); err != nil {
			return reaction.Counts{}, err
		}

		cm, err := reactions.CountMulti(ns, reaction.QueryOptions{
			ProjectIDs: []uint64{
				projectID,
			},
		})
		if err != nil {
			return reaction.Counts{}, err
		}

		return cm[projectID], nil
	}
}

// ReactionListProjectFunc returns all Reactions for the project.
type ReactionListProjectFunc func(
	ns string,
	origin Origin,
	projectID uint64,
	opts reaction.QueryOptions,
) (*ReactionFeed, error)

// ReactionListProject returns all Reactions for the project.
func ReactionListProject(
	projects project.Service,
	reactions reaction.Service,
	users user.Service,
) ReactionListProjectFunc {
	return func(
		ns string,
		origin Origin,
		projectID uint64,
		opts reaction.QueryOptions,
	) (*ReactionFeed, error) {
		if _, err := projectExists(projects, ns, origin, projectID); err != nil {
			return nil, err
		}

		rs, err := reactions.Query(ns, reaction.QueryOptions{
			Before:  opts.Before,
			Deleted: &defaultDeleted,
			Limit:   opts.Limit,
			ProjectIDs: []uint64{
				projectID,
			},
			Types: opts.Types,
		})
		if err != nil {
			return nil, err
		}

		um, err := user.MapFromIDs(users, ns, rs.OwnerIDs()...)
		if err != nil {
			return nil, err
		}

		return &ReactionFeed{
			Reactions: rs,
			UserMap:   um,
		}, nil
	}
}
