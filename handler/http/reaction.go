package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/net/context"

	"github.com/jhlee0409/sidedish-sub001/core"
	"github.com/jhlee0409/sidedish-sub001/service/reaction"
	"github.com/jhlee0409/sidedish-sub001/service/user"
)

// ReactionCreate sets a Reaction on the project.
func ReactionCreate(fn core.ReactionCreateFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		var (
			ns     = namespaceFromContext(ctx)
			origin = originFromContext(ctx)
		)

		projectID, err := extractProjectID(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		reactionType, err := extractReactionType(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		created, err := fn(ns, origin, projectID, reactionType)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusCreated, &payloadReaction{reaction: created})
	}
}

// ReactionDelete removes an existing Reaction of the current user from the
// project.
func ReactionDelete(fn core.ReactionDeleteFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		var (
			ns     = namespaceFromContext(ctx)
			origin = originFromContext(ctx)
		)

		projectID, err := extractProjectID(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		reactionType, err := extractReactionType(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		err = fn(ns, origin, projectID, reactionType)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusNoContent, nil)
	}
}

// ReactionCountsProject returns the Reaction tallies by type for the project.
func ReactionCountsProject(fn core.ReactionCountsProjectFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		var (
			ns     = namespaceFromContext(ctx)
			origin = originFromContext(ctx)
		)

		projectID, err := extractProjectID(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		counts, err := fn(ns, origin, projectID)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusOK, &counts)
	}
}

// ReactionListProject returns all Reactions for the project.
func ReactionListProject(fn core.ReactionListProjectFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		var (
			ns     = namespaceFromContext(ctx)
			origin = originFromContext(ctx)
			opts   = reaction.QueryOptions{}
		)

		projectID, err := extractProjectID(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		opts.Before, err = extractTimeCursorBefore(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		opts.Limit, err = extractLimit(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		feed, err := fn(ns, origin, projectID, opts)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		if len(feed.Reactions) == 0 {
			respondJSON(w, http.StatusNoContent, nil)
			return
		}

		respondJSON(w, http.StatusOK, &payloadReactions{
			pagination: pagination(
				r,
				opts.Limit,
				reactionCursorAfter(feed.Reactions, opts.Limit),
				reactionCursorBefore(feed.Reactions, opts.Limit),
			),
			reactions: feed.Reactions,
			userMap:   feed.UserMap,
		})
	}
}

// ReactionListProjectByType returns all Reactions of the given type for the
// project.
func ReactionListProjectByType(fn core.ReactionListProjectFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		var (
			ns     = namespaceFromContext(ctx)
			origin = originFromContext(ctx)
			opts   = reaction.QueryOptions{}
		)

		projectID, err := extractProjectID(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		reactionType, err := extractReactionType(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		opts.Before, err = extractTimeCursorBefore(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		opts.Limit, err = extractLimit(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		opts.Types = []reaction.Type{
			reactionType,
		}

		feed, err := fn(ns, origin, projectID, opts)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		if len(feed.Reactions) == 0 {
			respondJSON(w, http.StatusNoContent, nil)
			return
		}

		respondJSON(w, http.StatusOK, &payloadReactions{
			pagination: pagination(
				r,
				opts.Limit,
				reactionCursorAfter(feed.Reactions, opts.Limit),
				reactionCursorBefore(feed.Reactions, opts.Limit),
			),
			reactions: feed.Reactions,
			userMap:   feed.UserMap,
		})
	}
}

type payloadReaction struct {
	reaction *reaction.Reaction
}

func (p *payloadReaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID        string    `json:"id"`
		ProjectID string    `json:"project_id"`
		Type      string    `json:"type"`
		UserID    string    `json:"user_id"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}{
		ID:        strconv.FormatUint(p.reaction.ID, 10),
		ProjectID: strconv.FormatUint(p.reaction.ProjectID, 10),
		Type:      reaction.TypeToIdentifier[p.reaction.Type],
		UserID:    strconv.FormatUint(p.reaction.OwnerID, 10),
		CreatedAt: p.reaction.CreatedAt,
		UpdatedAt: p.reaction.UpdatedAt,
	})
}

type payloadReactions struct {
	pagination *payloadPagination
	reactions  reaction.List
	userMap    user.Map
}

func (p *payloadReactions) MarshalJSON() ([]byte, error) {
	rs := []*payloadReaction{}

	for _, r := range p.reactions {
		rs = append(rs, &payloadReaction{reaction: r})
	}

	return json.Marshal(struct {
		Pagination     *payloadPagination `json:"paging"`
		Reactions      []*payloadReaction `json:"reactions"`
		ReactionsCount int                `json:"reactions_count"`
		UserMap        *payloadUserMap    `json:"users"`
		UsersCount     int                `json:"users_count"`
	}{
		Pagination:     p.pagination,
		Reactions:      rs,
		ReactionsCount: len(rs),
		UserMap:        &payloadUserMap{userMap: p.userMap},
		UsersCount:     len(p.userMap),
	})
}

func reactionCursorAfter(rs reaction.List, limit int) string {
	var after string

	if len(rs) != 0 {
		after = toTimeCursor(rs[0].UpdatedAt)
	}

	return after
}

func reactionCursorBefore(rs reaction.List, limit int) string {
	var before string

	if len(rs) != 0 {
		before = toTimeCursor(rs[len(rs)-1].UpdatedAt)
	}

	return before
}
