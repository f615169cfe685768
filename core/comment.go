package core

import (
	"github.com/jhlee0409/sidedish-sub001/platform/cache"
	"github.com/jhlee0409/sidedish-sub001/service/comment"
	"github.com/jhlee0409/sidedish-sub001/service/project"
	"github.com/jhlee0409/sidedish-sub001/service/user"
)

// CommentFeed is a collection of comments with their referenced users.
type CommentFeed struct {
	Comments comment.List
	UserMap  user.Map
}

// CommentCreateFunc creates a new comment on behalf of the origin user on
// the given project id.
type CommentCreateFunc func(
	ns string,
	origin Origin,
	projectID uint64,
	input *comment.Comment,
) (*comment.Comment, error)

// CommentCreate creates a new comment on behalf of the origin user on the
// given project id.
func CommentCreate(
	comments comment.Service,
	projects project.Service,
	countCache cache.CountService,
) CommentCreateFunc {
	return func(
		ns string,
		origin Origin,
		projectID uint64,
		input *comment.Comment,
	) (*comment.Comment, error) {
		if _, err := projectExists(projects, ns, origin, projectID); err != nil {
			return nil, err
		}

		c := &comment.Comment{
			Content:   input.Content,
			OwnerID:   origin.UserID,
			ProjectID: projectID,
		}

		if err := c.Validate(); err != nil {
			return nil, wrapError(ErrInvalidEntity, "%s", err)
		}

		c, err := comments.Put(ns, c)
		if err != nil {
			return nil, err
		}

		if _, err := countCache.Incr(ns, commentsKey(projectID)); err != nil {
			if !cache.IsKeyNotFound(err) {
				return nil, err
			}
		}

		return c, nil
	}
}

// CommentDeleteFunc flags the comment as deleted.
type CommentDeleteFunc func(
	ns string,
	origin uint64,
	projectID uint64,
	commentID uint64,
) error

// CommentDelete flags the comment as deleted.
func CommentDelete(
	comments comment.Service,
	countCache cache.CountService,
) CommentDeleteFunc {
	return func(
		ns string,
		origin uint64,
		projectID uint64,
		commentID uint64,
	) error {
		cs, err := comments.Query(ns, comment.QueryOptions{
			ID: &commentID,
			OwnerIDs: []uint64{
				origin,
			},
			ProjectIDs: []uint64{
				projectID,
			},
		})
		if err != nil {
			return err
		}

		// A delete should be idempotent and always succeed.
		if len(cs) != 1 {
			return nil
		}

		cs[0].Deleted = true

		_, err = comments.Put(ns, cs[0])
		if err != nil {
			return err
		}

		if _, err := countCache.Decr(ns, commentsKey(projectID)); err != nil {
			if !cache.IsKeyNotFound(err) {
				return err
			}
		}

		return nil
	}
}

// CommentListFunc returns all comments for the given project id.
type CommentListFunc func(
	ns string,
	origin Origin,
	projectID uint64,
	opts comment.QueryOptions,
) (*CommentFeed, error)

// CommentList returns all comments for the given project id.
func CommentList(
	comments comment.Service,
	projects project.Service,
	users user.Service,
) CommentListFunc {
	return func(
		ns string,
		origin Origin,
		projectID uint64,
		opts comment.QueryOptions,
	) (*CommentFeed, error) {
		if _, err := projectExists(projects, ns, origin, projectID); err != nil {
			return nil, err
		}

		cs, err := comments.Query(ns, comment.QueryOptions{
			Before: opts.Before,
			Limit:  opts.Limit,
			ProjectIDs: []uint64{
				projectID,
			},
		})
		if err != nil {
			return nil, err
		}

		um, err := user.MapFromIDs(users, ns, cs.OwnerIDs()...)
		if err != nil {
			return nil, err
		}

		return &CommentFeed{
			Comments: cs,
			UserMap:  um,
		}, nil
	}
}

// CommentRetrieveFunc returns the comment for the given id.
type CommentRetrieveFunc func(
	ns string,
	origin uint64,
	projectID uint64,
	commentID uint64,
) (*comment.Comment, error)

// CommentRetrieve returns the comment for the given id.
func CommentRetrieve(
	comments comment.Service,
) CommentRetrieveFunc {
	return func(
		ns string,
		origin uint64,
		projectID uint64,
		commentID uint64,
	) (*comment.Comment, error) {
		cs, err := comments.Query(ns, comment.QueryOptions{
			ID: &commentID,
			OwnerIDs: []uint64{
				origin,
			},
			ProjectIDs: []uint64{
				projectID,
			},
		})
		if err != nil {
			return nil, err
		}

		if len(cs) != 1 {
			return nil, ErrNotFound
		}

		return cs[0], nil
	}
}

// CommentUpdateFunc replaces the content of the comment, owner only.
type CommentUpdateFunc func(
	ns string,
	origin Origin,
	projectID uint64,
	commentID uint64,
	input *comment.Comment,
) (*comment.Comment, error)

// CommentUpdate replaces the content of the comment, owner only.
func CommentUpdate(
	comments comment.Service,
) CommentUpdateFunc {
	return func(
		ns string,
		origin Origin,
		projectID uint64,
		commentID uint64,
		input *comment.Comment,
	) (*comment.Comment, error) {
		cs, err := comments.Query(ns, comment.QueryOptions{
			ID: &commentID,
			ProjectIDs: []uint64{
				projectID,
			},
		})
		if err != nil {
			return nil, err
		}

		if len(cs) != 1 {
			return nil, ErrNotFound
		}

		c := cs[0]

		if c.OwnerID != origin.UserID {
			return nil, wrapError(ErrUnauthorized, "not comment owner")
		}

		c.Content = input.Content

		if err := c.Validate(); err != nil {
			return nil, wrapError(ErrInvalidEntity, "%s", err)
		}

		return comments.Put(ns, c)
	}
}
