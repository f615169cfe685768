package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/net/context"

	"github.com/jhlee0409/sidedish-sub001/core"
	"github.com/jhlee0409/sidedish-sub001/service/comment"
	"github.com/jhlee0409/sidedish-sub001/service/user"
)

// CommentCreate creates a new Comment on behalf of the current user.
func CommentCreate(fn core.CommentCreateFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		var (
			ns     = namespaceFromContext(ctx)
			origin = originFromContext(ctx)
			p      = &payloadComment{}
		)

		projectID, err := extractProjectID(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		err = json.NewDecoder(r.Body).Decode(p)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		c, err := fn(ns, origin, projectID, p.comment)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusCreated, &payloadComment{comment: c})
	}
}

// CommentDelete flags the comment as deleted.
func CommentDelete(fn core.CommentDeleteFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		var (
			currentUser = userFromContext(ctx)
			ns          = namespaceFromContext(ctx)
		)

		projectID, err := extractProjectID(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		commentID, err := extractCommentID(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		err = fn(ns, currentUser.ID, projectID, commentID)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusNoContent, nil)
	}
}

// CommentList returns all comments for the given project.
func CommentList(fn core.CommentListFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		var (
			ns     = namespaceFromContext(ctx)
			origin = originFromContext(ctx)
			opts   = comment.QueryOptions{}
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

		if len(feed.Comments) == 0 {
			respondJSON(w, http.StatusNoContent, nil)
			return
		}

		respondJSON(w, http.StatusOK, &payloadComments{
			comments: feed.Comments,
			pagination: pagination(
				r,
				opts.Limit,
				commentCursorAfter(feed.Comments, opts.Limit),
				commentCursorBefore(feed.Comments, opts.Limit),
			),
			userMap: feed.UserMap,
		})
	}
}

// CommentRetrieve return the comment for the requested id.
func CommentRetrieve(fn core.CommentRetrieveFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		var (
			ns     = namespaceFromContext(ctx)
			userID = currentUserID(ctx)
		)

		projectID, err := extractProjectID(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		commentID, err := extractCommentID(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		c, err := fn(ns, userID, projectID, commentID)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusOK, &payloadComment{comment: c})
	}
}

// CommentUpdate replaces the content of the comment with the new value.
func CommentUpdate(fn core.CommentUpdateFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		var (
			ns     = namespaceFromContext(ctx)
			origin = originFromContext(ctx)
			p      = &payloadComment{}
		)

		projectID, err := extractProjectID(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		commentID, err := extractCommentID(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		err = json.NewDecoder(r.Body).Decode(p)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		c, err := fn(ns, origin, projectID, commentID, p.comment)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusOK, &payloadComment{comment: c})
	}
}

type payloadComment struct {
	comment *comment.Comment
}

func (p *payloadComment) MarshalJSON() ([]byte, error) {
	c := p.comment

	return json.Marshal(struct {
		Content   string    `json:"content"`
		ID        string    `json:"id"`
		ProjectID string    `json:"project_id"`
		UserID    string    `json:"user_id"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}{
		Content:   c.Content,
		ID:        strconv.FormatUint(c.ID, 10),
		ProjectID: strconv.FormatUint(c.ProjectID, 10),
		UserID:    strconv.FormatUint(c.OwnerID, 10),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	})
}

func (p *payloadComment) UnmarshalJSON(raw []byte) error {
	f := struct {
		Content string `json:"content"`
	}{}

	err := json.Unmarshal(raw, &f)
	if err != nil {
		return err
	}

	if f.Content == "" {
		return ErrBadRequest
	}

	p.comment = &comment.Comment{
		Content: f.Content,
	}

	return nil
}

type payloadComments struct {
	comments   comment.List
	pagination *payloadPagination
	userMap    user.Map
}

func (p *payloadComments) MarshalJSON() ([]byte, error) {
	cs := []*payloadComment{}

	for _, c := range p.comments {
		cs = append(cs, &payloadComment{comment: c})
	}

	return json.Marshal(struct {
		Comments      []*payloadComment  `json:"comments"`
		CommentsCount int                `json:"comments_count"`
		Pagination    *payloadPagination `json:"paging"`
		UserMap       *payloadUserMap    `json:"users"`
		UsersCount    int                `json:"users_count"`
	}{
		Comments:      cs,
		CommentsCount: len(cs),
		Pagination:    p.pagination,
		UserMap:       &payloadUserMap{userMap: p.userMap},
		UsersCount:    len(p.userMap),
	})
}

func commentCursorAfter(cs comment.List, limit int) string {
	var after string

	if len(cs) > 0 {
		after = toTimeCursor(cs[0].CreatedAt)
	}

	return after
}

func commentCursorBefore(cs comment.List, limit int) string {
	var before string

	if len(cs) > 0 {
		before = toTimeCursor(cs[len(cs)-1].CreatedAt)
	}

	return before
}
