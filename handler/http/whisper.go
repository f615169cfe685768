package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/net/context"

	"github.com/jhlee0409/sidedish-sub001/core"
	"github.com/jhlee0409/sidedish-sub001/service/user"
	"github.com/jhlee0409/sidedish-sub001/service/whisper"
)

// WhisperCreate sends a private whisper to the owner of the project.
func WhisperCreate(fn core.WhisperCreateFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		var (
			ns     = namespaceFromContext(ctx)
			origin = originFromContext(ctx)
			p      = &payloadWhisper{}
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

		created, err := fn(ns, origin, projectID, p.whisper)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusCreated, &payloadWhisper{whisper: created})
	}
}

// WhisperDelete flags the whisper as deleted, project owner only.
func WhisperDelete(fn core.WhisperDeleteFunc) Handler {
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

		whisperID, err := extractWhisperID(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		err = fn(ns, origin, projectID, whisperID)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusNoContent, nil)
	}
}

// WhisperList returns the whispers of the project, project owner only.
func WhisperList(fn core.WhisperListFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		var (
			ns     = namespaceFromContext(ctx)
			origin = originFromContext(ctx)
			opts   = whisper.QueryOptions{}
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

		opts.Read = extractUnread(r)

		feed, err := fn(ns, origin, projectID, opts)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		if len(feed.Whispers) == 0 {
			respondJSON(w, http.StatusNoContent, nil)
			return
		}

		respondJSON(w, http.StatusOK, &payloadWhispers{
			pagination: pagination(
				r,
				opts.Limit,
				whisperCursorAfter(feed.Whispers, opts.Limit),
				whisperCursorBefore(feed.Whispers, opts.Limit),
			),
			userMap:  feed.UserMap,
			whispers: feed.Whispers,
		})
	}
}

// WhisperRead marks the whisper as read, project owner only.
func WhisperRead(fn core.WhisperReadFunc) Handler {
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

		whisperID, err := extractWhisperID(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		read, err := fn(ns, origin, projectID, whisperID)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusOK, &payloadWhisper{whisper: read})
	}
}

type payloadWhisper struct {
	whisper *whisper.Whisper
}

func (p *payloadWhisper) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Content   string    `json:"content"`
		ID        string    `json:"id"`
		ProjectID string    `json:"project_id"`
		Read      bool      `json:"read"`
		SenderID  string    `json:"sender_id"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}{
		Content:   p.whisper.Content,
		ID:        strconv.FormatUint(p.whisper.ID, 10),
		ProjectID: strconv.FormatUint(p.whisper.ProjectID, 10),
		Read:      p.whisper.Read,
		SenderID:  strconv.FormatUint(p.whisper.SenderID, 10),
		CreatedAt: p.whisper.CreatedAt,
		UpdatedAt: p.whisper.UpdatedAt,
	})
}

func (p *payloadWhisper) UnmarshalJSON(raw []byte) error {
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

	p.whisper = &whisper.Whisper{
		Content: f.Content,
	}

	return nil
}

type payloadWhispers struct {
	pagination *payloadPagination
	userMap    user.Map
	whispers   whisper.List
}

func (p *payloadWhispers) MarshalJSON() ([]byte, error) {
	ws := []*payloadWhisper{}

	for _, wr := range p.whispers {
		ws = append(ws, &payloadWhisper{whisper: wr})
	}

	return json.Marshal(struct {
		Pagination    *payloadPagination `json:"paging"`
		UserMap       *payloadUserMap    `json:"users"`
		UsersCount    int                `json:"users_count"`
		Whispers      []*payloadWhisper  `json:"whispers"`
		WhispersCount int                `json:"whispers_count"`
	}{
		Pagination:    p.pagination,
		UserMap:       &payloadUserMap{userMap: p.userMap},
		UsersCount:    len(p.userMap),
		Whispers:      ws,
		WhispersCount: len(ws),
	})
}

func whisperCursorAfter(ws whisper.List, limit int) string {
	var after string

	if len(ws) > 0 {
		after = toTimeCursor(ws[0].CreatedAt)
	}

	return after
}

func whisperCursorBefore(ws whisper.List, limit int) string {
	var before string

	if len(ws) > 0 {
		before = toTimeCursor(ws[len(ws)-1].CreatedAt)
	}

	return before
}
