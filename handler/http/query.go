package http

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/jhlee0409/sidedish-sub001/service/project"
	"github.com/jhlee0409/sidedish-sub001/service/reaction"
)

const (
	cursorTimeFormat = time.RFC3339Nano

	keyCommentID    = "commentID"
	keyCursorAfter  = "after"
	keyCursorBefore = "before"
	keyLimit        = "limit"
	keyProjectID    = "projectID"
	keyReactionType = "reactionType"
	keyTags         = "tags"
	keyUnread       = "unread"
	keyUserID       = "userID"
	keyWhisperID    = "whisperID"

	limitDefault = 25
	limitMax     = 50

	refFmt = "%s://%s%s?limit=%d&%s"
)

var cursorEncoding = base64.URLEncoding.WithPadding(base64.NoPadding)

type payloadCursors struct {
	After  string `json:"after"`
	Before string `json:"before"`
}

type payloadPagination struct {
	after  string
	before string
	limit  int
	req    *http.Request
}

func pagination(
	req *http.Request,
	limit int,
	after, before string,
) *payloadPagination {
	return &payloadPagination{
		after:  after,
		before: before,
		limit:  limit,
		req:    req,
	}
}

func (p *payloadPagination) MarshalJSON() ([]byte, error) {
	var (
		next     = ""
		previous = ""
		scheme   = "http"
	)

	if p.req.TLS != nil {
		scheme = "https"
	}

	if p.after != "" {
		next = fmt.Sprintf(
			refFmt,
			scheme,
			p.req.Host,
			p.req.URL.Path,
			p.limit,
			fmt.Sprintf("%s=%s", keyCursorAfter, p.after),
		)
	}

	if p.before != "" {
		previous = fmt.Sprintf(
			refFmt,
			scheme,
			p.req.Host,
			p.req.URL.Path,
			p.limit,
			fmt.Sprintf("%s=%s", keyCursorBefore, p.before),
		)
	}

	f := struct {
		Cursors  payloadCursors `json:"cursors"`
		Next     string         `json:"next"`
		Previous string         `json:"previous"`
	}{
		Cursors: payloadCursors{
			After:  p.after,
			Before: p.before,
		},
		Next:     next,
		Previous: previous,
	}

	return json.Marshal(&f)
}

func extractCommentID(r *http.Request) (uint64, error) {
	return strconv.ParseUint(mux.Vars(r)[keyCommentID], 10, 64)
}

func extractLimit(r *http.Request) (int, error) {
	param := r.URL.Query().Get(keyLimit)

	if param == "" {
		return limitDefault, nil
	}

	limit, err := strconv.Atoi(param)
	if err != nil {
		return 0, err
	}

	if limit > limitMax {
		return limitMax, nil
	}

	return limit, nil
}

func extractProjectID(r *http.Request) (uint64, error) {
	return strconv.ParseUint(mux.Vars(r)[keyProjectID], 10, 64)
}

func extractProjectOpts(r *http.Request) (project.QueryOptions, error) {
	var (
		opts  = project.QueryOptions{}
		param = r.URL.Query().Get(keyTags)
	)

	if param == "" {
		return opts, nil
	}

	for _, tag := range strings.Split(param, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			opts.Tags = append(opts.Tags, tag)
		}
	}

	return opts, nil
}

func extractReactionType(r *http.Request) (reaction.Type, error) {
	t, ok := reaction.IdentifierToType[mux.Vars(r)[keyReactionType]]
	if !ok {
		return 0, fmt.Errorf(
			"unsupported reaction type '%s'", mux.Vars(r)[keyReactionType],
		)
	}

	return t, nil
}

func extractTimeCursorBefore(r *http.Request) (time.Time, error) {
	var (
		before = time.Now()
		param  = r.URL.Query().Get(keyCursorBefore)
	)

	if param == "" {
		return before, nil
	}

	cursor, err := cursorEncoding.DecodeString(param)
	if err != nil {
		return before, err
	}

	return time.Parse(cursorTimeFormat, string(cursor))
}

func extractUnread(r *http.Request) *bool {
	if r.URL.Query().Get(keyUnread) == "true" {
		f := false
		return &f
	}

	return nil
}

func extractUserID(r *http.Request) (uint64, error) {
	return strconv.ParseUint(mux.Vars(r)[keyUserID], 10, 64)
}

func extractWhisperID(r *http.Request) (uint64, error) {
	return strconv.ParseUint(mux.Vars(r)[keyWhisperID], 10, 64)
}

func toTimeCursor(t time.Time) string {
	return cursorEncoding.EncodeToString([]byte(t.Format(cursorTimeFormat)))
}
