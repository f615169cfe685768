package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/net/context"

	"github.com/jhlee0409/sidedish-sub001/core"
	"github.com/jhlee0409/sidedish-sub001/service/project"
	"github.com/jhlee0409/sidedish-sub001/service/reaction"
	"github.com/jhlee0409/sidedish-sub001/service/user"
)

// ProjectCreate stores the project on behalf of the current user.
func ProjectCreate(fn core.ProjectCreateFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		var (
			ns     = namespaceFromContext(ctx)
			origin = originFromContext(ctx)
			p      = payloadProject{}
		)

		err := json.NewDecoder(r.Body).Decode(&p)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		created, err := fn(ns, origin, p.project)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusCreated, &payloadProject{project: created})
	}
}

// ProjectDelete flags the project as deleted.
func ProjectDelete(fn core.ProjectDeleteFunc) Handler {
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

		err = fn(ns, currentUser.ID, projectID)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusNoContent, nil)
	}
}

// ProjectList returns the feed of public projects.
func ProjectList(fn core.ProjectListFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		ns := namespaceFromContext(ctx)

		opts, err := extractProjectOpts(r)
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

		feed, err := fn(ns, opts)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		if len(feed.Projects) == 0 {
			respondJSON(w, http.StatusNoContent, nil)
			return
		}

		respondJSON(w, http.StatusOK, &payloadProjects{
			counts: feed.Counts,
			pagination: pagination(
				r,
				opts.Limit,
				projectCursorAfter(feed.Projects, opts.Limit),
				projectCursorBefore(feed.Projects, opts.Limit),
			),
			projects: feed.Projects,
			userMap:  feed.UserMap,
		})
	}
}

// ProjectListUser returns all projects of the requested user visible to the
// current user.
func ProjectListUser(fn core.ProjectListUserFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		var (
			ns     = namespaceFromContext(ctx)
			origin = originFromContext(ctx)
		)

		userID, err := extractUserID(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		opts, err := extractProjectOpts(r)
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

		feed, err := fn(ns, origin, userID, opts)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		if len(feed.Projects) == 0 {
			respondJSON(w, http.StatusNoContent, nil)
			return
		}

		respondJSON(w, http.StatusOK, &payloadProjects{
			counts: feed.Counts,
			pagination: pagination(
				r,
				opts.Limit,
				projectCursorAfter(feed.Projects, opts.Limit),
				projectCursorBefore(feed.Projects, opts.Limit),
			),
			projects: feed.Projects,
			userMap:  feed.UserMap,
		})
	}
}

// ProjectRetrieve returns the project for the requested id.
func ProjectRetrieve(fn core.ProjectRetrieveFunc) Handler {
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

		p, err := fn(ns, origin, projectID)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusOK, &payloadProject{project: p})
	}
}

// ProjectUpdate stores the new attributes of the project.
func ProjectUpdate(fn core.ProjectUpdateFunc) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		var (
			ns     = namespaceFromContext(ctx)
			origin = originFromContext(ctx)
			p      = payloadProject{}
		)

		projectID, err := extractProjectID(r)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		err = json.NewDecoder(r.Body).Decode(&p)
		if err != nil {
			respondError(w, 0, wrapError(ErrBadRequest, err.Error()))
			return
		}

		updated, err := fn(ns, origin, projectID, p.project)
		if err != nil {
			respondError(w, 0, err)
			return
		}

		respondJSON(w, http.StatusOK, &payloadProject{project: updated})
	}
}

type payloadCounts struct {
	counts core.ProjectCounts
}

func (p *payloadCounts) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Comments  uint64          `json:"comments"`
		Reactions reaction.Counts `json:"reactions"`
	}{
		Comments:  p.counts.Comments,
		Reactions: p.counts.Reactions,
	})
}

type payloadProject struct {
	counts  *core.ProjectCounts
	project *project.Project
}

func (p *payloadProject) MarshalJSON() ([]byte, error) {
	var counts *payloadCounts

	if p.counts != nil {
		counts = &payloadCounts{counts: *p.counts}
	}

	return json.Marshal(struct {
		Counts      *payloadCounts     `json:"counts,omitempty"`
		Description string             `json:"description"`
		ID          string             `json:"id"`
		ImageURL    string             `json:"image_url,omitempty"`
		Name        string             `json:"name"`
		OwnerID     string             `json:"owner_id"`
		RepoURL     string             `json:"repo_url,omitempty"`
		Tagline     string             `json:"tagline"`
		Tags        []string           `json:"tags"`
		URL         string             `json:"url,omitempty"`
		Visibility  project.Visibility `json:"visibility"`
		CreatedAt   time.Time          `json:"created_at"`
		UpdatedAt   time.Time          `json:"updated_at"`
	}{
		Counts:      counts,
		Description: p.project.Description,
		ID:          strconv.FormatUint(p.project.ID, 10),
		ImageURL:    p.project.ImageURL,
		Name:        p.project.Name,
		OwnerID:     strconv.FormatUint(p.project.OwnerID, 10),
		RepoURL:     p.project.RepoURL,
		Tagline:     p.project.Tagline,
		Tags:        p.project.Tags,
		URL:         p.project.URL,
		Visibility:  p.project.Visibility,
		CreatedAt:   p.project.CreatedAt,
		UpdatedAt:   p.project.UpdatedAt,
	})
}

func (p *payloadProject) UnmarshalJSON(raw []byte) error {
	f := struct {
		Description string             `json:"description"`
		ImageURL    string             `json:"image_url,omitempty"`
		Name        string             `json:"name"`
		RepoURL     string             `json:"repo_url,omitempty"`
		Tagline     string             `json:"tagline"`
		Tags        []string           `json:"tags"`
		URL         string             `json:"url,omitempty"`
		Visibility  project.Visibility `json:"visibility"`
	}{}

	err := json.Unmarshal(raw, &f)
	if err != nil {
		return err
	}

	p.project = &project.Project{
		Description: f.Description,
		ImageURL:    f.ImageURL,
		Name:        f.Name,
		RepoURL:     f.RepoURL,
		Tagline:     f.Tagline,
		Tags:        f.Tags,
		URL:         f.URL,
		Visibility:  f.Visibility,
	}

	return nil
}

type payloadProjects struct {
	counts     core.ProjectCountsMap
	pagination *payloadPagination
	projects   project.List
	userMap    user.Map
}

func (p *payloadProjects) MarshalJSON() ([]byte, error) {
	ps := []*payloadProject{}

	for _, pr := range p.projects {
		var counts *core.ProjectCounts

		if cs, ok := p.counts[pr.ID]; ok {
			counts = &cs
		}

		ps = append(ps, &payloadProject{
			counts:  counts,
			project: pr,
		})
	}

	return json.Marshal(struct {
		Pagination    *payloadPagination `json:"paging"`
		Projects      []*payloadProject  `json:"projects"`
		ProjectsCount int                `json:"projects_count"`
		UserMap       *payloadUserMap    `json:"users"`
		UsersCount    int                `json:"users_count"`
	}{
		Pagination:    p.pagination,
		Projects:      ps,
		ProjectsCount: len(ps),
		UserMap:       &payloadUserMap{userMap: p.userMap},
		UsersCount:    len(p.userMap),
	})
}

func projectCursorAfter(ps project.List, limit int) string {
	var after string

	if len(ps) > 0 {
		after = toTimeCursor(ps[0].CreatedAt)
	}

	return after
}

func projectCursorBefore(ps project.List, limit int) string {
	var before string

	if len(ps) > 0 {
		before = toTimeCursor(ps[len(ps)-1].CreatedAt)
	}

	return before
}
