package core

import (
	"github.com/jhlee0409/sidedish-sub001/service/project"
	"github.com/jhlee0409/sidedish-sub001/service/reaction"
	"github.com/jhlee0409/sidedish-sub001/service/user"
)

// ProjectCounts bundles the comment and reaction tallies of a Project.
type ProjectCounts struct {
	Comments  uint64
	Reactions reaction.Counts
}

// ProjectCountsMap is all ProjectCounts for a feed indexed by project id.
type ProjectCountsMap map[uint64]ProjectCounts

// ProjectFeed is a collection of projects with their referenced users and
// counts.
type ProjectFeed struct {
	Counts   ProjectCountsMap
	Projects project.List
	UserMap  user.Map
}

// ProjectCreateFunc stores the project on behalf of the origin user.
type ProjectCreateFunc func(
	ns string,
	origin Origin,
	input *project.Project,
) (*project.Project, error)

// ProjectCreate stores the project on behalf of the origin user.
func ProjectCreate(
	projects project.Service,
) ProjectCreateFunc {
	return func(
		ns string,
		origin Origin,
		input *project.Project,
	) (*project.Project, error) {
		p := &project.Project{
			Description: input.Description,
			ImageURL:    input.ImageURL,
			Name:        input.Name,
			OwnerID:     origin.UserID,
			RepoURL:     input.RepoURL,
			Tagline:     input.Tagline,
			Tags:        input.Tags,
			URL:         input.URL,
			Visibility:  input.Visibility,
		}

		if p.Visibility == 0 {
			p.Visibility = project.VisibilityPublic
		}

		if err := p.Validate(); err != nil {
			return nil, wrapError(ErrInvalidEntity, "%s", err)
		}

		return projects.Put(ns, p)
	}
}

// ProjectDeleteFunc flags the project as deleted.
type ProjectDeleteFunc func(ns string, origin uint64, id uint64) error

// ProjectDelete flags the project as deleted.
func ProjectDelete(
	projects project.Service,
) ProjectDeleteFunc {
	return func(ns string, origin uint64, id uint64) error {
		ps, err := projects.Query(ns, project.QueryOptions{
			ID: &id,
			OwnerIDs: []uint64{
				origin,
			},
		})
		if err != nil {
			return err
		}

		// A delete should be idempotent and always succeed.
		if len(ps) != 1 {
			return nil
		}

		ps[0].Deleted = true

		_, err = projects.Put(ns, ps[0])
		return err
	}
}

// ProjectListFunc returns the feed of visible projects.
type ProjectListFunc func(
	ns string,
	opts project.QueryOptions,
) (*ProjectFeed, error)

// ProjectList returns the feed of visible projects.
func ProjectList(
	projects project.Service,
	users user.Service,
	counts CountCacheFunc,
) ProjectListFunc {
	return func(ns string, opts project.QueryOptions) (*ProjectFeed, error) {
		ps, err := projects.Query(ns, project.QueryOptions{
			Before: opts.Before,
			Limit:  opts.Limit,
			Tags:   opts.Tags,
			Visibilities: []project.Visibility{
				project.VisibilityPublic,
			},
		})
		if err != nil {
			return nil, err
		}

		um, err := user.MapFromIDs(users, ns, ps.OwnerIDs()...)
		if err != nil {
			return nil, err
		}

		cm, err := counts(ns, ps.IDs()...)
		if err != nil {
			return nil, err
		}

		return &ProjectFeed{
			Counts:   cm,
			Projects: ps,
			UserMap:  um,
		}, nil
	}
}

// ProjectListUserFunc returns all projects of the given owner visible to the
// origin.
type ProjectListUserFunc func(
	ns string,
	origin Origin,
	ownerID uint64,
	opts project.QueryOptions,
) (*ProjectFeed, error)

// ProjectListUser returns all projects of the given owner visible to the
// origin.
func ProjectListUser(
	projects project.Service,
	users user.Service,
	counts CountCacheFunc,
) ProjectListUserFunc {
	return func(
		ns string,
		origin Origin,
		ownerID uint64,
		opts project.QueryOptions,
	) (*ProjectFeed, error) {
		vs := []project.Visibility{
			project.VisibilityPublic,
		}

		if origin.UserID == ownerID {
			vs = append(vs, project.VisibilityPrivate)
		}

		ps, err := projects.Query(ns, project.QueryOptions{
			Before: opts.Before,
			Limit:  opts.Limit,
			OwnerIDs: []uint64{
				ownerID,
			},
			Visibilities: vs,
		})
		if err != nil {
			return nil, err
		}

		um, err := user.MapFromIDs(users, ns, ps.OwnerIDs()...)
		if err != nil {
			return nil, err
		}

		cm, err := counts(ns, ps.IDs()...)
		if err != nil {
			return nil, err
		}

		return &ProjectFeed{
			Counts:   cm,
			Projects: ps,
			UserMap:  um,
		}, nil
	}
}

// ProjectRetrieveFunc returns the project for the given id when visible to
// the origin.
type ProjectRetrieveFunc func(
	ns string,
	origin Origin,
	id uint64,
) (*project.Project, error)

// ProjectRetrieve returns the project for the given id when visible to the
// origin.
func ProjectRetrieve(
	projects project.Service,
) ProjectRetrieveFunc {
	return func(ns string, origin Origin, id uint64) (*project.Project, error) {
		ps, err := projects.Query(ns, project.QueryOptions{
			ID: &id,
		})
		if err != nil {
			return nil, err
		}

		if len(ps) != 1 {
			return nil, ErrNotFound
		}

		p := ps[0]

		if err := constrainProjectVisible(origin, p); err != nil {
			return nil, err
		}

		return p, nil
	}
}

// ProjectUpdateFunc stores the new attributes of the project, owner only.
type ProjectUpdateFunc func(
	ns string,
	origin Origin,
	id uint64,
	new *project.Project,
) (*project.Project, error)

// ProjectUpdate stores the new attributes of the project, owner only.
func ProjectUpdate(
	projects project.Service,
) ProjectUpdateFunc {
	return func(
		ns string,
		origin Origin,
		id uint64,
		new *project.Project,
	) (*project.Project, error) {
		ps, err := projects.Query(ns, project.QueryOptions{
			ID: &id,
		})
		if err != nil {
			return nil, err
		}

		if len(ps) != 1 {
			return nil, ErrNotFound
		}

		old := ps[0]

		if old.OwnerID != origin.UserID {
			return nil, wrapError(ErrUnauthorized, "not project owner")
		}

		p := &project.Project{
			CreatedAt:   old.CreatedAt,
			Description: new.Description,
			ID:          old.ID,
			ImageURL:    new.ImageURL,
			Name:        new.Name,
			OwnerID:     old.OwnerID,
			RepoURL:     new.RepoURL,
			Tagline:     new.Tagline,
			Tags:        new.Tags,
			URL:         new.URL,
			Visibility:  new.Visibility,
		}

		if p.Visibility == 0 {
			p.Visibility = old.Visibility
		}

		if err := p.Validate(); err != nil {
			return nil, wrapError(ErrInvalidEntity, "%s", err)
		}

		return projects.Put(ns, p)
	}
}

func constrainProjectVisible(origin Origin, p *project.Project) error {
	if p.Deleted {
		return ErrNotFound
	}

	if p.Visibility == project.VisibilityPublic {
		return nil
	}

	if p.OwnerID == origin.UserID {
		return nil
	}

	return ErrNotFound
}

func projectExists(
	projects project.Service,
	ns string,
	origin Origin,
	id uint64,
) (*project.Project, error) {
	ps, err := projects.Query(ns, project.QueryOptions{
		ID: &id,
	})
	if err != nil {
		return nil, err
	}

	if len(ps) != 1 {
		return nil, ErrNotFound
	}

	if err := constrainProjectVisible(origin, ps[0]); err != nil {
		return nil, err
	}

	return ps[0], nil
}
