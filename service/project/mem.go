package project

import (
	"sort"
	"time"

	"github.com/jhlee0409/sidedish-sub001/platform/flake"
)

type memService struct {
	projects map[string]Map
}

// MemService returns a memory backed implementation of Service.
func MemService() Service {
	return &memService{
		projects: map[string]Map{},
	}
}

func (s *memService) Count(ns string, opts QueryOptions) (int, error) {
	if err := s.Setup(ns); err != nil {
		return 0, err
	}

	return len(filterMap(s.projects[ns], opts)), nil
}

func (s *memService) Put(ns string, project *Project) (*Project, error) {
	if err := project.Validate(); err != nil {
		return nil, err
	}

	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	var (
		bucket = s.projects[ns]
		now    = time.Now().UTC()
	)

	if project.ID == 0 {
		id, err := flake.NextID(flakeNamespace(ns))
		if err != nil {
			return nil, err
		}

		if project.CreatedAt.IsZero() {
			project.CreatedAt = now
		} else {
			project.CreatedAt = project.CreatedAt.UTC()
		}

		project.ID = id
	} else {
		keep := false

		for _, p := range bucket {
			if p.ID == project.ID {
				keep = true
				project.CreatedAt = p.CreatedAt
			}
		}

		if !keep {
			return nil, wrapError(ErrNotFound, "%d", project.ID)
		}
	}

	project.UpdatedAt = now
	bucket[project.ID] = copyProject(project)

	return copyProject(project), nil
}

func (s *memService) Query(ns string, opts QueryOptions) (List, error) {
	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	return filterMap(s.projects[ns], opts), nil
}

func (s *memService) Setup(ns string) error {
	if _, ok := s.projects[ns]; !ok {
		s.projects[ns] = Map{}
	}

	return nil
}

func (s *memService) Teardown(ns string) error {
	if _, ok := s.projects[ns]; ok {
		delete(s.projects, ns)
	}

	return nil
}

func copyProject(p *Project) *Project {
	old := *p

	if p.Tags != nil {
		old.Tags = append([]string{}, p.Tags...)
	}

	return &old
}

func filterMap(pm Map, opts QueryOptions) List {
	ps := List{}

	for _, p := range pm {
		if !p.MatchOpts(&opts) {
			continue
		}

		ps = append(ps, copyProject(p))
	}

	sort.Sort(ps)

	if opts.Limit > 0 && len(ps) > opts.Limit {
		ps = ps[:opts.Limit]
	}

	return ps
}
