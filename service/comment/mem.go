package comment

import (
	"sort"
	"time"

	"github.com/jhlee0409/sidedish-sub001/platform/flake"
)

type memService struct {
	comments map[string]Map
}

// MemService returns a memory backed implementation of Service.
func MemService() Service {
	return &memService{
		comments: map[string]Map{},
	}
}

func (s *memService) Count(ns string, opts QueryOptions) (int, error) {
	if err := s.Setup(ns); err != nil {
		return 0, err
	}

	return len(filterMap(s.comments[ns], opts)), nil
}

func (s *memService) CountMulti(
	ns string,
	projectIDs ...uint64,
) (CountsMap, error) {
	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	countsMap := CountsMap{}

	for _, id := range projectIDs {
		countsMap[id] = 0

		for _, c := range s.comments[ns] {
			if c.Deleted {
				continue
			}

			if c.ProjectID == id {
				countsMap[id]++
			}
		}
	}

	return countsMap, nil
}

func (s *memService) Put(ns string, comment *Comment) (*Comment, error) {
	if err := comment.Validate(); err != nil {
		return nil, err
	}

	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	var (
		bucket = s.comments[ns]
		now    = time.Now().UTC()
	)

	if comment.ID == 0 {
		id, err := flake.NextID(flakeNamespace(ns))
		if err != nil {
			return nil, err
		}

		if comment.CreatedAt.IsZero() {
			comment.CreatedAt = now
		} else {
			comment.CreatedAt = comment.CreatedAt.UTC()
		}

		comment.ID = id
	} else {
		keep := false

		for _, c := range bucket {
			if c.ID == comment.ID {
				keep = true
				comment.CreatedAt = c.CreatedAt
			}
		}

		if !keep {
			return nil, wrapError(ErrNotFound, "%d", comment.ID)
		}
	}

	comment.UpdatedAt = now
	bucket[comment.ID] = copyComment(comment)

	return copyComment(comment), nil
}

func (s *memService) Query(ns string, opts QueryOptions) (List, error) {
	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	return filterMap(s.comments[ns], opts), nil
}

func (s *memService) Setup(ns string) error {
	if _, ok := s.comments[ns]; !ok {
		s.comments[ns] = Map{}
	}

	return nil
}

func (s *memService) Teardown(ns string) error {
	if _, ok := s.comments[ns]; ok {
		delete(s.comments, ns)
	}

	return nil
}

func copyComment(c *Comment) *Comment {
	old := *c
	return &old
}

func filterMap(cm Map, opts QueryOptions) List {
	cs := List{}

	for _, c := range cm {
		if !c.MatchOpts(&opts) {
			continue
		}

		cs = append(cs, copyComment(c))
	}

	sort.Sort(cs)

	if opts.Limit > 0 && len(cs) > opts.Limit {
		cs = cs[:opts.Limit]
	}

	return cs
}
