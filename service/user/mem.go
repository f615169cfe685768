package user

import (
	"time"

	"github.com/jhlee0409/sidedish-sub001/platform/flake"
)

type memService struct {
	users map[string]Map
}

// MemService returns a memory backed implementation of Service.
func MemService() Service {
	return &memService{
		users: map[string]Map{},
	}
}

func (s *memService) Count(ns string, opts QueryOptions) (int, error) {
	if err := s.Setup(ns); err != nil {
		return 0, err
	}

	return len(filterList(s.users[ns].ToList(), opts)), nil
}

func (s *memService) Put(ns string, input *User) (*User, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	var (
		bucket = s.users[ns]
		now    = time.Now().UTC()
	)

	if input.ID == 0 {
		for _, u := range bucket {
			if u.Enabled && input.Email != "" && u.Email == input.Email {
				return nil, wrapError(ErrNotUnique, "email taken '%s'", input.Email)
			}

			if u.Enabled && input.Username != "" && u.Username == input.Username {
				return nil, wrapError(ErrNotUnique, "username taken '%s'", input.Username)
			}
		}

		id, err := flake.NextID(flakeNamespace(ns))
		if err != nil {
			return nil, err
		}

		if input.CreatedAt.IsZero() {
			input.CreatedAt = now
		}

		input.ID = id
	} else {
		keep := false

		for _, u := range bucket {
			if u.ID == input.ID {
				keep = true
				input.CreatedAt = u.CreatedAt
			}
		}

		if !keep {
			return nil, wrapError(ErrNotFound, "%d", input.ID)
		}
	}

	input.UpdatedAt = now
	bucket[input.ID] = copyUser(input)

	return copyUser(input), nil
}

func (s *memService) Query(ns string, opts QueryOptions) (List, error) {
	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	us := filterList(s.users[ns].ToList(), opts)

	if opts.Limit > 0 && len(us) > opts.Limit {
		us = us[:opts.Limit]
	}

	return us, nil
}

func (s *memService) Setup(ns string) error {
	if _, ok := s.users[ns]; !ok {
		s.users[ns] = Map{}
	}

	return nil
}

func (s *memService) Teardown(ns string) error {
	if _, ok := s.users[ns]; ok {
		delete(s.users, ns)
	}

	return nil
}

func copyUser(u *User) *User {
	old := *u
	return &old
}

func filterList(us List, opts QueryOptions) List {
	fs := List{}

	for _, u := range us {
		if opts.Deleted != nil && u.Deleted != *opts.Deleted {
			continue
		}

		if !inStrings(u.Email, opts.Emails) {
			continue
		}

		if opts.Enabled != nil && u.Enabled != *opts.Enabled {
			continue
		}

		if !inIDs(u.ID, opts.IDs) {
			continue
		}

		if !inStrings(u.Username, opts.Usernames) {
			continue
		}

		fs = append(fs, u)
	}

	return fs
}

func inIDs(id uint64, ids []uint64) bool {
	if len(ids) == 0 {
		return true
	}

	keep := false

	for _, i := range ids {
		if id == i {
			keep = true
			break
		}
	}

	return keep
}

func inStrings(s string, ss []string) bool {
	if len(ss) == 0 {
		return true
	}

	keep := false

	for _, i := range ss {
		if s == i {
			keep = true
			break
		}
	}

	return keep
}
