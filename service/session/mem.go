package session

import (
	"time"
)

type memService struct {
	sessions map[string]Map
}

// MemService returns a memory backed implementation of Service.
func MemService() Service {
	return &memService{
		sessions: map[string]Map{},
	}
}

func (s *memService) Put(ns string, input *Session) (*Session, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	bucket := s.sessions[ns]

	if input.ID == "" {
		input.CreatedAt = time.Now().UTC()
		input.ID = generateID()
	} else {
		if _, ok := bucket[input.ID]; !ok {
			return nil, wrapError(ErrNotFound, "%s", input.ID)
		}
	}

	bucket[input.ID] = copySession(input)

	return copySession(input), nil
}

func (s *memService) Query(ns string, opts QueryOptions) (List, error) {
	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	ss := List{}

	for _, session := range s.sessions[ns] {
		if opts.Enabled != nil && session.Enabled != *opts.Enabled {
			continue
		}

		if !inIDs(session.ID, opts.IDs) {
			continue
		}

		if !inUserIDs(session.UserID, opts.UserIDs) {
			continue
		}

		ss = append(ss, copySession(session))
	}

	return ss, nil
}

func (s *memService) Setup(ns string) error {
	if _, ok := s.sessions[ns]; !ok {
		s.sessions[ns] = Map{}
	}

	return nil
}

func (s *memService) Teardown(ns string) error {
	if _, ok := s.sessions[ns]; ok {
		delete(s.sessions, ns)
	}

	return nil
}

func copySession(s *Session) *Session {
	old := *s
	return &old
}

func inIDs(id string, ids []string) bool {
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

func inUserIDs(id uint64, ids []uint64) bool {
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
