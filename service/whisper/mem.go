package whisper

import (
	"sort"
	"time"

	"github.com/jhlee0409/sidedish-sub001/platform/flake"
)

type memService struct {
	whispers map[string]Map
}

// MemService returns a memory backed implementation of Service.
func MemService() Service {
	return &memService{
		whispers: map[string]Map{},
	}
}

func (s *memService) Count(ns string, opts QueryOptions) (int, error) {
	if err := s.Setup(ns); err != nil {
		return 0, err
	}

	return len(filterMap(s.whispers[ns], opts)), nil
}

func (s *memService) Put(ns string, whisper *Whisper) (*Whisper, error) {
	if err := whisper.Validate(); err != nil {
		return nil, err
	}

	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	var (
		bucket = s.whispers[ns]
		now    = time.Now().UTC()
	)

	if whisper.ID == 0 {
		id, err := flake.NextID(flakeNamespace(ns))
		if err != nil {
			return nil, err
		}

		if whisper.CreatedAt.IsZero() {
			whisper.CreatedAt = now
		} else {
			whisper.CreatedAt = whisper.CreatedAt.UTC()
		}

		whisper.ID = id
	} else {
		keep := false

		for _, w := range bucket {
			if w.ID == whisper.ID {
				keep = true
				whisper.CreatedAt = w.CreatedAt
			}
		}

		if !keep {
			return nil, wrapError(ErrNotFound, "%d", whisper.ID)
		}
	}

	whisper.UpdatedAt = now
	bucket[whisper.ID] = copyWhisper(whisper)

	return copyWhisper(whisper), nil
}

func (s *memService) Query(ns string, opts QueryOptions) (List, error) {
	if err := s.Setup(ns); err != nil {
		return nil, err
	}

	return filterMap(s.whispers[ns], opts), nil
}

func (s *memService) Setup(ns string) error {
	if _, ok := s.whispers[ns]; !ok {
		s.whispers[ns] = Map{}
	}

	return nil
}

func (s *memService) Teardown(ns string) error {
	if _, ok := s.whispers[ns]; ok {
		delete(s.whispers, ns)
	}

	return nil
}

func copyWhisper(w *Whisper) *Whisper {
	old := *w
	return &old
}

func filterMap(wm Map, opts QueryOptions) List {
	ws := List{}

	for _, w := range wm {
		if !w.MatchOpts(&opts) {
			continue
		}

		ws = append(ws, copyWhisper(w))
	}

	sort.Sort(ws)

	if opts.Limit > 0 && len(ws) > opts.Limit {
		ws = ws[:opts.Limit]
	}

	return ws
}
