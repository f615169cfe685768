package cache

import "sync"

type memCountService struct {
	sync.Mutex

	counts map[string]int
}

// MemCountService returns a memory backed implementation of CountService.
func MemCountService() CountService {
	return &memCountService{
		counts: map[string]int{},
	}
}

func (s *memCountService) Decr(ns, key string) (int, error) {
	s.Lock()
	defer s.Unlock()

	k := prefixKey(ns, key)

	if _, ok := s.counts[k]; !ok {
		return 0, wrapError(ErrKeyNotFound, "%s", k)
	}

	s.counts[k]--

	return s.counts[k], nil
}

func (s *memCountService) Get(ns, key string) (int, error) {
	s.Lock()
	defer s.Unlock()

	k := prefixKey(ns, key)

	count, ok := s.counts[k]
	if !ok {
		return 0, wrapError(ErrKeyNotFound, "%s", k)
	}

	return count, nil
}

func (s *memCountService) Incr(ns, key string) (int, error) {
	s.Lock()
	defer s.Unlock()

	k := prefixKey(ns, key)

	if _, ok := s.counts[k]; !ok {
		return 0, wrapError(ErrKeyNotFound, "%s", k)
	}

	s.counts[k]++

	return s.counts[k], nil
}

func (s *memCountService) Set(ns, key string, count int) error {
	s.Lock()
	defer s.Unlock()

	s.counts[prefixKey(ns, key)] = count

	return nil
}
