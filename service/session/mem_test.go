package session

import "testing"

func TestMemPut(t *testing.T) {
	var (
		namespace = "service_put"
		service   = MemService()
	)

	created, err := service.Put(namespace, &Session{
		Enabled: true,
		UserID:  123,
	})
	if err != nil {
		t.Fatal(err)
	}

	if created.ID == "" {
		t.Errorf("expected id to be generated")
	}

	created.Enabled = false

	updated, err := service.Put(namespace, created)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := updated.Enabled, false; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestMemPutInvalid(t *testing.T) {
	_, err := MemService().Put("service_put_invalid", &Session{})
	if !IsInvalidSession(err) {
		t.Errorf("have %v, want %v", err, ErrInvalidSession)
	}
}

func TestMemQuery(t *testing.T) {
	var (
		enabled   = true
		namespace = "service_query"
		service   = MemService()

		target *Session
	)

	for i := 0; i < 7; i++ {
		s, err := service.Put(namespace, &Session{
			Enabled: i%2 == 0,
			UserID:  uint64(i + 1),
		})
		if err != nil {
			t.Fatal(err)
		}

		if i == 4 {
			target = s
		}
	}

	cases := map[*QueryOptions]int{
		{}:                              7,
		{Enabled: &enabled}:             4,
		{IDs: []string{target.ID}}:      1,
		{UserIDs: []uint64{target.UserID}}: 1,
	}

	for opts, want := range cases {
		list, err := service.Query(namespace, *opts)
		if err != nil {
			t.Fatal(err)
		}

		if have := len(list); have != want {
			t.Errorf("have %v, want %v", have, want)
		}
	}
}
