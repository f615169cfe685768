package whisper

import (
	"reflect"
	"testing"
)

type prepareFunc func(t *testing.T, namespace string) Service

func testList() List {
	ws := List{}

	for i := 0; i < 6; i++ {
		ws = append(ws, testWhisper(1, 10))
	}

	for i := 0; i < 4; i++ {
		w := testWhisper(2, 10)

		w.Read = true

		ws = append(ws, w)
	}

	for i := 0; i < 3; i++ {
		ws = append(ws, testWhisper(2, 20))
	}

	for i := 0; i < 2; i++ {
		w := testWhisper(3, 20)

		w.Deleted = true

		ws = append(ws, w)
	}

	return ws
}

func testWhisper(senderID, projectID uint64) *Whisper {
	return &Whisper{
		Content:   "The onboarding flow loses me at step two, maybe merge the forms?",
		ProjectID: projectID,
		SenderID:  senderID,
	}
}

func testServiceCount(p prepareFunc, t *testing.T) {
	var (
		namespace = "service_count"
		read      = true
		service   = p(t, namespace)
	)

	for _, w := range testList() {
		_, err := service.Put(namespace, w)
		if err != nil {
			t.Fatal(err)
		}
	}

	cases := map[*QueryOptions]int{
		{}:                         13,
		{Deleted: true}:            2,
		{ProjectIDs: []uint64{10}}: 10,
		{Read: &read}:              4,
		{SenderIDs: []uint64{2}}:   7,
	}

	for opts, want := range cases {
		have, err := service.Count(namespace, *opts)
		if err != nil {
			t.Fatal(err)
		}

		if have != want {
			t.Errorf("have %v, want %v", have, want)
		}
	}
}

func testServicePut(p prepareFunc, t *testing.T) {
	var (
		namespace = "service_put"
		service   = p(t, namespace)
	)

	created, err := service.Put(namespace, testWhisper(123, 321))
	if err != nil {
		t.Fatal(err)
	}

	list, err := service.Query(namespace, QueryOptions{
		ID: &created.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(list), 1; have != want {
		t.Fatalf("have %v, want %v", have, want)
	}

	if have, want := list[0], created; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}

	created.Read = true

	updated, err := service.Put(namespace, created)
	if err != nil {
		t.Fatal(err)
	}

	list, err = service.Query(namespace, QueryOptions{
		ID: &created.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := list[0], updated; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}
}

func testServicePutMissing(p prepareFunc, t *testing.T) {
	var (
		namespace = "service_put_missing"
		service   = p(t, namespace)
	)

	w := testWhisper(123, 321)
	w.ID = 1

	_, err := service.Put(namespace, w)
	if !IsNotFound(err) {
		t.Errorf("have %v, want %v", err, ErrNotFound)
	}
}

func testServiceQuery(p prepareFunc, t *testing.T) {
	var (
		namespace = "service_query"
		service   = p(t, namespace)

		target *Whisper
	)

	for i, w := range testList() {
		created, err := service.Put(namespace, w)
		if err != nil {
			t.Fatal(err)
		}

		if i == 5 {
			target = created
		}
	}

	cases := map[*QueryOptions]int{
		{}:                         13,
		{ID: &target.ID}:           1,
		{Limit: 4}:                 4,
		{ProjectIDs: []uint64{20}}: 3,
		{SenderIDs: []uint64{1}}:   6,
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
