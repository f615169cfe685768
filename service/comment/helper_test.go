package comment

import (
	"reflect"
	"testing"
)

type prepareFunc func(t *testing.T, namespace string) Service

func testComment(ownerID, projectID uint64) *Comment {
	return &Comment{
		Content:   "Love the idea, does it handle HEIC files?",
		OwnerID:   ownerID,
		ProjectID: projectID,
	}
}

func testList() List {
	cs := List{}

	for i := 0; i < 6; i++ {
		cs = append(cs, testComment(1, 10))
	}

	for i := 0; i < 5; i++ {
		cs = append(cs, testComment(2, 10))
	}

	for i := 0; i < 3; i++ {
		cs = append(cs, testComment(2, 20))
	}

	for i := 0; i < 2; i++ {
		c := testComment(3, 20)

		c.Deleted = true

		cs = append(cs, c)
	}

	return cs
}

func testServiceCount(p prepareFunc, t *testing.T) {
	var (
		namespace = "service_count"
		service   = p(t, namespace)
	)

	for _, c := range testList() {
		_, err := service.Put(namespace, c)
		if err != nil {
			t.Fatal(err)
		}
	}

	cases := map[*QueryOptions]int{
		{}:                          14,
		{Deleted: true}:             2,
		{OwnerIDs: []uint64{2}}:     8,
		{ProjectIDs: []uint64{10}}:  11,
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

func testServiceCountMulti(p prepareFunc, t *testing.T) {
	var (
		namespace = "service_count_multi"
		service   = p(t, namespace)
	)

	for _, c := range testList() {
		_, err := service.Put(namespace, c)
		if err != nil {
			t.Fatal(err)
		}
	}

	countsMap, err := service.CountMulti(namespace, 10, 20, 30)
	if err != nil {
		t.Fatal(err)
	}

	want := CountsMap{
		10: 11,
		20: 3,
		30: 0,
	}

	if have := countsMap; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}
}

func testServicePut(p prepareFunc, t *testing.T) {
	var (
		namespace = "service_put"
		service   = p(t, namespace)
	)

	created, err := service.Put(namespace, testComment(123, 321))
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

	created.Content = "Love the idea, HEIC support would be great."

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

	c := testComment(123, 321)
	c.ID = 1

	_, err := service.Put(namespace, c)
	if !IsNotFound(err) {
		t.Errorf("have %v, want %v", err, ErrNotFound)
	}
}

func testServiceQuery(p prepareFunc, t *testing.T) {
	var (
		namespace = "service_query"
		service   = p(t, namespace)

		target *Comment
	)

	for i, c := range testList() {
		created, err := service.Put(namespace, c)
		if err != nil {
			t.Fatal(err)
		}

		if i == 7 {
			target = created
		}
	}

	cases := map[*QueryOptions]int{
		{}:                         14,
		{ID: &target.ID}:           1,
		{Limit: 4}:                 4,
		{OwnerIDs: []uint64{1}}:    6,
		{ProjectIDs: []uint64{20}}: 3,
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
