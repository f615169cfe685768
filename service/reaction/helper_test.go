package reaction

import (
	"math/rand"
	"reflect"
	"testing"
)

type prepareFunc func(t *testing.T, namespace string) Service

func testList(projectID, ownerID uint64) List {
	rs := List{}

	for i := 0; i < 14; i++ {
		rs = append(rs, &Reaction{
			OwnerID:   uint64(i + 1000),
			ProjectID: uint64(i + 2000),
			Type:      TypeLike,
		})
	}

	for i := 0; i < 8; i++ {
		rs = append(rs, &Reaction{
			OwnerID:   uint64(i + 1000),
			ProjectID: uint64(i + 2000),
			Type:      TypeLove,
		})
	}

	for i := 0; i < 6; i++ {
		rs = append(rs, &Reaction{
			OwnerID:   uint64(i + 1000),
			ProjectID: uint64(i + 2000),
			Type:      TypeClap,
		})
	}

	for i := 0; i < 4; i++ {
		rs = append(rs, &Reaction{
			OwnerID:   uint64(i + 1000),
			ProjectID: uint64(i + 2000),
			Type:      TypeWow,
		})
	}

	for i := 0; i < 2; i++ {
		rs = append(rs, &Reaction{
			OwnerID:   uint64(i + 1000),
			ProjectID: uint64(i + 2000),
			Type:      TypeIdea,
		})
	}

	rs = append(rs,
		&Reaction{OwnerID: 1, ProjectID: projectID, Type: TypeLike},
		&Reaction{OwnerID: 2, ProjectID: projectID, Type: TypeLove},
		&Reaction{OwnerID: 3, ProjectID: projectID, Type: TypeLike},
	)

	for i := 0; i < 5; i++ {
		rs = append(rs, &Reaction{
			OwnerID:   ownerID,
			ProjectID: uint64(i + 3000),
			Type:      TypeWow,
		})
	}

	for i := 0; i < 2; i++ {
		rs = append(rs, &Reaction{
			Deleted:   true,
			OwnerID:   uint64(i + 1000),
			ProjectID: uint64(i + 4000),
			Type:      TypeLike,
		})
	}

	return rs
}

func testServiceCount(p prepareFunc, t *testing.T) {
	var (
		deleted   = true
		namespace = "service_count"
		ownerID   = uint64(rand.Int63())
		projectID = uint64(rand.Int63())
		service   = p(t, namespace)
	)

	for _, r := range testList(projectID, ownerID) {
		_, err := service.Put(namespace, r)
		if err != nil {
			t.Fatal(err)
		}
	}

	cases := map[*QueryOptions]uint{
		{}:                                 44,
		{Deleted: &deleted}:                2,
		{OwnerIDs: []uint64{ownerID}}:      5,
		{ProjectIDs: []uint64{projectID}}:  3,
		{Types: []Type{TypeLike}}:          18,
		{Types: []Type{TypeLove}}:          9,
		{Types: []Type{TypeClap}}:          6,
		{Types: []Type{TypeWow}}:           9,
		{Types: []Type{TypeIdea}}:          2,
		{Types: []Type{TypeClap, TypeIdea}}: 8,
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
		ownerID   = uint64(rand.Int63())
		projectID = uint64(rand.Int63())
		service   = p(t, namespace)
	)

	for _, r := range testList(projectID, ownerID) {
		_, err := service.Put(namespace, r)
		if err != nil {
			t.Fatal(err)
		}
	}

	countsMap, err := service.CountMulti(namespace, QueryOptions{
		ProjectIDs: []uint64{
			projectID,
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	want := CountsMap{
		projectID: Counts{
			Like: 2,
			Love: 1,
		},
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

	created, err := service.Put(namespace, &Reaction{
		OwnerID:   123,
		ProjectID: 321,
		Type:      TypeClap,
	})
	if err != nil {
		t.Fatal(err)
	}

	list, err := service.Query(namespace, QueryOptions{
		IDs: []uint64{
			created.ID,
		},
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

	created.Deleted = true

	updated, err := service.Put(namespace, created)
	if err != nil {
		t.Fatal(err)
	}

	list, err = service.Query(namespace, QueryOptions{
		IDs: []uint64{
			created.ID,
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := list[0].Deleted, updated.Deleted; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func testServiceQuery(p prepareFunc, t *testing.T) {
	var (
		namespace = "service_query"
		ownerID   = uint64(rand.Int63())
		projectID = uint64(rand.Int63())
		service   = p(t, namespace)

		target *Reaction
	)

	for i, r := range testList(projectID, ownerID) {
		created, err := service.Put(namespace, r)
		if err != nil {
			t.Fatal(err)
		}

		if i == 11 {
			target = created
		}
	}

	cases := map[*QueryOptions]int{
		{}:                                44,
		{IDs: []uint64{target.ID}}:        1,
		{Limit: 10}:                       10,
		{OwnerIDs: []uint64{ownerID}}:     5,
		{ProjectIDs: []uint64{projectID}}: 3,
		{Types: []Type{TypeIdea}}:         2,
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
