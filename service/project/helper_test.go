package project

import (
	"reflect"
	"testing"
)

type prepareFunc func(t *testing.T, namespace string) Service

func testList() List {
	ps := List{}

	for i := 0; i < 7; i++ {
		p := testProject(1)

		if i < 3 {
			p.Tags = []string{"go", "cli"}
		}

		ps = append(ps, p)
	}

	for i := 0; i < 5; i++ {
		p := testProject(1)

		p.Visibility = VisibilityPrivate

		ps = append(ps, p)
	}

	for i := 0; i < 4; i++ {
		ps = append(ps, testProject(2))
	}

	for i := 0; i < 3; i++ {
		p := testProject(2)

		p.Deleted = true

		ps = append(ps, p)
	}

	return ps
}

func testProject(ownerID uint64) *Project {
	return &Project{
		Description: "Tiny tool that renames photos by their EXIF date.",
		Name:        "exif-renamer",
		OwnerID:     ownerID,
		RepoURL:     "https://github.com/sidedish/exif-renamer",
		Tagline:     "Bring order to your camera roll.",
		Tags:        []string{"photography"},
		URL:         "https://exif-renamer.sidedish.app",
		Visibility:  VisibilityPublic,
	}
}

func testServiceCount(p prepareFunc, t *testing.T) {
	var (
		namespace = "service_count"
		service   = p(t, namespace)
	)

	for _, project := range testList() {
		_, err := service.Put(namespace, project)
		if err != nil {
			t.Fatal(err)
		}
	}

	cases := map[*QueryOptions]int{
		{}:                                        16,
		{Deleted: true}:                           3,
		{OwnerIDs: []uint64{1}}:                   12,
		{Visibilities: []Visibility{VisibilityPublic}}: 11,
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

	created, err := service.Put(namespace, testProject(123))
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

	created.Tagline = "Now with RAW support."

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

	if have, want := list[0], updated; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}
}

func testServicePutMissing(p prepareFunc, t *testing.T) {
	var (
		namespace = "service_put_missing"
		service   = p(t, namespace)
	)

	project := testProject(123)
	project.ID = 1

	_, err := service.Put(namespace, project)
	if !IsNotFound(err) {
		t.Errorf("have %v, want %v", err, ErrNotFound)
	}
}

func testServiceQuery(p prepareFunc, t *testing.T) {
	var (
		namespace = "service_query"
		service   = p(t, namespace)

		target *Project
	)

	for i, project := range testList() {
		created, err := service.Put(namespace, project)
		if err != nil {
			t.Fatal(err)
		}

		if i == 8 {
			target = created
		}
	}

	cases := map[*QueryOptions]int{
		{}:                       16,
		{IDs: []uint64{target.ID}}: 1,
		{Limit: 5}:                 5,
		{OwnerIDs: []uint64{2}}:    4,
		{Tags: []string{"go"}}:     3,
		{Visibilities: []Visibility{VisibilityPrivate}}: 5,
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
