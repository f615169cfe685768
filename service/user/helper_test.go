package user

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/jhlee0409/sidedish-sub001/platform/generate"
)

type prepareFunc func(t *testing.T, namespace string) Service

func testList() List {
	us := List{}

	for i := 0; i < 9; i++ {
		u := testUser()

		u.Deleted = true
		u.Enabled = false

		us = append(us, u)
	}

	for i := 0; i < 7; i++ {
		us = append(us, testUser())
	}

	return us
}

func testServiceCount(p prepareFunc, t *testing.T) {
	var (
		deleted   = true
		enabled   = true
		namespace = "service_count"
		service   = p(t, namespace)
	)

	for _, u := range testList() {
		_, err := service.Put(namespace, u)
		if err != nil {
			t.Fatal(err)
		}
	}

	cases := map[*QueryOptions]int{
		{}:                  16,
		{Deleted: &deleted}: 9,
		{Enabled: &enabled}: 7,
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

	created, err := service.Put(namespace, testUser())
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

	created.About = "Building side projects at night."

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

	u := testUser()
	u.ID = 1

	_, err := service.Put(namespace, u)
	if !IsNotFound(err) {
		t.Errorf("have %v, want %v", err, ErrNotFound)
	}
}

func testServiceQuery(p prepareFunc, t *testing.T) {
	var (
		enabled   = true
		namespace = "service_query"
		service   = p(t, namespace)

		target *User
	)

	for i, u := range testList() {
		created, err := service.Put(namespace, u)
		if err != nil {
			t.Fatal(err)
		}

		if i == 12 {
			target = created
		}
	}

	cases := map[*QueryOptions]int{
		{}:                              16,
		{Enabled: &enabled}:             7,
		{Emails: []string{target.Email}}: 1,
		{IDs: []uint64{target.ID}}:       1,
		{Limit: 5}:                       5,
		{Usernames: []string{target.Username}}: 1,
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

func testUser() *User {
	return &User{
		About:    "All things hardware.",
		Email:    fmt.Sprintf("%s@sidedish.app", generate.RandomString(12)),
		Enabled:  true,
		Password: generate.RandomString(8),
		Username: generate.RandomString(8),
	}
}
