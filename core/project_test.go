package core

import (
	"fmt"
	"math/rand"
	"reflect"
	"testing"

	"github.com/jhlee0409/sidedish-sub001/platform/cache"
	"github.com/jhlee0409/sidedish-sub001/service/comment"
	"github.com/jhlee0409/sidedish-sub001/service/project"
	"github.com/jhlee0409/sidedish-sub001/service/reaction"
	"github.com/jhlee0409/sidedish-sub001/service/user"
)

func TestProjectCreate(t *testing.T) {
	var (
		ns       = testNamespace()
		origin   = Origin{UserID: uint64(rand.Int63())}
		projects = project.MemService()
		fn       = ProjectCreate(projects)
	)

	created, err := fn(ns, origin, testProject(0))
	if err != nil {
		t.Fatal(err)
	}

	if have, want := created.OwnerID, origin.UserID; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := created.Visibility, project.VisibilityPublic; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	_, err = fn(ns, origin, &project.Project{})
	if have, want := err, ErrInvalidEntity; !IsInvalidEntity(have) {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestProjectDelete(t *testing.T) {
	var (
		ns       = testNamespace()
		origin   = Origin{UserID: uint64(rand.Int63())}
		projects = project.MemService()
		fn       = ProjectDelete(projects)
	)

	created, err := projects.Put(ns, testProject(origin.UserID))
	if err != nil {
		t.Fatal(err)
	}

	err = fn(ns, origin.UserID, created.ID)
	if err != nil {
		t.Fatal(err)
	}

	ps, err := projects.Query(ns, project.QueryOptions{
		Deleted: true,
		ID:      &created.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(ps), 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	// Delete should be idempotent.
	err = fn(ns, origin.UserID, created.ID)
	if err != nil {
		t.Fatal(err)
	}
}

func TestProjectDeleteNotOwner(t *testing.T) {
	var (
		ns       = testNamespace()
		ownerID  = uint64(rand.Int63())
		projects = project.MemService()
		fn       = ProjectDelete(projects)
	)

	created, err := projects.Put(ns, testProject(ownerID))
	if err != nil {
		t.Fatal(err)
	}

	err = fn(ns, ownerID+1, created.ID)
	if err != nil {
		t.Fatal(err)
	}

	ps, err := projects.Query(ns, project.QueryOptions{
		ID: &created.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(ps), 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestProjectList(t *testing.T) {
	var (
		ns       = testNamespace()
		owner    = testUser()
		projects = project.MemService()
		users    = user.MemService()
		counts   = CountCache(
			cache.MemCountService(),
			comment.MemService(),
			reaction.MemService(),
		)
		fn = ProjectList(projects, users, counts)
	)

	owner, err := users.Put(ns, owner)
	if err != nil {
		t.Fatal(err)
	}

	public, err := projects.Put(ns, testProject(owner.ID))
	if err != nil {
		t.Fatal(err)
	}

	private := testProject(owner.ID)
	private.Visibility = project.VisibilityPrivate

	_, err = projects.Put(ns, private)
	if err != nil {
		t.Fatal(err)
	}

	feed, err := fn(ns, project.QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(feed.Projects), 1; have != want {
		t.Fatalf("have %v, want %v", have, want)
	}

	if have, want := feed.Projects[0].ID, public.ID; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := len(feed.UserMap), 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := feed.Counts[public.ID], (ProjectCounts{}); !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestProjectListUser(t *testing.T) {
	var (
		ns       = testNamespace()
		ownerID  = uint64(rand.Int63())
		projects = project.MemService()
		users    = user.MemService()
		counts   = CountCache(
			cache.MemCountService(),
			comment.MemService(),
			reaction.MemService(),
		)
		fn = ProjectListUser(projects, users, counts)
	)

	_, err := projects.Put(ns, testProject(ownerID))
	if err != nil {
		t.Fatal(err)
	}

	private := testProject(ownerID)
	private.Visibility = project.VisibilityPrivate

	_, err = projects.Put(ns, private)
	if err != nil {
		t.Fatal(err)
	}

	cases := map[Origin]int{
		{UserID: ownerID}:     2,
		{UserID: ownerID + 1}: 1,
	}

	for origin, want := range cases {
		feed, err := fn(ns, origin, ownerID, project.QueryOptions{})
		if err != nil {
			t.Fatal(err)
		}

		if have := len(feed.Projects); have != want {
			t.Errorf("have %v, want %v", have, want)
		}
	}
}

func TestProjectRetrieveConstrainVisible(t *testing.T) {
	var (
		ns       = testNamespace()
		ownerID  = uint64(rand.Int63())
		projects = project.MemService()
		fn       = ProjectRetrieve(projects)
	)

	private := testProject(ownerID)
	private.Visibility = project.VisibilityPrivate

	created, err := projects.Put(ns, private)
	if err != nil {
		t.Fatal(err)
	}

	r, err := fn(ns, Origin{UserID: ownerID}, created.ID)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := r, created; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}

	_, err = fn(ns, Origin{UserID: ownerID + 1}, created.ID)
	if have, want := err, ErrNotFound; !IsNotFound(have) {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestProjectUpdate(t *testing.T) {
	var (
		ns       = testNamespace()
		origin   = Origin{UserID: uint64(rand.Int63())}
		projects = project.MemService()
		fn       = ProjectUpdate(projects)
	)

	created, err := projects.Put(ns, testProject(origin.UserID))
	if err != nil {
		t.Fatal(err)
	}

	new := testProject(0)
	new.Name = "kitchen-sink"
	new.Visibility = 0

	updated, err := fn(ns, origin, created.ID, new)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := updated.Name, new.Name; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := updated.OwnerID, created.OwnerID; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := updated.Visibility, created.Visibility; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	_, err = fn(ns, Origin{UserID: origin.UserID + 1}, created.ID, new)
	if have, want := err, ErrUnauthorized; !IsUnauthorized(have) {
		t.Errorf("have %v, want %v", have, want)
	}
}

func testProject(ownerID uint64) *project.Project {
	return &project.Project{
		Description: "A tool to share side-projects.",
		Name:        fmt.Sprintf("project%d", rand.Int63()),
		OwnerID:     ownerID,
		Tagline:     "Share what you build on the side.",
		Tags:        []string{"go", "web"},
		Visibility:  project.VisibilityPublic,
	}
}
