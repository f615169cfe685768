package core

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/jhlee0409/sidedish-sub001/platform/cache"
	"github.com/jhlee0409/sidedish-sub001/service/comment"
	"github.com/jhlee0409/sidedish-sub001/service/project"
	"github.com/jhlee0409/sidedish-sub001/service/reaction"
	"github.com/jhlee0409/sidedish-sub001/service/user"
)

func TestCommentCreate(t *testing.T) {
	var (
		ns         = testNamespace()
		origin     = Origin{UserID: uint64(rand.Int63())}
		comments   = comment.MemService()
		countCache = cache.MemCountService()
		projects   = project.MemService()
		fn         = CommentCreate(comments, projects, countCache)
	)

	p, err := projects.Put(ns, testProject(origin.UserID))
	if err != nil {
		t.Fatal(err)
	}

	created, err := fn(ns, origin, p.ID, testComment(origin.UserID, p.ID))
	if err != nil {
		t.Fatal(err)
	}

	cs, err := comments.Query(ns, comment.QueryOptions{
		ID: &created.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(cs), 1; have != want {
		t.Fatalf("have %v, want %v", have, want)
	}

	if have, want := cs[0], created; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}

	_, err = fn(ns, origin, p.ID+1, testComment(origin.UserID, p.ID))
	if have, want := err, ErrNotFound; !IsNotFound(have) {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestCommentCreateConstrainVisible(t *testing.T) {
	var (
		ns         = testNamespace()
		ownerID    = uint64(rand.Int63())
		comments   = comment.MemService()
		countCache = cache.MemCountService()
		projects   = project.MemService()
		fn         = CommentCreate(comments, projects, countCache)
	)

	private := testProject(ownerID)
	private.Visibility = project.VisibilityPrivate

	p, err := projects.Put(ns, private)
	if err != nil {
		t.Fatal(err)
	}

	origin := Origin{UserID: ownerID + 1}

	_, err = fn(ns, origin, p.ID, testComment(origin.UserID, p.ID))
	if have, want := err, ErrNotFound; !IsNotFound(have) {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestCommentDelete(t *testing.T) {
	var (
		ns         = testNamespace()
		origin     = Origin{UserID: uint64(rand.Int63())}
		comments   = comment.MemService()
		countCache = cache.MemCountService()
		projects   = project.MemService()
	)

	p, err := projects.Put(ns, testProject(origin.UserID))
	if err != nil {
		t.Fatal(err)
	}

	created, err := CommentCreate(comments, projects, countCache)(
		ns,
		origin,
		p.ID,
		testComment(origin.UserID, p.ID),
	)
	if err != nil {
		t.Fatal(err)
	}

	fn := CommentDelete(comments, countCache)

	err = fn(ns, origin.UserID, p.ID, created.ID)
	if err != nil {
		t.Fatal(err)
	}

	cs, err := comments.Query(ns, comment.QueryOptions{
		Deleted: true,
		ID:      &created.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(cs), 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	// Delete should be idempotent.
	err = fn(ns, origin.UserID, p.ID, created.ID)
	if err != nil {
		t.Fatal(err)
	}
}

func TestCommentList(t *testing.T) {
	var (
		ns         = testNamespace()
		origin     = Origin{UserID: uint64(rand.Int63())}
		comments   = comment.MemService()
		countCache = cache.MemCountService()
		projects   = project.MemService()
		users      = user.MemService()
		fn         = CommentList(comments, projects, users)
	)

	owner, err := users.Put(ns, testUser())
	if err != nil {
		t.Fatal(err)
	}

	origin.UserID = owner.ID

	p, err := projects.Put(ns, testProject(owner.ID))
	if err != nil {
		t.Fatal(err)
	}

	feed, err := fn(ns, origin, p.ID, comment.QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(feed.Comments), 0; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	create := CommentCreate(comments, projects, countCache)

	for i := 0; i < 5; i++ {
		_, err := create(ns, origin, p.ID, testComment(owner.ID, p.ID))
		if err != nil {
			t.Fatal(err)
		}
	}

	feed, err = fn(ns, origin, p.ID, comment.QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(feed.Comments), 5; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := len(feed.UserMap), 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestCommentUpdate(t *testing.T) {
	var (
		ns         = testNamespace()
		origin     = Origin{UserID: uint64(rand.Int63())}
		comments   = comment.MemService()
		countCache = cache.MemCountService()
		projects   = project.MemService()
		fn         = CommentUpdate(comments)
	)

	p, err := projects.Put(ns, testProject(origin.UserID))
	if err != nil {
		t.Fatal(err)
	}

	_, err = fn(ns, origin, p.ID, 0, testComment(origin.UserID, p.ID))
	if have, want := err, ErrNotFound; !IsNotFound(have) {
		t.Fatalf("have %v, want %v", have, want)
	}

	created, err := CommentCreate(comments, projects, countCache)(
		ns,
		origin,
		p.ID,
		testComment(origin.UserID, p.ID),
	)
	if err != nil {
		t.Fatal(err)
	}

	new := testComment(origin.UserID, p.ID)
	new.Content = "Changed my mind, ship it."

	updated, err := fn(ns, origin, p.ID, created.ID, new)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := updated.Content, new.Content; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	_, err = fn(ns, Origin{UserID: origin.UserID + 1}, p.ID, created.ID, new)
	if have, want := err, ErrUnauthorized; !IsUnauthorized(have) {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestCommentCounts(t *testing.T) {
	var (
		ns         = testNamespace()
		origin     = Origin{UserID: uint64(rand.Int63())}
		comments   = comment.MemService()
		countCache = cache.MemCountService()
		projects   = project.MemService()
		reactions  = reaction.MemService()
		counts     = CountCache(countCache, comments, reactions)
	)

	p, err := projects.Put(ns, testProject(origin.UserID))
	if err != nil {
		t.Fatal(err)
	}

	create := CommentCreate(comments, projects, countCache)

	for i := 0; i < 3; i++ {
		_, err := create(ns, origin, p.ID, testComment(origin.UserID, p.ID))
		if err != nil {
			t.Fatal(err)
		}
	}

	cm, err := counts(ns, p.ID)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := cm[p.ID].Comments, uint64(3); have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	// Second read should be served from the cache.
	cm, err = counts(ns, p.ID)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := cm[p.ID].Comments, uint64(3); have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func testComment(ownerID, projectID uint64) *comment.Comment {
	return &comment.Comment{
		Content:   "Do like.",
		OwnerID:   ownerID,
		ProjectID: projectID,
	}
}
