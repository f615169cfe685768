package core

import (
	"math/rand"
	"testing"

	"github.com/jhlee0409/sidedish-sub001/service/project"
	"github.com/jhlee0409/sidedish-sub001/service/reaction"
	"github.com/jhlee0409/sidedish-sub001/service/user"
)

func TestReactionCreate(t *testing.T) {
	var (
		ns        = testNamespace()
		origin    = Origin{UserID: uint64(rand.Int63())}
		projects  = project.MemService()
		reactions = reaction.MemService()
		fn        = ReactionCreate(projects, reactions)
	)

	p, err := projects.Put(ns, testProject(origin.UserID))
	if err != nil {
		t.Fatal(err)
	}

	created, err := fn(ns, origin, p.ID, reaction.TypeLike)
	if err != nil {
		t.Fatal(err)
	}

	// A second create of the same type must not produce a new Reaction.
	doubled, err := fn(ns, origin, p.ID, reaction.TypeLike)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := doubled.ID, created.ID; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	rs, err := reactions.Query(ns, reaction.QueryOptions{
		ProjectIDs: []uint64{
			p.ID,
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(rs), 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	_, err = fn(ns, origin, p.ID+1, reaction.TypeLike)
	if have, want := err, ErrNotFound; !IsNotFound(have) {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestReactionCreateRevive(t *testing.T) {
	var (
		ns        = testNamespace()
		origin    = Origin{UserID: uint64(rand.Int63())}
		projects  = project.MemService()
		reactions = reaction.MemService()
		create    = ReactionCreate(projects, reactions)
		delete    = ReactionDelete(projects, reactions)
	)

	p, err := projects.Put(ns, testProject(origin.UserID))
	if err != nil {
		t.Fatal(err)
	}

	created, err := create(ns, origin, p.ID, reaction.TypeWow)
	if err != nil {
		t.Fatal(err)
	}

	err = delete(ns, origin, p.ID, reaction.TypeWow)
	if err != nil {
		t.Fatal(err)
	}

	revived, err := create(ns, origin, p.ID, reaction.TypeWow)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := revived.ID, created.ID; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := revived.Deleted, false; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestReactionDelete(t *testing.T) {
	var (
		ns        = testNamespace()
		origin    = Origin{UserID: uint64(rand.Int63())}
		projects  = project.MemService()
		reactions = reaction.MemService()
		fn        = ReactionDelete(projects, reactions)
	)

	p, err := projects.Put(ns, testProject(origin.UserID))
	if err != nil {
		t.Fatal(err)
	}

	_, err = ReactionCreate(projects, reactions)(ns, origin, p.ID, reaction.TypeIdea)
	if err != nil {
		t.Fatal(err)
	}

	err = fn(ns, origin, p.ID, reaction.TypeIdea)
	if err != nil {
		t.Fatal(err)
	}

	count, err := reactions.Count(ns, reaction.QueryOptions{
		Deleted: &defaultDeleted,
		ProjectIDs: []uint64{
			p.ID,
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := count, uint(0); have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	// Delete should be idempotent.
	err = fn(ns, origin, p.ID, reaction.TypeIdea)
	if err != nil {
		t.Fatal(err)
	}
}

func TestReactionCountsProject(t *testing.T) {
	var (
		ns        = testNamespace()
		ownerID   = uint64(rand.Int63())
		projects  = project.MemService()
		reactions = reaction.MemService()
		create    = ReactionCreate(projects, reactions)
		fn        = ReactionCountsProject(projects, reactions)
	)

	p, err := projects.Put(ns, testProject(ownerID))
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		origin := Origin{UserID: ownerID + uint64(i)}

		_, err := create(ns, origin, p.ID, reaction.TypeLike)
		if err != nil {
			t.Fatal(err)
		}
	}

	_, err = create(ns, Origin{UserID: ownerID}, p.ID, reaction.TypeLove)
	if err != nil {
		t.Fatal(err)
	}

	counts, err := fn(ns, Origin{UserID: ownerID}, p.ID)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := counts.Like, uint64(3); have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := counts.Love, uint64(1); have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestReactionListProject(t *testing.T) {
	var (
		ns        = testNamespace()
		projects  = project.MemService()
		reactions = reaction.MemService()
		users     = user.MemService()
		create    = ReactionCreate(projects, reactions)
		fn        = ReactionListProject(projects, reactions, users)
	)

	owner, err := users.Put(ns, testUser())
	if err != nil {
		t.Fatal(err)
	}

	p, err := projects.Put(ns, testProject(owner.ID))
	if err != nil {
		t.Fatal(err)
	}

	origin := Origin{UserID: owner.ID}

	for _, rt := range []reaction.Type{
		reaction.TypeClap,
		reaction.TypeLike,
		reaction.TypeLove,
	} {
		_, err := create(ns, origin, p.ID, rt)
		if err != nil {
			t.Fatal(err)
		}
	}

	feed, err := fn(ns, origin, p.ID, reaction.QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(feed.Reactions), 3; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := len(feed.UserMap), 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}
