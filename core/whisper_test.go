package core

import (
	"math/rand"
	"testing"

	"github.com/jhlee0409/sidedish-sub001/service/project"
	"github.com/jhlee0409/sidedish-sub001/service/user"
	"github.com/jhlee0409/sidedish-sub001/service/whisper"
)

func TestWhisperCreate(t *testing.T) {
	var (
		ns       = testNamespace()
		ownerID  = uint64(rand.Int63())
		projects = project.MemService()
		whispers = whisper.MemService()
		fn       = WhisperCreate(projects, whispers)
	)

	p, err := projects.Put(ns, testProject(ownerID))
	if err != nil {
		t.Fatal(err)
	}

	sender := Origin{UserID: ownerID + 1}

	created, err := fn(ns, sender, p.ID, testWhisper(sender.UserID, p.ID))
	if err != nil {
		t.Fatal(err)
	}

	if have, want := created.SenderID, sender.UserID; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := created.Read, false; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	// Owners can't whisper to their own project.
	_, err = fn(ns, Origin{UserID: ownerID}, p.ID, testWhisper(ownerID, p.ID))
	if have, want := err, ErrInvalidEntity; !IsInvalidEntity(have) {
		t.Errorf("have %v, want %v", have, want)
	}

	_, err = fn(ns, sender, p.ID+1, testWhisper(sender.UserID, p.ID))
	if have, want := err, ErrNotFound; !IsNotFound(have) {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestWhisperDelete(t *testing.T) {
	var (
		ns       = testNamespace()
		ownerID  = uint64(rand.Int63())
		projects = project.MemService()
		whispers = whisper.MemService()
		fn       = WhisperDelete(projects, whispers)
	)

	p, err := projects.Put(ns, testProject(ownerID))
	if err != nil {
		t.Fatal(err)
	}

	sender := Origin{UserID: ownerID + 1}

	created, err := WhisperCreate(projects, whispers)(
		ns,
		sender,
		p.ID,
		testWhisper(sender.UserID, p.ID),
	)
	if err != nil {
		t.Fatal(err)
	}

	err = fn(ns, sender, p.ID, created.ID)
	if have, want := err, ErrUnauthorized; !IsUnauthorized(have) {
		t.Fatalf("have %v, want %v", have, want)
	}

	err = fn(ns, Origin{UserID: ownerID}, p.ID, created.ID)
	if err != nil {
		t.Fatal(err)
	}

	ws, err := whispers.Query(ns, whisper.QueryOptions{
		Deleted: true,
		ID:      &created.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(ws), 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	// Delete should be idempotent.
	err = fn(ns, Origin{UserID: ownerID}, p.ID, created.ID)
	if err != nil {
		t.Fatal(err)
	}
}

func TestWhisperList(t *testing.T) {
	var (
		ns       = testNamespace()
		projects = project.MemService()
		users    = user.MemService()
		whispers = whisper.MemService()
		fn       = WhisperList(projects, users, whispers)
	)

	owner, err := users.Put(ns, testUser())
	if err != nil {
		t.Fatal(err)
	}

	sender, err := users.Put(ns, testUser())
	if err != nil {
		t.Fatal(err)
	}

	p, err := projects.Put(ns, testProject(owner.ID))
	if err != nil {
		t.Fatal(err)
	}

	create := WhisperCreate(projects, whispers)

	for i := 0; i < 3; i++ {
		_, err := create(
			ns,
			Origin{UserID: sender.ID},
			p.ID,
			testWhisper(sender.ID, p.ID),
		)
		if err != nil {
			t.Fatal(err)
		}
	}

	feed, err := fn(ns, Origin{UserID: owner.ID}, p.ID, whisper.QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(feed.Whispers), 3; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := len(feed.UserMap), 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	_, err = fn(ns, Origin{UserID: sender.ID}, p.ID, whisper.QueryOptions{})
	if have, want := err, ErrUnauthorized; !IsUnauthorized(have) {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestWhisperRead(t *testing.T) {
	var (
		ns       = testNamespace()
		ownerID  = uint64(rand.Int63())
		projects = project.MemService()
		whispers = whisper.MemService()
		fn       = WhisperRead(projects, whispers)
	)

	p, err := projects.Put(ns, testProject(ownerID))
	if err != nil {
		t.Fatal(err)
	}

	sender := Origin{UserID: ownerID + 1}

	created, err := WhisperCreate(projects, whispers)(
		ns,
		sender,
		p.ID,
		testWhisper(sender.UserID, p.ID),
	)
	if err != nil {
		t.Fatal(err)
	}

	read, err := fn(ns, Origin{UserID: ownerID}, p.ID, created.ID)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := read.Read, true; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	// Marking twice keeps the whisper read.
	read, err = fn(ns, Origin{UserID: ownerID}, p.ID, created.ID)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := read.Read, true; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	_, err = fn(ns, Origin{UserID: ownerID}, p.ID, created.ID+1)
	if have, want := err, ErrNotFound; !IsNotFound(have) {
		t.Errorf("have %v, want %v", have, want)
	}
}

func testWhisper(senderID, projectID uint64) *whisper.Whisper {
	return &whisper.Whisper{
		Content:   "Loved the idea, the onboarding could be simpler though.",
		ProjectID: projectID,
		SenderID:  senderID,
	}
}
