package core

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/jhlee0409/sidedish-sub001/platform/generate"
	"github.com/jhlee0409/sidedish-sub001/service/session"
	"github.com/jhlee0409/sidedish-sub001/service/user"
)

func TestUserCreate(t *testing.T) {
	var (
		ns       = testNamespace()
		sessions = session.MemService()
		users    = user.MemService()
		fn       = UserCreate(sessions, users)
	)

	created, err := fn(ns, testUser())
	if err != nil {
		t.Fatal(err)
	}

	if have, want := created.Enabled, true; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if created.SessionToken == "" {
		t.Errorf("expected session token to be set")
	}

	ss, err := sessions.Query(ns, session.QueryOptions{
		UserIDs: []uint64{
			created.ID,
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(ss), 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestUserCreateInvalid(t *testing.T) {
	var (
		ns       = testNamespace()
		sessions = session.MemService()
		users    = user.MemService()
		fn       = UserCreate(sessions, users)
	)

	_, err := fn(ns, &user.User{})
	if have, want := err, ErrInvalidEntity; !IsInvalidEntity(have) {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestUserLogin(t *testing.T) {
	var (
		ns       = testNamespace()
		password = generate.RandomString(8)
		sessions = session.MemService()
		users    = user.MemService()
	)

	u := testUser()
	u.Password = password

	created, err := UserCreate(sessions, users)(ns, u)
	if err != nil {
		t.Fatal(err)
	}

	fn := UserLogin(sessions, users)

	logged, err := fn(ns, created.Email, "", password)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := logged.ID, created.ID; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if logged.SessionToken == "" {
		t.Errorf("expected session token to be set")
	}

	_, err = fn(ns, created.Email, "", generate.RandomString(8))
	if have, want := err, ErrUnauthorized; !IsUnauthorized(have) {
		t.Errorf("have %v, want %v", have, want)
	}

	_, err = fn(ns, "missing@sidedish.test", "unknown", password)
	if have, want := err, ErrNotFound; !IsNotFound(have) {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestUserLogout(t *testing.T) {
	var (
		ns       = testNamespace()
		sessions = session.MemService()
		users    = user.MemService()
	)

	created, err := UserCreate(sessions, users)(ns, testUser())
	if err != nil {
		t.Fatal(err)
	}

	fn := UserLogout(sessions)

	err = fn(ns, created.ID, created.SessionToken)
	if err != nil {
		t.Fatal(err)
	}

	ss, err := sessions.Query(ns, session.QueryOptions{
		Enabled: &defaultEnabled,
		UserIDs: []uint64{
			created.ID,
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(ss), 0; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	// Logout should be idempotent.
	err = fn(ns, created.ID, created.SessionToken)
	if err != nil {
		t.Fatal(err)
	}
}

func TestUserUpdate(t *testing.T) {
	var (
		ns       = testNamespace()
		sessions = session.MemService()
		users    = user.MemService()
	)

	created, err := UserCreate(sessions, users)(ns, testUser())
	if err != nil {
		t.Fatal(err)
	}

	var (
		origin = Origin{UserID: created.ID}
		fn     = UserUpdate(sessions, users)
	)

	new := testUser()
	new.About = "Shipping side-projects."
	new.Password = ""

	updated, err := fn(ns, origin, created, new)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := updated.ID, created.ID; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := updated.About, new.About; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := updated.Password, created.Password; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestPassword(t *testing.T) {
	password := "foobar"

	epw, err := passwordSecure(password)
	if err != nil {
		t.Fatal(err)
	}

	valid, err := passwordCompare(password, epw)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := valid, true; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func testNamespace() string {
	return fmt.Sprintf("core_%d", rand.Int63())
}

func testUser() *user.User {
	return &user.User{
		Email: fmt.Sprintf(
			"user%d@sidedish.test", rand.Int63(),
		),
		Enabled:  true,
		Password: generate.RandomString(8),
		Username: fmt.Sprintf("user%d", rand.Int63()),
	}
}
