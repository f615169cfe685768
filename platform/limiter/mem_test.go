package limiter

import (
	"fmt"
	"testing"
	"time"
)

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time {
	return c.now
}

func (c *clock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func testClock() *clock {
	return &clock{
		now: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestMemCheckAdmitsUpToLimit(t *testing.T) {
	var (
		config = Config{MaxRequests: 5, Window: time.Minute}
		l      = Mem()
	)

	for i := 0; i < config.MaxRequests; i++ {
		res, err := l.Check("token", config)
		if err != nil {
			t.Fatal(err)
		}

		if have, want := res.Allowed, true; have != want {
			t.Errorf("call %d: have %v, want %v", i+1, have, want)
		}

		if have, want := res.Remaining, config.MaxRequests-i-1; have != want {
			t.Errorf("call %d: have %v, want %v", i+1, have, want)
		}
	}

	res, err := l.Check("token", config)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := res.Allowed, false; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := res.Remaining, 0; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestMemCheckSlidingExpiry(t *testing.T) {
	var (
		c      = testClock()
		config = Config{MaxRequests: 3, Window: time.Minute}
		l      = newMem(c.Now)
	)

	for i, want := range []int{2, 1, 0} {
		if i == 1 {
			c.advance(20 * time.Second)
		}

		res, err := l.Check("k", config)
		if err != nil {
			t.Fatal(err)
		}

		if !res.Allowed {
			t.Fatalf("call %d: expected admission", i+1)
		}

		if have := res.Remaining; have != want {
			t.Errorf("call %d: have %v, want %v", i+1, have, want)
		}
	}

	c.advance(20 * time.Second)

	res, err := l.Check("k", config)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := res.Allowed, false; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := res.Reset, 20*time.Second; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	// Past expiry of the first admission only, exactly one slot frees up.
	c.advance(21 * time.Second)

	res, err = l.Check("k", config)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := res.Allowed, true; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestMemCheckZeroLimit(t *testing.T) {
	var (
		config = Config{MaxRequests: 0, Window: time.Minute}
		l      = Mem()
	)

	res, err := l.Check("token", config)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := res.Allowed, true; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := res.Remaining, -1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	res, err = l.Check("token", config)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := res.Allowed, false; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestMemCheckPrefixIsolation(t *testing.T) {
	var (
		first  = Config{KeyPrefix: "upload", MaxRequests: 1, Window: time.Minute}
		second = Config{KeyPrefix: "ai-generate", MaxRequests: 1, Window: time.Minute}
		l      = Mem()
	)

	for _, config := range []Config{first, second} {
		res, err := l.Check("token", config)
		if err != nil {
			t.Fatal(err)
		}

		if have, want := res.Allowed, true; have != want {
			t.Errorf("prefix %s: have %v, want %v", config.KeyPrefix, have, want)
		}
	}
}

func TestMemCheckKeyIsolation(t *testing.T) {
	var (
		config = Config{MaxRequests: 1, Window: time.Minute}
		l      = Mem()
	)

	for _, key := range []string{"key-a", "key-b"} {
		res, err := l.Check(key, config)
		if err != nil {
			t.Fatal(err)
		}

		if have, want := res.Allowed, true; have != want {
			t.Errorf("key %s: have %v, want %v", key, have, want)
		}
	}
}

func TestMemCheckWindowClamp(t *testing.T) {
	var (
		config = Config{MaxRequests: 1, Window: -time.Second}
		l      = Mem()
	)

	res, err := l.Check("token", config)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := res.Allowed, true; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestMemSweep(t *testing.T) {
	var (
		c      = testClock()
		config = Config{MaxRequests: 1, Window: time.Minute}
		l      = newMem(c.Now)
	)

	for i := 0; i < sweepEvery-1; i++ {
		_, err := l.Check(fmt.Sprintf("key-%d", i), config)
		if err != nil {
			t.Fatal(err)
		}
	}

	c.advance(2 * time.Minute)

	_, err := l.Check("fresh", config)
	if err != nil {
		t.Fatal(err)
	}

	if have, want := len(l.windows), 1; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}
