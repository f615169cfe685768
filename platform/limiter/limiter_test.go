package limiter

import (
	"net/http"
	"regexp"
	"testing"
	"time"
)

var anonShape = regexp.MustCompile(`^anon:\d+$`)

func TestClientIdentifierForwardedFor(t *testing.T) {
	r := testRequest(t)
	r.Header.Set("X-Forwarded-For", "192.168.1.1, 10.0.0.1")
	r.Header.Set("X-Real-Ip", "172.16.0.1")

	if have, want := ClientIdentifier(r), "192.168.1.1"; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestClientIdentifierRealIP(t *testing.T) {
	r := testRequest(t)
	r.Header.Set("X-Real-Ip", "172.16.0.1")

	if have, want := ClientIdentifier(r), "172.16.0.1"; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestClientIdentifierFallback(t *testing.T) {
	r := testRequest(t)
	r.Header.Set("User-Agent", "curl/8.4.0")
	r.Header.Set("Accept-Language", "en-US")

	have := ClientIdentifier(r)

	if !anonShape.MatchString(have) {
		t.Errorf("have %v, want anon:<digest>", have)
	}

	if have != ClientIdentifier(r) {
		t.Errorf("identifier not stable for identical headers")
	}
}

func TestKey(t *testing.T) {
	if have, want := Key("user123", "192.168.1.1"), "user:user123:192.168.1.1"; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	if have, want := Key("", "192.168.1.1"), "ip:192.168.1.1"; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestConfigPresets(t *testing.T) {
	cases := map[Config]struct {
		max    int
		window time.Duration
	}{
		ConfigPublicRead: {60, 60 * time.Second},
		ConfigUpload:     {10, 60 * time.Second},
		ConfigAIGenerate: {5, 60 * time.Second},
		ConfigSensitive:  {5, time.Hour},
	}

	for config, want := range cases {
		if have := config.MaxRequests; have != want.max {
			t.Errorf("%s: have %v, want %v", config.KeyPrefix, have, want.max)
		}

		if have := config.Window; have != want.window {
			t.Errorf("%s: have %v, want %v", config.KeyPrefix, have, want.window)
		}
	}
}

func testRequest(t *testing.T) *http.Request {
	r, err := http.NewRequest("GET", "/projects", nil)
	if err != nil {
		t.Fatal(err)
	}

	return r
}
