package limiter

import (
	"fmt"
	"hash/fnv"
	"net/http"
	"strings"
	"time"
)

// Headers inspected to partition unauthenticated callers.
const (
	headerAcceptLanguage = "Accept-Language"
	headerForwardedFor   = "X-Forwarded-For"
	headerRealIP         = "X-Real-Ip"
	headerUserAgent      = "User-Agent"
)

// Predefined configs per endpoint class.
var (
	ConfigPublicRead = Config{
		KeyPrefix:   "public-read",
		MaxRequests: 60,
		Window:      60000 * time.Millisecond,
	}
	ConfigUpload = Config{
		KeyPrefix:   "upload",
		MaxRequests: 10,
		Window:      60000 * time.Millisecond,
	}
	ConfigAIGenerate = Config{
		KeyPrefix:   "ai-generate",
		MaxRequests: 5,
		Window:      60000 * time.Millisecond,
	}
	ConfigSensitive = Config{
		KeyPrefix:   "sensitive",
		MaxRequests: 5,
		Window:      3600000 * time.Millisecond,
	}
)

// Config carries the limits to apply for one endpoint class. Configs with
// distinct KeyPrefix values keep independent quotas for the same raw key.
type Config struct {
	KeyPrefix   string
	MaxRequests int
	Window      time.Duration
}

// Result reports the admission decision plus quota telemetry for the caller.
// Reset is the duration until the oldest counted request leaves the window.
type Result struct {
	Allowed   bool
	Remaining int
	Reset     time.Duration
}

// Limiter decides if a request identified by key is still within the limits
// of the given Config.
type Limiter interface {
	Check(key string, config Config) (Result, error)
}

// ClientIdentifier extracts a stable identity for unauthenticated callers.
// Proxy headers win over the synthesized fallback fingerprint.
func ClientIdentifier(r *http.Request) string {
	if fwd := r.Header.Get(headerForwardedFor); fwd != "" {
		return strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
	}

	if ip := r.Header.Get(headerRealIP); ip != "" {
		return ip
	}

	h := fnv.New32a()
	h.Write([]byte(r.Header.Get(headerUserAgent)))
	h.Write([]byte(r.Header.Get(headerAcceptLanguage)))

	return fmt.Sprintf("anon:%d", h.Sum32())
}

// Key composes the partition key for rate limiting. Authenticated callers are
// partitioned by user and origin, so the same account coming from two
// addresses draws from two separate quota pools.
func Key(userID, ip string) string {
	if userID != "" {
		return fmt.Sprintf("user:%s:%s", userID, ip)
	}

	return fmt.Sprintf("ip:%s", ip)
}

func compositeKey(key string, config Config) string {
	if config.KeyPrefix == "" {
		return key
	}

	return fmt.Sprintf("%s:%s", config.KeyPrefix, key)
}
