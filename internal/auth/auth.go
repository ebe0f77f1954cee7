// Package auth resolves an incoming request to the opaque id of the signed-in
// user. Session issuance belongs to the identity provider; this package only
// reads what it left behind.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/redis/go-redis/v9"

	"jobtracker/tracker-service/internal/tracker"
)

const (
	// DefaultSessionCookie is the cookie set by the web front end's auth
	// library.
	DefaultSessionCookie = "next-auth.session-token"
	// UserIDHeader is forwarded by a trusted gateway.
	UserIDHeader = "x-user-id"
	// SessionKeyPrefix prefixes session tokens in Redis.
	SessionKeyPrefix = "session:"
)

// Resolver returns the caller's user id, or "" when the request carries no
// usable credentials.
type Resolver interface {
	Resolve(r *http.Request) (string, error)
}

// HeaderResolver trusts the x-user-id header. Only enable it behind a gateway
// that strips the header from client traffic.
type HeaderResolver struct{}

func (HeaderResolver) Resolve(r *http.Request) (string, error) {
	return strings.TrimSpace(r.Header.Get(UserIDHeader)), nil
}

// SessionResolver maps a session cookie to a user id stored in Redis under
// "session:<token>".
type SessionResolver struct {
	rdb    redis.Cmdable
	cookie string
}

// NewSessionResolver returns a resolver reading cookie. An empty cookie name
// selects DefaultSessionCookie.
func NewSessionResolver(rdb redis.Cmdable, cookie string) *SessionResolver {
	if cookie == "" {
		cookie = DefaultSessionCookie
	}
	return &SessionResolver{rdb: rdb, cookie: cookie}
}

func (s *SessionResolver) Resolve(r *http.Request) (string, error) {
	c, err := r.Cookie(s.cookie)
	if errors.Is(err, http.ErrNoCookie) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return s.Lookup(r.Context(), c.Value)
}

// Lookup resolves a raw session token. Unknown or expired tokens yield "".
func (s *SessionResolver) Lookup(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", nil
	}
	uid, err := s.rdb.Get(ctx, SessionKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("session lookup: %w", err)
	}
	return strings.TrimSpace(uid), nil
}

// Chain tries each resolver in turn and returns the first non-empty id.
type Chain []Resolver

func (c Chain) Resolve(r *http.Request) (string, error) {
	for _, res := range c {
		uid, err := res.Resolve(r)
		if err != nil {
			return "", err
		}
		if uid != "" {
			return uid, nil
		}
	}
	return "", nil
}

// UserID resolves r with res and returns tracker.ErrUnauthenticated when no
// id was found.
func UserID(res Resolver, r *http.Request) (string, error) {
	uid, err := res.Resolve(r)
	if err != nil {
		return "", err
	}
	if uid == "" {
		return "", tracker.ErrUnauthenticated
	}
	return uid, nil
}
