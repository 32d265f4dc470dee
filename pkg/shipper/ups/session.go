package ups

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// expiryMargin keeps a token from being used in a request that could
// outlive it.
const expiryMargin = 500 * time.Millisecond

// refreshTimeout bounds a shared token fetch, which no single caller can
// cancel.
const refreshTimeout = 30 * time.Second

// Token is a UPS OAuth bearer token. ExpiresAt is in epoch milliseconds.
type Token struct {
	Type        string
	AccessToken string
	ExpiresAt   int64
}

// ValidAt reports whether the token can still be used at now.
func (t *Token) ValidAt(now time.Time) bool {
	if t == nil || t.AccessToken == "" {
		return false
	}
	return now.UnixMilli()+expiryMargin.Milliseconds() < t.ExpiresAt
}

// Expiry returns ExpiresAt as a time.
func (t *Token) Expiry() time.Time {
	return time.UnixMilli(t.ExpiresAt)
}

// tokenResponse is the body returned by the OAuth token endpoint.
// issued_at is in milliseconds, expires_in in seconds; both arrive as strings.
type tokenResponse struct {
	TokenType   string `json:"token_type"`
	IssuedAt    Number `json:"issued_at"`
	ClientID    string `json:"client_id"`
	AccessToken string `json:"access_token"`
	ExpiresIn   Number `json:"expires_in"`
	Status      string `json:"status"`
}

func (r *tokenResponse) token() (*Token, error) {
	if r.AccessToken == "" {
		return nil, fmt.Errorf("token response has no access_token")
	}
	issuedAt, err := r.IssuedAt.Int64()
	if err != nil {
		return nil, fmt.Errorf("parsing issued_at %q: %w", r.IssuedAt, err)
	}
	expiresIn, err := r.ExpiresIn.Int64()
	if err != nil {
		return nil, fmt.Errorf("parsing expires_in %q: %w", r.ExpiresIn, err)
	}
	return &Token{
		Type:        r.TokenType,
		AccessToken: r.AccessToken,
		ExpiresAt:   issuedAt + expiresIn*1000,
	}, nil
}

// session owns the current token. The token is only ever replaced as a
// whole, so readers always see a consistent snapshot. A failed refresh
// leaves the previous token in place.
type session struct {
	token atomic.Pointer[Token]
	group singleflight.Group
	fetch func(ctx context.Context) (*Token, error)
	now   func() time.Time
}

func newSession(fetch func(ctx context.Context) (*Token, error), now func() time.Time) *session {
	if now == nil {
		now = time.Now
	}
	return &session{fetch: fetch, now: now}
}

// current returns the stored token, which may be nil or expired.
func (s *session) current() *Token {
	return s.token.Load()
}

// refresh fetches a new token. Concurrent callers share one fetch, which
// runs detached from any caller's cancellation. A cancelled caller stops
// waiting without failing the others.
func (s *session) refresh(ctx context.Context) (*Token, error) {
	ch := s.group.DoChan("token", func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()

		tok, err := s.fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		s.token.Store(tok)
		return tok, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Token), nil
	}
}

// refreshIfExpired returns the stored token while it is valid and fetches
// a new one otherwise. Safe to call redundantly.
func (s *session) refreshIfExpired(ctx context.Context) (*Token, error) {
	if tok := s.token.Load(); tok.ValidAt(s.now()) {
		return tok, nil
	}
	return s.refresh(ctx)
}
