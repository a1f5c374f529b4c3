package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/MrJamesThe3rd/biztrack/internal/docstore/memory"
)

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestSignInLimiter_EvictsIdleEmails(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
	s := NewService(memory.New(), WithBcryptCost(bcrypt.MinCost), WithClock(c.now))

	for i := range 100 {
		_, err := s.SignIn(ctx, fmt.Sprintf("user%d@example.com", i), "password")
		require.ErrorIs(t, err, ErrUserNotFound)
	}

	assert.Len(t, s.attempts, 100)

	c.advance(s.refillTime() + time.Second)

	_, err := s.SignIn(ctx, "late@example.com", "password")
	require.ErrorIs(t, err, ErrUserNotFound)

	assert.Len(t, s.attempts, 1)
}

func TestSignInLimiter_KeepsExhaustedEmails(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	c := &clock{t: start}
	s := NewService(memory.New(), WithBcryptCost(bcrypt.MinCost), WithClock(c.now), WithSignInLimit(1.0/3600, 2))

	_, err := s.SignIn(ctx, "first@example.com", "password")
	require.ErrorIs(t, err, ErrUserNotFound)

	c.t = start.Add(110 * time.Minute)

	for range 2 {
		_, err := s.SignIn(ctx, "ada@example.com", "password")
		require.ErrorIs(t, err, ErrUserNotFound)
	}

	_, err = s.SignIn(ctx, "ada@example.com", "password")
	require.ErrorIs(t, err, ErrTooManyRequests)

	// A prune runs here, but ada was seen ten minutes ago.
	c.t = start.Add(s.refillTime() + time.Second)

	_, err = s.SignIn(ctx, "other@example.com", "password")
	require.ErrorIs(t, err, ErrUserNotFound)
	assert.NotContains(t, s.attempts, "first@example.com")

	_, err = s.SignIn(ctx, "ada@example.com", "password")
	assert.ErrorIs(t, err, ErrTooManyRequests)
}
