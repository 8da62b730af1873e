package circuitbreaker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oe/sunrain-sub002/infrastructure/circuitbreaker"
)

var errUpstream = errors.New("upstream 503")

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func newBreaker(clock *fakeClock, transitions *[]string) *circuitbreaker.Breaker {
	return circuitbreaker.New(circuitbreaker.Config{
		Name:             "tmdb",
		FailureThreshold: 2,
		OpenTimeout:      time.Minute,
		Now:              clock.Now,
		OnStateChange: func(_ string, from, to circuitbreaker.State) {
			*transitions = append(*transitions, from.String()+"->"+to.String())
		},
	})
}

func fail(context.Context) error    { return errUpstream }
func succeed(context.Context) error { return nil }

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	var transitions []string
	b := newBreaker(clock, &transitions)
	ctx := context.Background()

	assert.ErrorIs(t, b.Execute(ctx, fail), errUpstream)
	assert.Equal(t, circuitbreaker.StateClosed, b.State())
	assert.ErrorIs(t, b.Execute(ctx, fail), errUpstream)
	assert.Equal(t, circuitbreaker.StateOpen, b.State())

	called := false
	err := b.Execute(ctx, func(context.Context) error { called = true; return nil })
	require.ErrorIs(t, err, circuitbreaker.ErrOpen)
	assert.False(t, called)
	assert.Equal(t, []string{"closed->open"}, transitions)
}

func TestBreaker_HalfOpenRecovers(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	var transitions []string
	b := newBreaker(clock, &transitions)
	ctx := context.Background()

	_ = b.Execute(ctx, fail)
	_ = b.Execute(ctx, fail)
	clock.now = clock.now.Add(2 * time.Minute)

	require.NoError(t, b.Execute(ctx, succeed))
	assert.Equal(t, circuitbreaker.StateClosed, b.State())
	assert.Equal(t, []string{"closed->open", "open->half-open", "half-open->closed"}, transitions)
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	var transitions []string
	b := newBreaker(clock, &transitions)
	ctx := context.Background()

	_ = b.Execute(ctx, fail)
	_ = b.Execute(ctx, fail)
	clock.now = clock.now.Add(2 * time.Minute)

	assert.ErrorIs(t, b.Execute(ctx, fail), errUpstream)
	assert.Equal(t, circuitbreaker.StateOpen, b.State())
}

func TestBreaker_CancellationNotCounted(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	var transitions []string
	b := newBreaker(clock, &transitions)

	for range 5 {
		_ = b.Execute(context.Background(), func(context.Context) error { return context.Canceled })
	}
	assert.Equal(t, circuitbreaker.StateClosed, b.State())
}

func TestBreaker_IsFailureFiltersErrors(t *testing.T) {
	errNotFound := errors.New("upstream 404")
	b := circuitbreaker.New(circuitbreaker.Config{
		Name:             "tmdb",
		FailureThreshold: 1,
		IsFailure:        func(err error) bool { return !errors.Is(err, errNotFound) },
	})
	ctx := context.Background()

	for range 3 {
		assert.ErrorIs(t, b.Execute(ctx, func(context.Context) error { return errNotFound }), errNotFound)
	}
	assert.Equal(t, circuitbreaker.StateClosed, b.State())

	assert.ErrorIs(t, b.Execute(ctx, fail), errUpstream)
	assert.Equal(t, circuitbreaker.StateOpen, b.State())
}
