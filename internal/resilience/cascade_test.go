package resilience

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirst_ReturnsFirstSuccess(t *testing.T) {
	var order []string
	attempts := []Attempt[int]{
		{Name: "a", Run: func(context.Context) (int, error) {
			order = append(order, "a")
			return 0, eris.New("a failed")
		}},
		{Name: "b", Run: func(context.Context) (int, error) {
			order = append(order, "b")
			return 42, nil
		}},
		{Name: "c", Run: func(context.Context) (int, error) {
			order = append(order, "c")
			return 99, nil
		}},
	}

	val, winner, err := First(context.Background(), "test", attempts)
	require.NoError(t, err)
	assert.Equal(t, 42, val)
	assert.Equal(t, "b", winner)
	assert.Equal(t, []string{"a", "b"}, order, "later attempts must not run after a success")
}

func TestFirst_SequentialNeverRetries(t *testing.T) {
	calls := map[string]int{}
	fail := func(name string) Attempt[string] {
		return Attempt[string]{Name: name, Run: func(context.Context) (string, error) {
			calls[name]++
			return "", eris.New(name + " failed")
		}}
	}

	_, _, err := First(context.Background(), "test", []Attempt[string]{fail("a"), fail("b"), fail("c")})
	require.Error(t, err)
	assert.Equal(t, map[string]int{"a": 1, "b": 1, "c": 1}, calls)
}

func TestFirst_AcceptRejectionAdvances(t *testing.T) {
	attempts := []Attempt[[]int]{
		{
			Name:   "empty",
			Run:    func(context.Context) ([]int, error) { return nil, nil },
			Accept: func(v []int) bool { return len(v) > 0 },
		},
		{
			Name:   "full",
			Run:    func(context.Context) ([]int, error) { return []int{1}, nil },
			Accept: func(v []int) bool { return len(v) > 0 },
		},
	}

	val, winner, err := First(context.Background(), "mirrors", attempts)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, val)
	assert.Equal(t, "full", winner)
}

func TestFirst_AttemptTimeoutAdvances(t *testing.T) {
	attempts := []Attempt[string]{
		{
			Name:    "slow",
			Timeout: 20 * time.Millisecond,
			Run: func(ctx context.Context) (string, error) {
				select {
				case <-time.After(5 * time.Second):
					return "too late", nil
				case <-ctx.Done():
					return "", ctx.Err()
				}
			},
		},
		{Name: "fast", Run: func(context.Context) (string, error) { return "ok", nil }},
	}

	val, winner, err := First(context.Background(), "test", attempts)
	require.NoError(t, err)
	assert.Equal(t, "ok", val)
	assert.Equal(t, "fast", winner)
}

func TestFirst_ParentCancellationStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	_, _, err := First(ctx, "test", []Attempt[int]{
		{Name: "a", Run: func(context.Context) (int, error) {
			ran = true
			return 1, nil
		}},
	})
	require.Error(t, err)
	assert.False(t, ran)
}

func TestFirst_ExhaustionWrapsLastError(t *testing.T) {
	_, _, err := First(context.Background(), "test", []Attempt[int]{
		{Name: "only", Run: func(context.Context) (int, error) { return 0, eris.New("boom") }},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "test exhausted")
	assert.Contains(t, err.Error(), "boom")
}

func TestFirst_PermanentFailureStops(t *testing.T) {
	var ran bool
	attempts := []Attempt[int]{
		{Name: "a", Run: func(context.Context) (int, error) {
			return 0, Permanent(eris.New("query rejected"))
		}},
		{Name: "b", Run: func(context.Context) (int, error) {
			ran = true
			return 42, nil
		}},
	}

	_, _, err := First(context.Background(), "test", attempts)
	require.Error(t, err)
	assert.False(t, ran, "attempts after a permanent failure must not run")
	assert.Contains(t, err.Error(), "test aborted")
}

func TestFirst_NoAttempts(t *testing.T) {
	_, _, err := First[int](context.Background(), "test", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExhausted)
}
