package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/pentago-client/internal/apperror"
)

func TestLease(t *testing.T) {
	t.Run("Only one holder at a time", func(t *testing.T) {
		// Given: a held lease
		var l lease
		token, ok := l.Acquire(apperror.KindPlay)
		require.True(t, ok)

		// When: someone else tries to take it
		_, again := l.Acquire(apperror.KindBot)

		// Then: it is refused until released
		assert.False(t, again)
		assert.True(t, l.Busy())
		assert.True(t, l.HeldBy(apperror.KindPlay))

		require.True(t, l.Release(token))
		assert.False(t, l.Busy())

		_, ok = l.Acquire(apperror.KindBot)
		assert.True(t, ok)
	})

	t.Run("Stale token cannot release a newer holder", func(t *testing.T) {
		// Given: a lease revoked from its first holder and taken by a second one
		var l lease
		stale, _ := l.Acquire(apperror.KindBot)
		l.Revoke()
		current, ok := l.Acquire(apperror.KindInit)
		require.True(t, ok)

		// When: the first holder finishes late
		released := l.Release(stale)

		// Then: the second holder keeps the lease
		assert.False(t, released)
		assert.True(t, l.HeldBy(apperror.KindInit))
		assert.True(t, l.Release(current))
	})

	t.Run("Double release is a no-op", func(t *testing.T) {
		var l lease
		token, _ := l.Acquire(apperror.KindPlay)

		assert.True(t, l.Release(token))
		assert.False(t, l.Release(token))
	})
}
