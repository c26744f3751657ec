package utxo

import (
	"context"
	"testing"

	"github.com/lifafa03/USDw-stablecoin-sub000/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition(t *testing.T) {
	ctx := context.Background()

	t.Run("spend active", func(t *testing.T) {
		next, err := Transition(ctx, StatusActive, EventSpend)
		require.NoError(t, err)
		assert.Equal(t, StatusSpent, next)
	})

	t.Run("freeze and unfreeze", func(t *testing.T) {
		next, err := Transition(ctx, StatusActive, EventFreeze)
		require.NoError(t, err)
		assert.Equal(t, StatusFrozen, next)

		next, err = Transition(ctx, next, EventUnfreeze)
		require.NoError(t, err)
		assert.Equal(t, StatusActive, next)
	})

	t.Run("seize from active and frozen", func(t *testing.T) {
		next, err := Transition(ctx, StatusActive, EventSeize)
		require.NoError(t, err)
		assert.Equal(t, StatusSeized, next)

		next, err = Transition(ctx, StatusFrozen, EventSeize)
		require.NoError(t, err)
		assert.Equal(t, StatusSeized, next)
	})

	t.Run("spend frozen fails frozen", func(t *testing.T) {
		_, err := Transition(ctx, StatusFrozen, EventSpend)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrFrozen))
	})

	t.Run("spend spent fails spent", func(t *testing.T) {
		_, err := Transition(ctx, StatusSpent, EventSpend)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrSpent))
	})

	t.Run("terminal statuses reject everything", func(t *testing.T) {
		for _, status := range []Status{StatusSpent, StatusSeized} {
			for _, event := range []string{EventSpend, EventFreeze, EventUnfreeze, EventSeize} {
				_, err := Transition(ctx, status, event)
				assert.Error(t, err, "status %s event %s", status, event)
			}
		}
	})
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusActive.Terminal())
	assert.False(t, StatusFrozen.Terminal())
	assert.True(t, StatusSpent.Terminal())
	assert.True(t, StatusSeized.Terminal())
}

func TestCountsTowardSupply(t *testing.T) {
	assert.True(t, StatusActive.CountsTowardSupply())
	assert.True(t, StatusFrozen.CountsTowardSupply())
	assert.False(t, StatusSpent.CountsTowardSupply())
	assert.False(t, StatusSeized.CountsTowardSupply())
}
