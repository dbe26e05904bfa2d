package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentkit/core"
)

// RunSessionStoreTests exercises the core.SessionStore contract against
// store. Backends call it from their own tests.
func RunSessionStoreTests(t *testing.T, store core.SessionStore) {
	t.Helper()

	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		id, err := store.Create(ctx, "ep-1")
		require.NoError(t, err)
		require.NotEmpty(t, id)

		sess, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, sess.ID)
		assert.Equal(t, "ep-1", sess.EndpointID)
		assert.Empty(t, sess.Turns)
	})

	t.Run("append preserves order", func(t *testing.T) {
		id, err := store.Create(ctx, "ep-1")
		require.NoError(t, err)

		require.NoError(t, store.Append(ctx, id,
			NewTurnBuilder().User("2+3?").Build(),
			NewTurnBuilder().Assistant("").Action("a1", "add", map[string]any{"a": 2.0, "b": 3.0}).Build(),
		))
		require.NoError(t, store.Append(ctx, id,
			NewTurnBuilder().Result("a1", "add", 5.0, nil).Build(),
			NewTurnBuilder().Assistant("5").Build(),
		))

		sess, err := store.Get(ctx, id)
		require.NoError(t, err)
		require.Len(t, sess.Turns, 4)
		assert.Equal(t, core.RoleUser, sess.Turns[0].Role)
		assert.Equal(t, "add", sess.Turns[1].Actions[0].ToolName)
		assert.Equal(t, "a1", sess.Turns[2].Results[0].ActionID)
		assert.Equal(t, "5", sess.Turns[3].Text)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := store.Get(ctx, "does-not-exist")
		assert.ErrorIs(t, err, core.ErrSessionNotFound)
		assert.ErrorIs(t, store.Append(ctx, "does-not-exist", NewTurnBuilder().User("x").Build()), core.ErrSessionNotFound)
		assert.ErrorIs(t, store.Delete(ctx, "does-not-exist"), core.ErrSessionNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		id, err := store.Create(ctx, "ep-1")
		require.NoError(t, err)

		require.NoError(t, store.Delete(ctx, id))

		_, err = store.Get(ctx, id)
		assert.ErrorIs(t, err, core.ErrSessionNotFound)
		assert.ErrorIs(t, store.Delete(ctx, id), core.ErrSessionNotFound)
	})

	t.Run("concurrent appends", func(t *testing.T) {
		id, err := store.Create(ctx, "ep-1")
		require.NoError(t, err)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, store.Append(ctx, id,
					NewTurnBuilder().User("q").Build(),
					NewTurnBuilder().Assistant("a").Build(),
				))
			}()
		}
		wg.Wait()

		sess, err := store.Get(ctx, id)
		require.NoError(t, err)
		require.Len(t, sess.Turns, 20)

		// pairs are never interleaved
		for i := 0; i < len(sess.Turns); i += 2 {
			assert.Equal(t, core.RoleUser, sess.Turns[i].Role)
			assert.Equal(t, core.RoleAssistant, sess.Turns[i+1].Role)
		}
	})
}
