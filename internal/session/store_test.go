package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skiff-ai/skiff/internal/llm"
	"github.com/skiff-ai/skiff/internal/log"
)

func TestGetOrCreate(t *testing.T) {
	store := NewStore(log.NewNop())

	t.Run("creates on first reference", func(t *testing.T) {
		sess, err := store.GetOrCreate("s1")
		require.NoError(t, err)
		assert.Equal(t, "s1", sess.ID)
		assert.Empty(t, sess.History)
		assert.Empty(t, sess.Prefs)
		assert.Equal(t, DefaultSettings(), sess.Settings)
	})

	t.Run("same id returns same state", func(t *testing.T) {
		require.NoError(t, store.AppendMessages("s1", llm.Message{Role: llm.RoleUser, Content: "hi"}))
		sess, err := store.GetOrCreate("s1")
		require.NoError(t, err)
		assert.Len(t, sess.History, 1)
	})

	t.Run("distinct ids are isolated", func(t *testing.T) {
		sess, err := store.GetOrCreate("s2")
		require.NoError(t, err)
		assert.Empty(t, sess.History)
	})

	t.Run("empty id rejected", func(t *testing.T) {
		_, err := store.GetOrCreate("")
		assert.ErrorIs(t, err, ErrEmptySessionID)
	})

	t.Run("returned snapshot does not alias store state", func(t *testing.T) {
		sess, err := store.GetOrCreate("s1")
		require.NoError(t, err)
		sess.History = append(sess.History, llm.Message{Role: llm.RoleUser, Content: "mutation"})
		sess.Prefs["search"] = false

		fresh, err := store.GetOrCreate("s1")
		require.NoError(t, err)
		assert.Len(t, fresh.History, 1)
		assert.Empty(t, fresh.Prefs)
	})
}

func TestReset(t *testing.T) {
	store := NewStore(log.NewNop())

	require.NoError(t, store.AppendMessages("s1",
		llm.Message{Role: llm.RoleUser, Content: "question"},
		llm.Message{Role: llm.RoleAssistant, Content: "answer"},
	))
	require.NoError(t, store.SetPreference("s1", "search", false))
	require.NoError(t, store.UpdateSettings("s1", Settings{Temperature: 0.9, MaxTokens: 4000}))

	require.NoError(t, store.Reset("s1"))

	history, err := store.History("s1")
	require.NoError(t, err)
	assert.Empty(t, history, "reset must clear history")

	prefs, err := store.Preferences("s1")
	require.NoError(t, err)
	assert.Empty(t, prefs, "reset must restore default preferences")

	settings, err := store.Settings("s1")
	require.NoError(t, err)
	assert.Equal(t, Settings{Temperature: 0.9, MaxTokens: 4000}, settings,
		"reset must retain sampling settings")
}

func TestResetUnknownSession(t *testing.T) {
	store := NewStore(log.NewNop())

	require.NoError(t, store.Reset("never-seen"))

	sess, err := store.GetOrCreate("never-seen")
	require.NoError(t, err)
	assert.Empty(t, sess.History)
	assert.Equal(t, DefaultSettings(), sess.Settings)
}

func TestPreferences(t *testing.T) {
	store := NewStore(log.NewNop())

	t.Run("point update leaves others untouched", func(t *testing.T) {
		require.NoError(t, store.SetPreference("s1", "search", false))
		require.NoError(t, store.SetPreference("s1", "calculator", true))

		prefs, err := store.Preferences("s1")
		require.NoError(t, err)
		assert.Equal(t, map[string]bool{"search": false, "calculator": true}, prefs)
	})

	t.Run("unknown tool names accepted", func(t *testing.T) {
		require.NoError(t, store.SetPreference("s1", "no_such_tool", false))
		prefs, err := store.Preferences("s1")
		require.NoError(t, err)
		assert.False(t, prefs["no_such_tool"])
	})

	t.Run("batch update", func(t *testing.T) {
		require.NoError(t, store.SetPreferences("s2", map[string]bool{
			"search":      false,
			"get_weather": true,
		}))
		prefs, err := store.Preferences("s2")
		require.NoError(t, err)
		assert.Len(t, prefs, 2)
	})

	t.Run("returned map is a copy", func(t *testing.T) {
		prefs, err := store.Preferences("s1")
		require.NoError(t, err)
		prefs["search"] = true

		fresh, err := store.Preferences("s1")
		require.NoError(t, err)
		assert.False(t, fresh["search"])
	})
}

func TestUpdateSettings(t *testing.T) {
	store := NewStore(log.NewNop())

	t.Run("valid update", func(t *testing.T) {
		err := store.UpdateSettings("s1", Settings{Temperature: 1.5, MaxTokens: 2048})
		require.NoError(t, err)

		settings, err := store.Settings("s1")
		require.NoError(t, err)
		assert.Equal(t, 1.5, settings.Temperature)
		assert.Equal(t, 2048, settings.MaxTokens)
	})

	t.Run("temperature out of range", func(t *testing.T) {
		err := store.UpdateSettings("s1", Settings{Temperature: 2.5, MaxTokens: 2048})
		assert.ErrorIs(t, err, ErrInvalidTemperature)

		err = store.UpdateSettings("s1", Settings{Temperature: -0.1, MaxTokens: 2048})
		assert.ErrorIs(t, err, ErrInvalidTemperature)
	})

	t.Run("max tokens out of range", func(t *testing.T) {
		err := store.UpdateSettings("s1", Settings{Temperature: 0.2, MaxTokens: 0})
		assert.ErrorIs(t, err, ErrInvalidMaxTokens)

		err = store.UpdateSettings("s1", Settings{Temperature: 0.2, MaxTokens: MaxMaxTokens + 1})
		assert.ErrorIs(t, err, ErrInvalidMaxTokens)
	})

	t.Run("rejected update leaves settings untouched", func(t *testing.T) {
		before, err := store.Settings("s1")
		require.NoError(t, err)

		_ = store.UpdateSettings("s1", Settings{Temperature: 99, MaxTokens: 2048})

		after, err := store.Settings("s1")
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})
}

func TestStoreConcurrentAccess(t *testing.T) {
	store := NewStore(log.NewNop())

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("session-%d", n%4)
			for range 50 {
				_ = store.AppendMessages(id, llm.Message{Role: llm.RoleUser, Content: "m"})
				_, _ = store.History(id)
				_ = store.SetPreference(id, "search", n%2 == 0)
				_, _ = store.Preferences(id)
				_, _ = store.Settings(id)
			}
		}(i)
	}
	wg.Wait()

	history, err := store.History("session-0")
	require.NoError(t, err)
	assert.Len(t, history, 200)
}
