package websocket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresenceTracker_AddRemove(t *testing.T) {
	t.Run("first connection flips user online", func(t *testing.T) {
		p := NewPresenceTracker()

		assert.True(t, p.Add("user-1"))
		assert.True(t, p.IsOnline("user-1"))
		assert.Equal(t, 1, p.Count())
	})

	t.Run("second connection does not re-announce", func(t *testing.T) {
		p := NewPresenceTracker()

		require.True(t, p.Add("user-1"))
		assert.False(t, p.Add("user-1"))
		assert.True(t, p.IsOnline("user-1"))
		assert.Equal(t, 1, p.Count())
	})

	t.Run("only the last connection flips user offline", func(t *testing.T) {
		p := NewPresenceTracker()
		p.Add("user-1")
		p.Add("user-1")

		assert.False(t, p.Remove("user-1"))
		assert.True(t, p.IsOnline("user-1"))

		assert.True(t, p.Remove("user-1"))
		assert.False(t, p.IsOnline("user-1"))
		assert.Equal(t, 0, p.Count())
	})

	t.Run("removing an unknown user is a no-op", func(t *testing.T) {
		p := NewPresenceTracker()

		assert.False(t, p.Remove("ghost"))
		assert.Equal(t, 0, p.Count())
	})
}

func TestPresenceTracker_Snapshot(t *testing.T) {
	p := NewPresenceTracker()
	p.Add("charlie")
	p.Add("alice")
	p.Add("bob")
	p.Add("alice")

	snapshot := p.Snapshot()

	assert.Equal(t, []string{"alice", "bob", "charlie"}, snapshot)

	t.Run("snapshot is a copy", func(t *testing.T) {
		snapshot[0] = "mutated"
		assert.Equal(t, []string{"alice", "bob", "charlie"}, p.Snapshot())
	})
}
