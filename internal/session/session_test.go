package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManagerCreateAndGet(t *testing.T) {
	m := NewManager()

	sess := m.Create("staff1", "staff")
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, "staff1", sess.Username)

	got, ok := m.Get(sess.ID)
	assert.True(t, ok)
	assert.Same(t, sess, got)

	_, ok = m.Get("missing")
	assert.False(t, ok)
}

func TestArmedDeleteLifecycle(t *testing.T) {
	sess := NewManager().Create("staff1", "staff")

	assert.False(t, sess.DeleteArmed("AB123_TAG1"))

	sess.ArmDelete("AB123_TAG1")
	sess.ArmDelete("CD456_TAG2")
	assert.True(t, sess.DeleteArmed("AB123_TAG1"))
	assert.True(t, sess.DeleteArmed("CD456_TAG2"))

	// Cancel disarms only its own row
	sess.DisarmDelete("AB123_TAG1")
	assert.False(t, sess.DeleteArmed("AB123_TAG1"))
	assert.True(t, sess.DeleteArmed("CD456_TAG2"))

	// Navigation drops everything
	sess.ClearArmedDeletes()
	assert.False(t, sess.DeleteArmed("CD456_TAG2"))
}

func TestImportOneShot(t *testing.T) {
	sess := NewManager().Create("staff1", "staff")

	assert.False(t, sess.ImportDone())
	sess.MarkImportDone()
	assert.True(t, sess.ImportDone())

	// A fresh session starts over
	other := NewManager().Create("staff1", "staff")
	assert.False(t, other.ImportDone())
}
