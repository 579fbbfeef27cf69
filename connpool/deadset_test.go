package connpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeadConnectionTracker_AddIsIdempotent(t *testing.T) {
	tracker := &deadConnectionTracker{}
	conn := newFakeConnection()

	tracker.Add(conn)
	tracker.Add(conn)

	drained := tracker.Drain()
	assert.Len(t, drained, 1)
	assert.Equal(t, conn, drained[0])
}

func TestDeadConnectionTracker_DrainEmpties(t *testing.T) {
	tracker := &deadConnectionTracker{}
	assert.True(t, tracker.Empty())
	assert.Empty(t, tracker.Drain())

	tracker.Add(newFakeConnection())
	tracker.Add(newFakeConnection())
	assert.False(t, tracker.Empty())

	assert.Len(t, tracker.Drain(), 2)
	assert.True(t, tracker.Empty())
}
