package relay

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEntry(maxStreams int) *ProgramEntry {
	return &ProgramEntry{slots: make([]StreamSlot, maxStreams)}
}

func TestAddStreamClaimsFirstFreeSlot(t *testing.T) {
	e := newTestEntry(2)

	idx, err := e.AddStream(&net.TCPConn{}, "127.0.0.1:1111")
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 1, e.StreamCount())

	idx2, err := e.AddStream(&net.TCPConn{}, "127.0.0.1:2222")
	require.NoError(t, err)
	assert.Equal(t, 1, idx2)
	assert.Equal(t, 2, e.StreamCount())
}

func TestAddStreamTableFull(t *testing.T) {
	e := newTestEntry(1)

	_, err := e.AddStream(&net.TCPConn{}, "127.0.0.1:1111")
	require.NoError(t, err)

	_, err = e.AddStream(&net.TCPConn{}, "127.0.0.1:2222")
	assert.ErrorIs(t, err, ErrStreamTableFull)
}

func TestAddStreamReusesRemovedSlot(t *testing.T) {
	e := newTestEntry(1)

	idx, err := e.AddStream(&net.TCPConn{}, "127.0.0.1:1111")
	require.NoError(t, err)
	e.RemoveStream(idx)
	assert.Equal(t, StreamClose, e.SlotStatus(idx))

	idx2, err := e.AddStream(&net.TCPConn{}, "127.0.0.1:2222")
	require.NoError(t, err)
	assert.Equal(t, idx, idx2)
	assert.Equal(t, StreamRunning, e.SlotStatus(idx2))
}

func TestRemoveStreamIsIdempotent(t *testing.T) {
	e := newTestEntry(1)
	idx, _ := e.AddStream(&net.TCPConn{}, "127.0.0.1:1111")
	e.RemoveStream(idx)
	e.RemoveStream(idx)
	assert.Equal(t, 0, e.StreamCount())
}

func TestRunningSlotsOnlyIncludesRunning(t *testing.T) {
	e := newTestEntry(2)
	idx1, _ := e.AddStream(&net.TCPConn{}, "127.0.0.1:1111")
	_, _ = e.AddStream(&net.TCPConn{}, "127.0.0.1:2222")
	e.RemoveStream(idx1)

	running := e.RunningSlots()
	require.Len(t, running, 1)
	assert.Equal(t, "127.0.0.1:2222", running[0].Slot.RemoteAddr())
}
