package relay

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/tsrelay/internal/config"
)

func tsPacket(pid uint16) []byte {
	pkt := make([]byte, TSPacketSize)
	pkt[0] = 0x47
	pkt[1] = byte(pid >> 8)
	pkt[2] = byte(pid)
	return pkt
}

func TestIngestWorkerObservesRealDatagrams(t *testing.T) {
	cfg := config.Default().Relay
	cfg.IdleTimeout = time.Hour
	cfg.IdlePollInterval = 5 * time.Millisecond
	cfg.UDPReceiveTimeout = 20 * time.Millisecond
	cfg.UDPPacketSize = 188 * 2

	reg := NewRegistry(cfg, discardLogger())
	entry, err := reg.GetOrCreate(context.Background(), "127.0.0.1:41101")
	require.NoError(t, err)
	defer reg.Put(entry)

	entry.IncUsers() // keep the worker reading even though no stream is admitted yet

	sender, err := net.Dial("udp", reg.KeyOf(entry))
	require.NoError(t, err)
	defer sender.Close()

	for i := 0; i < 5; i++ {
		_, err := sender.Write(tsPacket(100))
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		snaps, _ := entry.PIDSnapshots()
		for _, s := range snaps {
			if s.PID == 100 && s.Count >= 5 {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)

	entry.DecUsers()
}

func TestBroadcastDeliversToRunningSlot(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	e := &ProgramEntry{slots: make([]StreamSlot, 1)}
	idx, err := e.AddStream(server, "test-client")
	require.NoError(t, err)

	received := make(chan []byte, 1)
	ready := make(chan struct{})
	go func() {
		buf := make([]byte, TSPacketSize)
		close(ready)
		n, _ := client.Read(buf)
		received <- buf[:n]
	}()
	<-ready
	time.Sleep(10 * time.Millisecond) // let the reader block in Read before the non-blocking write fires

	e.broadcast(tsPacket(200))

	select {
	case data := <-received:
		assert.Len(t, data, TSPacketSize)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast data")
	}

	assert.EqualValues(t, TSPacketSize, e.slots[idx].SendBytes())
}

func TestFillNullPacketsProducesTSNullPID(t *testing.T) {
	buf := make([]byte, TSPacketSize*2)
	n := fillNullPackets(buf)
	require.Equal(t, len(buf), n)

	assert.Equal(t, byte(0x47), buf[0])
	assert.Equal(t, uint16(NullPID), parseTSPID(buf[:TSPacketSize]))
}
