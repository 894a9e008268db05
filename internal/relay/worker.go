package relay

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/jmylchreest/tsrelay/internal/config"
)

// runIngestWorker is the per-program-entry ingest loop: one iteration per
// datagram (real or synthesized filler). It self-terminates by invoking
// destroy once the entry has been idle (no streams, no users) for
// cfg.IdleTimeout; destroy returns false if another holder still
// references the entry, in which case the worker keeps retrying.
func runIngestWorker(ctx context.Context, e *ProgramEntry, cfg config.RelayConfig, destroy func(*ProgramEntry) bool) {
	buf := make([]byte, cfg.UDPPacketSize)
	var lastSecond int64

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		e.entryMu.Lock()
		idle := e.nrStreams <= 0 && e.nrUsers <= 0
		idleStart := e.idleStartTime
		e.entryMu.Unlock()

		if idle {
			if time.Since(idleStart) >= cfg.IdleTimeout {
				e.logger.Info("program entry idle timeout reached, destroying")
				if destroy(e) {
					return
				}
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(cfg.IdlePollInterval):
			}
			continue
		}

		n, err := e.udp.readTimeout(buf, cfg.UDPReceiveTimeout)
		if err != nil {
			e.logger.Warn("udp read error, synthesizing filler", slog.String("error", err.Error()))
			n = fillNullPackets(buf)
		} else if n <= 0 {
			n = fillNullPackets(buf)
		} else {
			observeDatagram(&e.pids, buf[:n])
			now := time.Now().Unix()
			if lastSecond != 0 && now != lastSecond {
				e.pids.advance()
			}
			lastSecond = now
		}

		e.broadcast(buf[:n])
	}
}

// fillNullPackets overwrites buf with whole TS null packets (PID 0x1FFF)
// to keep downstream decoders fed while the UDP source is silent, per
// spec §4.3 step 3. Returns the number of bytes written (always
// len(buf) rounded down to a multiple of TSPacketSize).
func fillNullPackets(buf []byte) int {
	n := (len(buf) / TSPacketSize) * TSPacketSize
	for i := 0; i < n; i += TSPacketSize {
		pkt := buf[i : i+TSPacketSize]
		for j := range pkt {
			pkt[j] = 0xFF
		}
		pkt[0] = 0x47
		pkt[1] = 0x1F
		pkt[2] = 0xFF
		pkt[3] = 0x00
	}
	return n
}

// observeDatagram walks a datagram at 188-byte stride, recording each
// packet's PID into the table. Packets are not sync-byte verified, per
// spec §4.7.
func observeDatagram(t *pidTable, data []byte) {
	for i := 0; i+TSPacketSize <= len(data); i += TSPacketSize {
		t.observe(parseTSPID(data[i : i+TSPacketSize]))
	}
}

// broadcast writes data to every RUNNING slot up to maxStreamIndex. It
// takes a consistent snapshot of slot state under entryMu, then performs
// the actual writes without holding the lock (per spec §5: "never held
// across a write to the client socket"), reacquiring the lock only to
// record per-slot outcomes.
func (e *ProgramEntry) broadcast(data []byte) {
	e.entryMu.Lock()
	maxIdx := e.maxStreamIndex
	snapshot := make([]StreamSlot, maxIdx+1)
	copy(snapshot, e.slots[:maxIdx+1])
	e.entryMu.Unlock()

	for i := 0; i <= maxIdx; i++ {
		s := &snapshot[i]
		if s.status != StreamRunning || s.conn == nil {
			continue
		}

		// Bound the write with a deadline just ahead of now: it completes
		// at once when the client's send buffer has room and times out
		// instead of blocking when it is full. A write that times out
		// part-way may already have sent part of the datagram; the whole
		// datagram is still counted as discarded.
		_ = s.conn.SetWriteDeadline(time.Now().Add(broadcastWriteTimeout))
		_, err := s.conn.Write(data)

		switch {
		case err == nil:
			e.recordSend(i, s.conn, uint64(len(data)))
		case isWouldBlock(err):
			e.recordDiscard(i, s.conn, uint64(len(data)))
		default:
			e.RemoveStream(i)
		}
	}
}

// broadcastWriteTimeout is the deadline given to each broadcast write. A
// deadline at or before now would fail every write before it is attempted.
const broadcastWriteTimeout = time.Millisecond

func isWouldBlock(err error) bool {
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}

// recordSend/recordDiscard add to a slot's counters only if it is still
// the same client connection that was written to; a slot may have been
// reused by a new client between the broadcast snapshot and this call.
func (e *ProgramEntry) recordSend(i int, conn net.Conn, n uint64) {
	e.entryMu.Lock()
	if e.slots[i].conn == conn {
		e.slots[i].sendBytes += n
	}
	e.entryMu.Unlock()
}

func (e *ProgramEntry) recordDiscard(i int, conn net.Conn, n uint64) {
	e.entryMu.Lock()
	if e.slots[i].conn == conn {
		e.slots[i].discardBytes += n
	}
	e.entryMu.Unlock()
}
