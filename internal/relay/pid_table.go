package relay

import "sync/atomic"

// pidEntry tracks the lifetime packet count and the per-second rate history
// for a single PID. It is written only by the owning program entry's
// ingest worker; readers (HTTP handlers rendering /si and /ss) load the
// atomics without any lock and must tolerate a torn snapshot across PIDs,
// per the spec's single-writer/tolerant-reader design.
type pidEntry struct {
	count       atomic.Uint32
	rateHistory [RateHistorySize]atomic.Uint16
}

// pidTable is the fixed 8192-entry table indexed by 13-bit PID.
type pidTable struct {
	entries   [PIDTableSize]pidEntry
	rateIndex atomic.Uint32
}

// observe records one TS packet for pid, incrementing its lifetime count
// and the current second's rate-history slot. Only called by the owning
// worker goroutine.
func (t *pidTable) observe(pid uint16) {
	e := &t.entries[pid]
	e.count.Add(1)
	idx := t.rateIndex.Load()
	e.rateHistory[idx].Add(1)
}

// advance moves the rate-history write cursor to the next second, wrapping
// modulo RateHistorySize, and zeroes the new slot for every PID before
// returning so that slot corresponds only to the new second. Only called
// by the owning worker goroutine, once per wall-clock second.
func (t *pidTable) advance() {
	next := (t.rateIndex.Load() + 1) % RateHistorySize
	for i := range t.entries {
		t.entries[i].rateHistory[next].Store(0)
	}
	t.rateIndex.Store(next)
}

// pidSnapshot is a point-in-time, non-atomic read of one PID's stats,
// suitable for rendering.
type pidSnapshot struct {
	PID         uint16
	Count       uint32
	RateHistory [RateHistorySize]uint16
}

// snapshotNonZero returns a snapshot for every PID with a nonzero lifetime
// count, ordered by PID, along with the current rate index.
func (t *pidTable) snapshotNonZero() (snapshots []pidSnapshot, rateIndex int) {
	rateIndex = int(t.rateIndex.Load())
	for pid := range t.entries {
		e := &t.entries[pid]
		count := e.count.Load()
		if count == 0 {
			continue
		}
		snap := pidSnapshot{PID: uint16(pid), Count: count}
		for i := range e.rateHistory {
			snap.RateHistory[i] = e.rateHistory[i].Load()
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, rateIndex
}

// parseTSPID extracts the 13-bit PID from a 188-byte TS packet, per the
// spec: bits 8-20, i.e. the low 5 bits of byte 1 and all of byte 2. The
// sync byte (offset 0) is not verified, matching the reference behavior.
func parseTSPID(packet []byte) uint16 {
	return (uint16(packet[1]&0x1F) << 8) | uint16(packet[2])
}
