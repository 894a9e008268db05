package relay

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/tsrelay/internal/config"
)

// ProgramEntry is the in-memory state for one ingested UDP source. It is
// reused across its lifetime: a registry slot is reserved, initialized,
// published under a "host:port" key, and eventually torn down back to the
// Empty state by its own ingest worker so it can be reserved again.
type ProgramEntry struct {
	// state/key/refcnt are mutated only while the owning Registry's mutex
	// is held; see registry.go.
	state  keyState
	key    string
	refcnt int

	udp    *udpSource
	cancel context.CancelFunc
	done   chan struct{}

	// entryMu guards everything below: the slot table, stream/user
	// counters, and the idle timer. Never held across a client write.
	entryMu        sync.Mutex
	slots          []StreamSlot
	maxStreamIndex int
	nrStreams      int
	nrUsers        int
	idleStartTime  time.Time

	pids pidTable

	logger *slog.Logger
}

// UserCount returns the number of logical holders keeping the entry alive
// without consuming a stream slot.
func (e *ProgramEntry) UserCount() int {
	e.entryMu.Lock()
	defer e.entryMu.Unlock()
	return e.nrUsers
}

// IncUsers registers a logical holder (e.g. /start_flow) that keeps the
// worker alive without receiving data.
func (e *ProgramEntry) IncUsers() {
	e.entryMu.Lock()
	e.nrUsers++
	e.entryMu.Unlock()
}

// DecUsers releases a logical holder. On the 1->0 transition the idle
// timer is refreshed so the worker's idle check starts counting from now.
func (e *ProgramEntry) DecUsers() {
	e.entryMu.Lock()
	if e.nrUsers == 1 {
		e.idleStartTime = time.Now()
	}
	if e.nrUsers > 0 {
		e.nrUsers--
	}
	e.entryMu.Unlock()
}

// PIDSnapshots returns a rendering snapshot of every PID with a nonzero
// count, and the current rate-history write cursor.
func (e *ProgramEntry) PIDSnapshots() (snapshots []pidSnapshot, rateIndex int) {
	return e.pids.snapshotNonZero()
}

// init opens the UDP endpoint, allocates the slot table, and starts the
// ingest worker. Called while the entry is Reserved but not yet published;
// on failure the caller must release the reservation via the registry.
func (e *ProgramEntry) init(ctx context.Context, key string, cfg config.RelayConfig, logger *slog.Logger, onIdleExpired func(*ProgramEntry) bool) error {
	udp, err := openUDPSource(key)
	if err != nil {
		return err
	}

	e.udp = udp
	e.slots = make([]StreamSlot, cfg.MaxStreamsPerProgram)
	e.maxStreamIndex = 0
	e.nrStreams = 0
	e.nrUsers = 0
	e.idleStartTime = time.Now()
	e.pids = pidTable{}
	e.logger = logger.With(slog.String("component", "relay.worker"), slog.String("udp", key))
	e.done = make(chan struct{})

	// The worker outlives the request that created the entry; only
	// e.cancel (teardown or stop) ends it early.
	workerCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	e.cancel = cancel

	go func() {
		defer close(e.done)
		runIngestWorker(workerCtx, e, cfg, onIdleExpired)
	}()

	return nil
}

// teardown closes the UDP endpoint and resets the slot table so the entry
// can be reserved again. Called by the registry once destruction has been
// committed under its mutex.
func (e *ProgramEntry) teardown() {
	if e.cancel != nil {
		e.cancel()
	}
	if e.udp != nil {
		if err := e.udp.close(); err != nil && e.logger != nil {
			e.logger.Warn("error closing udp endpoint", slog.String("error", err.Error()))
		}
	}

	e.entryMu.Lock()
	e.slots = nil
	e.maxStreamIndex = 0
	e.nrStreams = 0
	e.nrUsers = 0
	e.entryMu.Unlock()
}

// stop cancels the worker and waits for it to exit, without waiting on the
// idle condition. Used only for process shutdown.
func (e *ProgramEntry) stop() {
	if e.cancel != nil {
		e.cancel()
	}
	if e.done != nil {
		<-e.done
	}
}

func validateAddress(addr string) error {
	if addr == "" {
		return fmt.Errorf("%w: empty address", ErrInvalidAddress)
	}
	return nil
}
