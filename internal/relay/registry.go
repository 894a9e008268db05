package relay

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jmylchreest/tsrelay/internal/config"
)

// Registry is the fixed-size, mutex-protected table of program entries
// keyed by "host:port". All six registry operations described in the spec
// run under one process-wide mutex; lookups are linear scans bounded by
// MaxPrograms.
type Registry struct {
	mu      sync.Mutex
	entries []*ProgramEntry
	cfg     config.RelayConfig
	logger  *slog.Logger
}

// NewRegistry allocates a registry with cfg.MaxPrograms pre-allocated,
// empty program entries.
func NewRegistry(cfg config.RelayConfig, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	entries := make([]*ProgramEntry, cfg.MaxPrograms)
	for i := range entries {
		entries[i] = &ProgramEntry{}
	}
	return &Registry{entries: entries, cfg: cfg, logger: logger}
}

// Get looks up the published entry for key, incrementing its refcount. The
// caller must release it with Put once done.
func (r *Registry) Get(key string) (*ProgramEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.state == keyPublished && e.key == key {
			e.refcnt++
			return e, true
		}
	}
	return nil, false
}

// GetFirst returns any published entry, incrementing its refcount. Used by
// /ss when no "udp" query variable matches a known program.
func (r *Registry) GetFirst() (*ProgramEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.state == keyPublished {
			e.refcnt++
			return e, true
		}
	}
	return nil, false
}

// Put releases a reference obtained from Get/GetFirst/GetOrCreate.
func (r *Registry) Put(e *ProgramEntry) {
	r.mu.Lock()
	e.refcnt--
	r.mu.Unlock()
}

// reserve claims the first Empty entry, marking it Reserved with refcnt 1.
// Returns ErrProgramTableFull if every entry is in use.
func (r *Registry) reserve() (*ProgramEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.state == keyEmpty {
			e.state = keyReserved
			e.refcnt = 1
			return e, nil
		}
	}
	return nil, ErrProgramTableFull
}

// publish marks a reserved entry as discoverable under key.
func (r *Registry) publish(e *ProgramEntry, key string) {
	r.mu.Lock()
	e.key = key
	e.state = keyPublished
	r.mu.Unlock()
}

// releaseReserved undoes a reserve() whose initialization failed.
func (r *Registry) releaseReserved(e *ProgramEntry) {
	r.mu.Lock()
	e.key = ""
	e.state = keyEmpty
	e.refcnt--
	r.mu.Unlock()
}

// Destroy commits destruction of e if its refcount is zero: it resets
// the entry's key/state under the registry mutex (making it immediately
// eligible for reservation by a new address), then tears down its UDP
// endpoint and slot table outside the lock. Returns false if another
// holder still references the entry.
func (r *Registry) Destroy(e *ProgramEntry) bool {
	r.mu.Lock()
	if e.refcnt > 0 {
		r.mu.Unlock()
		return false
	}
	e.state = keyEmpty
	e.key = ""
	e.refcnt = 0
	r.mu.Unlock()

	e.teardown()
	return true
}

// GetOrCreate returns the published entry for key, creating and
// publishing a new one if none exists yet. The returned entry's refcount
// has been incremented; the caller must Put it when done.
func (r *Registry) GetOrCreate(ctx context.Context, key string) (*ProgramEntry, error) {
	if e, ok := r.Get(key); ok {
		return e, nil
	}

	if err := validateAddress(key); err != nil {
		return nil, err
	}

	e, err := r.reserve()
	if err != nil {
		return nil, err
	}

	if err := e.init(ctx, key, r.cfg, r.logger, r.Destroy); err != nil {
		r.releaseReserved(e)
		return nil, err
	}

	r.publish(e, key)
	return e, nil
}

// Snapshot returns every currently published entry (refcount NOT
// incremented; callers must treat the slice as a best-effort view for
// rendering only, per spec §4.7's read-without-locking tolerance).
func (r *Registry) Snapshot() []*ProgramEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*ProgramEntry
	for _, e := range r.entries {
		if e.state == keyPublished {
			out = append(out, e)
		}
	}
	return out
}

// KeyOf returns the "host:port" address e is published under, or the empty
// string if it is not currently published. e.key is written only under
// r.mu (publish/releaseReserved/Destroy), so reading it must go through
// the registry rather than through any lock ProgramEntry holds itself.
func (r *Registry) KeyOf(e *ProgramEntry) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return e.key
}

// Capacity returns the configured maximum number of program entries.
func (r *Registry) Capacity() int { return len(r.entries) }

// InUse returns the number of entries currently Published or Reserved.
func (r *Registry) InUse() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.entries {
		if e.state != keyEmpty {
			n++
		}
	}
	return n
}

// Shutdown stops every active worker and waits for it to exit. It does
// not wait on the idle condition and is intended only for process exit
// (spec §6's addition over the reference process, which never exits).
func (r *Registry) Shutdown(ctx context.Context) {
	r.mu.Lock()
	var active []*ProgramEntry
	for _, e := range r.entries {
		if e.state != keyEmpty {
			active = append(active, e)
		}
	}
	r.mu.Unlock()

	var wg sync.WaitGroup
	for _, e := range active {
		wg.Add(1)
		go func(e *ProgramEntry) {
			defer wg.Done()
			e.stop()
		}(e)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}
}
