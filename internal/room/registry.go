package room

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Registry owns the process-wide set of active rooms. Rooms are created
// lazily on first join and removed once their last player disconnects. The
// map is never exposed; callers go through create-if-absent, lookup and
// remove-if-empty.
type Registry struct {
	sink    Sink
	logger  *zap.Logger
	newRand func() *rand.Rand

	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewRegistry creates an empty registry. Each room gets its own time-seeded
// shuffle source.
func NewRegistry(sink Sink, logger *zap.Logger) *Registry {
	return &Registry{
		sink:   sink,
		logger: logger,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
		rooms: make(map[string]*Room),
	}
}

// SetRandFactory overrides the per-room shuffle source. Tests use this to
// make deals deterministic.
func (reg *Registry) SetRandFactory(f func() *rand.Rand) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.newRand = f
}

// NormalizeCode folds a room code to its canonical form. Codes match
// case-insensitively.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// GetOrCreate returns the room for a code, creating it if absent. Safe for
// concurrent use; exactly one room ever exists per code.
func (reg *Registry) GetOrCreate(code string) *Room {
	code = NormalizeCode(code)

	reg.mu.RLock()
	r, ok := reg.rooms[code]
	reg.mu.RUnlock()
	if ok {
		return r
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()
	if r, ok := reg.rooms[code]; ok {
		return r
	}

	r = New(code, reg.sink, reg.newRand(), reg.logger)
	reg.rooms[code] = r

	reg.logger.Info("room created", zap.String("room_code", code))
	return r
}

// Lookup returns the room for a code if one is active.
func (reg *Registry) Lookup(code string) (*Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	r, ok := reg.rooms[NormalizeCode(code)]
	return r, ok
}

// RemoveIfEmpty drops the room for a code once its roster is empty. A room
// that picked up a new player between the caller's check and this call is
// left alone.
func (reg *Registry) RemoveIfEmpty(code string) {
	code = NormalizeCode(code)

	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, ok := reg.rooms[code]
	if !ok || r.PlayerCount() > 0 {
		return
	}

	delete(reg.rooms, code)
	reg.logger.Info("room destroyed", zap.String("room_code", code))
}

// Count returns the number of active rooms.
func (reg *Registry) Count() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}
