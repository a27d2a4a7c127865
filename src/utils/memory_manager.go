package utils

import (
	"sort"
	"sync"

	"market-buzz/src/logger"
	"market-buzz/src/models"
)

// -----------------------------------------------------------------------------
// MemoryManager keeps the recent snapshots of every (symbol, subreddit) pair.
// -----------------------------------------------------------------------------

type MemoryManager struct {
	Streams      map[string]*RingBuffer[*models.MSnapshot]
	MaxSnapshots int
	Logger       *logger.Logger
	mu           sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewMemoryManager(maxSnapshots int) *MemoryManager {
	return &MemoryManager{
		Streams:      make(map[string]*RingBuffer[*models.MSnapshot]),
		MaxSnapshots: maxSnapshots,
		Logger:       logger.NewLogger(nil, "MemoryManager"),
	}
}

// -----------------------------------------------------------------------------

// AddSnapshot records a snapshot under its pair key.
func (mm *MemoryManager) AddSnapshot(snapshot *models.MSnapshot) {
	if snapshot == nil {
		return
	}

	mm.mu.Lock()
	defer mm.mu.Unlock()

	key := snapshot.Key()
	if _, ok := mm.Streams[key]; !ok {
		mm.Streams[key] = NewRingBuffer[*models.MSnapshot](mm.MaxSnapshots)
		mm.Logger.Debug("Tracking new pair %s", key)
	}
	mm.Streams[key].Append(snapshot)
}

// -----------------------------------------------------------------------------

// Latest returns the newest snapshot of every pair, ordered by pair key.
func (mm *MemoryManager) Latest() []*models.MSnapshot {
	mm.mu.RLock()
	defer mm.mu.RUnlock()

	keys := make([]string, 0, len(mm.Streams))
	for k := range mm.Streams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := make([]*models.MSnapshot, 0, len(keys))
	for _, k := range keys {
		if s, ok := mm.Streams[k].Last(); ok {
			result = append(result, s)
		}
	}
	return result
}

// -----------------------------------------------------------------------------

// LatestFor returns the newest snapshot of one pair.
func (mm *MemoryManager) LatestFor(pairKey string) (*models.MSnapshot, bool) {
	mm.mu.RLock()
	defer mm.mu.RUnlock()

	buffer, ok := mm.Streams[pairKey]
	if !ok {
		return nil, false
	}
	return buffer.Last()
}

// -----------------------------------------------------------------------------

// History returns up to n snapshots of one pair, oldest first.
func (mm *MemoryManager) History(pairKey string, n int) []*models.MSnapshot {
	mm.mu.RLock()
	defer mm.mu.RUnlock()

	buffer, ok := mm.Streams[pairKey]
	if !ok {
		return []*models.MSnapshot{}
	}
	if n <= 0 {
		return buffer.GetAll()
	}
	return buffer.GetLatest(n)
}
