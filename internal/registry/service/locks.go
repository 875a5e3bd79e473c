package service

import (
	"hash/fnv"
	"sync"
)

const assetLockStripes = 64

// LockTable serializes the registry's critical sections: one mutex guards
// contributor resolution so duplicate external ids cannot race in, and a
// striped set guards per-asset transitions. All services sharing a store must
// share one table.
type LockTable struct {
	contributors sync.Mutex
	assets       [assetLockStripes]sync.Mutex
}

// NewLockTable creates an unlocked table.
func NewLockTable() *LockTable {
	return &LockTable{}
}

// Contributors returns the mutex guarding contributor resolution.
func (l *LockTable) Contributors() *sync.Mutex {
	return &l.contributors
}

// Asset returns the mutex guarding transitions for the given address.
// Distinct addresses may share a stripe; that only costs contention.
func (l *LockTable) Asset(address string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(address))
	return &l.assets[h.Sum32()%assetLockStripes]
}
