package services

import (
	"fmt"
	"sort"
	"sync"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/models"
)

// Process es la vista que tiene memoria de un proceso. Todos los campos mutables se protegen con mu,
// que se toma durante todo un page fault.
type Process struct {
	mu sync.Mutex

	PID       uint
	Name      string // path del ejecutable dentro de programs_path
	PageTable *PageTable
	Heap      *HeapRegistry
	TLB       *TranslationCache

	HeapStart         uint64
	HeapEnd           uint64
	ResidentHeapPages int

	Killed     bool
	KillReason error
}

func (p *Process) inHeapRegion(addr uint64) bool {
	return addr >= p.HeapStart && addr < p.HeapEnd
}

// Status arma la foto del heap del proceso.
func (p *Process) Status(maxResident int) models.HeapStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	return models.HeapStatus{
		PID:               p.PID,
		HeapStart:         p.HeapStart,
		HeapEnd:           p.HeapEnd,
		ResidentHeapPages: p.ResidentHeapPages,
		MaxResident:       maxResident,
		Killed:            p.Killed,
		Entries:           p.Heap.Entries(),
	}
}

// ProcessTable indexa los procesos por PID.
type ProcessTable struct {
	mu    sync.RWMutex
	procs map[uint]*Process
}

func NewProcessTable() *ProcessTable {
	return &ProcessTable{procs: make(map[uint]*Process)}
}

func (t *ProcessTable) Add(p *Process) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.procs[p.PID]; exists {
		return fmt.Errorf("PID %d: %w", p.PID, models.ErrProcessExists)
	}
	t.procs[p.PID] = p
	return nil
}

func (t *ProcessTable) Get(pid uint) (*Process, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	p, exists := t.procs[pid]
	if !exists {
		return nil, fmt.Errorf("PID %d: %w", pid, models.ErrProcessNotFound)
	}
	return p, nil
}

func (t *ProcessTable) Remove(pid uint) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.procs, pid)
}

// PIDs devuelve los PIDs ordenados.
func (t *ProcessTable) PIDs() []uint {
	t.mu.RLock()
	defer t.mu.RUnlock()

	pids := make([]uint, 0, len(t.procs))
	for pid := range t.procs {
		pids = append(pids, pid)
	}
	sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })
	return pids
}
