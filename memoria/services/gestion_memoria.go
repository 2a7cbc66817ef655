package services

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/models"
)

// PhysicalMemory es la memoria de usuario dividida en marcos de pageSize bytes.
type PhysicalMemory struct {
	mu         sync.Mutex
	userMemory []byte
	freeFrames []bool // true = libre
	pageSize   int
}

func NewPhysicalMemory(memorySize int, pageSize int) *PhysicalMemory {
	frames := memorySize / pageSize
	free := make([]bool, frames)
	for i := range free {
		free[i] = true
	}

	slog.Debug("Memoria inicializada", "tamaño", humanize.IBytes(uint64(memorySize)), "marcos", frames)
	return &PhysicalMemory{
		userMemory: make([]byte, frames*pageSize),
		freeFrames: free,
		pageSize:   pageSize,
	}
}

// AllocateFrame reserva el primer marco libre y lo deja en cero.
func (m *PhysicalMemory) AllocateFrame() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, free := range m.freeFrames {
		if free {
			m.freeFrames[i] = false
			clear(m.frameLocked(i))
			return i, nil
		}
	}
	slog.Error("No hay frames libres disponibles para asignar")
	return -1, models.ErrNoFreeFrame
}

func (m *PhysicalMemory) FreeFrame(frame int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame >= 0 && frame < len(m.freeFrames) {
		m.freeFrames[frame] = true
	}
}

// Frame devuelve el contenido del marco. El marco pertenece a un único proceso, que lo accede con su
// propio lock tomado.
func (m *PhysicalMemory) Frame(frame int) []byte {
	return m.frameLocked(frame)
}

func (m *PhysicalMemory) frameLocked(frame int) []byte {
	start := frame * m.pageSize
	return m.userMemory[start : start+m.pageSize]
}

func (m *PhysicalMemory) FreeFrameCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, free := range m.freeFrames {
		if free {
			count++
		}
	}
	return count
}

func (m *PhysicalMemory) TotalFrames() int {
	return len(m.freeFrames)
}

// PageEntry es una entrada válida de la tabla de páginas.
type PageEntry struct {
	Frame int
	Perm  models.Perm
}

// PageTable es el espacio de direcciones de un proceso: dirección virtual alineada a página -> marco.
// No tiene lock propio, la protege el lock del proceso dueño.
type PageTable struct {
	memory   *PhysicalMemory
	pageSize uint64
	entries  map[uint64]PageEntry
}

func NewPageTable(memory *PhysicalMemory) *PageTable {
	return &PageTable{
		memory:   memory,
		pageSize: uint64(memory.pageSize),
		entries:  make(map[uint64]PageEntry),
	}
}

func (pt *PageTable) pageRoundDown(addr uint64) uint64 {
	return addr - addr%pt.pageSize
}

// MapPage mapea todas las páginas de [addr, addr+size) con marcos nuevos en cero. Si falla a mitad de
// camino deshace lo que mapeó en esta llamada.
func (pt *PageTable) MapPage(addr uint64, size uint64, perm models.Perm) error {
	if size == 0 {
		return fmt.Errorf("%w: mapeo de tamaño cero en 0x%x", models.ErrInvariantViolation, addr)
	}
	first := pt.pageRoundDown(addr)
	last := pt.pageRoundDown(addr + size - 1)
	if last < first {
		return fmt.Errorf("%w: rango 0x%x+%d desborda el espacio de direcciones", models.ErrInvariantViolation, addr, size)
	}

	mapped := make([]uint64, 0, (last-first)/pt.pageSize+1)
	for va := first; ; va += pt.pageSize {
		if _, exists := pt.entries[va]; exists {
			pt.rollback(mapped)
			return fmt.Errorf("%w: la página 0x%x ya estaba mapeada", models.ErrInvariantViolation, va)
		}
		frame, err := pt.memory.AllocateFrame()
		if err != nil {
			pt.rollback(mapped)
			return fmt.Errorf("mapeo de 0x%x: %w", va, err)
		}
		pt.entries[va] = PageEntry{Frame: frame, Perm: perm}
		mapped = append(mapped, va)

		if va == last {
			break
		}
	}
	return nil
}

func (pt *PageTable) rollback(pages []uint64) {
	for _, va := range pages {
		pt.UnmapPage(va, 1)
	}
}

// UnmapPage revoca pageCount páginas a partir de addr y libera sus marcos. Las páginas que no estaban
// mapeadas se ignoran.
func (pt *PageTable) UnmapPage(addr uint64, pageCount int) {
	va := pt.pageRoundDown(addr)
	for i := 0; i < pageCount; i++ {
		if entry, exists := pt.entries[va]; exists {
			pt.memory.FreeFrame(entry.Frame)
			delete(pt.entries, va)
		}
		va += pt.pageSize
	}
}

func (pt *PageTable) Lookup(addr uint64) (PageEntry, bool) {
	entry, exists := pt.entries[pt.pageRoundDown(addr)]
	return entry, exists
}

func (pt *PageTable) IsMapped(addr uint64) bool {
	_, exists := pt.entries[pt.pageRoundDown(addr)]
	return exists
}

// CopyFromUser copia len(dst) bytes desde la dirección virtual addr. Es el camino del kernel: recorre
// la tabla sin pasar por la TLB.
func (pt *PageTable) CopyFromUser(dst []byte, addr uint64) error {
	return pt.walkRange(addr, len(dst), func(frame []byte, done int) int {
		return copy(dst[done:], frame)
	})
}

// CopyToUser copia src a partir de la dirección virtual addr.
func (pt *PageTable) CopyToUser(addr uint64, src []byte) error {
	return pt.walkRange(addr, len(src), func(frame []byte, done int) int {
		return copy(frame, src[done:])
	})
}

func (pt *PageTable) walkRange(addr uint64, length int, fn func(frame []byte, done int) int) error {
	done := 0
	for done < length {
		va := addr + uint64(done)
		entry, exists := pt.entries[pt.pageRoundDown(va)]
		if !exists {
			return fmt.Errorf("%w: copia sobre página no mapeada 0x%x", models.ErrInvariantViolation, va)
		}
		offset := va % pt.pageSize
		frame := pt.memory.Frame(entry.Frame)[offset:]
		if remaining := length - done; len(frame) > remaining {
			frame = frame[:remaining]
		}
		done += fn(frame, done)
	}
	return nil
}

// MappedPages devuelve las direcciones mapeadas ordenadas.
func (pt *PageTable) MappedPages() []uint64 {
	pages := make([]uint64, 0, len(pt.entries))
	for va := range pt.entries {
		pages = append(pages, va)
	}
	slices.Sort(pages)
	return pages
}

func (pt *PageTable) Len() int {
	return len(pt.entries)
}

// Teardown libera todo el espacio de direcciones.
func (pt *PageTable) Teardown() {
	for va, entry := range pt.entries {
		pt.memory.FreeFrame(entry.Frame)
		delete(pt.entries, va)
	}
}
