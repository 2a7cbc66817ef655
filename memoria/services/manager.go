package services

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/models"
)

// MemoryManager agrupa todo el estado del módulo memoria. Reemplaza a las variables globales: los
// handlers reciben un *MemoryManager.
type MemoryManager struct {
	config    models.Config
	memory    *PhysicalMemory
	swap      *SwapArea
	device    BlockDevice
	fs        *FileSystem
	tracer    *Tracer
	processes *ProcessTable
	faults    *FaultHandler
}

// NewMemoryManager arma el módulo sobre device, que tiene que tener bloques de cfg.BlockSize bytes y al
// menos cfg.PsaSize bloques. Si clock es nil se usa un TickClock.
func NewMemoryManager(cfg models.Config, device BlockDevice, clock Clock) (*MemoryManager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuración inválida: %w", err)
	}
	if device.BlockSize() != cfg.BlockSize {
		return nil, fmt.Errorf("el disco tiene bloques de %d bytes y la configuración %d", device.BlockSize(), cfg.BlockSize)
	}
	if clock == nil {
		clock = &TickClock{}
	}

	tracer := NewTracer(maxTraceEvents)
	fs := NewFileSystem(cfg.ProgramsPath)
	swap := NewSwapArea(cfg.PsaSize, cfg.BlocksPerPage())

	m := &MemoryManager{
		config:    cfg,
		memory:    NewPhysicalMemory(cfg.MemorySize, cfg.PageSize),
		swap:      swap,
		device:    device,
		fs:        fs,
		tracer:    tracer,
		processes: NewProcessTable(),
	}
	m.faults = NewFaultHandler(cfg.PageSize, cfg.MaxResident, swap, device,
		NewElfLoader(fs, cfg.PageSize, tracer), tracer, clock)

	slog.Info("Memoria lista",
		"memoria", humanize.IBytes(uint64(cfg.MemorySize)),
		"swap", humanize.IBytes(uint64(cfg.PsaSize)*uint64(cfg.BlockSize)),
		"max_resident", cfg.MaxResident, "max_heap", cfg.MaxHeap)
	return m, nil
}

func (m *MemoryManager) Config() models.Config {
	return m.config
}

func (m *MemoryManager) Tracer() *Tracer {
	return m.tracer
}

func (m *MemoryManager) Swap() *SwapArea {
	return m.swap
}

func (m *MemoryManager) Memory() *PhysicalMemory {
	return m.memory
}

func (m *MemoryManager) pageRoundDown(addr uint64) uint64 {
	return addr - addr%uint64(m.config.PageSize)
}

// CreateProcess registra un proceso cuyo ejecutable es path. No se carga nada: las páginas de la imagen
// se traen con el primer fault. El heap arranca vacío en heapStart.
func (m *MemoryManager) CreateProcess(pid uint, path string, heapStart uint64) (*Process, error) {
	if heapStart%uint64(m.config.PageSize) != 0 {
		return nil, fmt.Errorf("heap_start 0x%x no está alineado a página", heapStart)
	}

	ip, err := m.fs.LookupByPath(path)
	if err != nil {
		return nil, err
	}
	ip.Put()

	tlb, err := NewTranslationCache(m.config.TlbEntries)
	if err != nil {
		return nil, err
	}

	p := &Process{
		PID:       pid,
		Name:      path,
		PageTable: NewPageTable(m.memory),
		Heap:      NewHeapRegistry(m.config.MaxHeap),
		TLB:       tlb,
		HeapStart: heapStart,
		HeapEnd:   heapStart,
	}
	if err := m.processes.Add(p); err != nil {
		tlb.Close()
		return nil, err
	}

	slog.Info(fmt.Sprintf("## PID: %d - Proceso Creado - Ejecutable: %s", pid, path), "heap_start", fmt.Sprintf("0x%x", heapStart))
	return p, nil
}

func (m *MemoryManager) Process(pid uint) (*Process, error) {
	return m.processes.Get(pid)
}

// Sbrk agranda el heap en pages páginas. Las páginas nuevas se registran en el heap tracker pero no se
// mapean: el primer acceso produce el fault.
func (m *MemoryManager) Sbrk(pid uint, pages int) (uint64, error) {
	if pages <= 0 {
		return 0, fmt.Errorf("sbrk de %d páginas no soportado", pages)
	}
	p, err := m.processes.Get(pid)
	if err != nil {
		return 0, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Killed {
		return 0, fmt.Errorf("PID %d: %w", pid, models.ErrProcessKilled)
	}

	pageSize := uint64(m.config.PageSize)
	current := int((p.HeapEnd - p.HeapStart) / pageSize)
	if current+pages > p.Heap.Capacity() {
		return 0, fmt.Errorf("PID %d pide %d páginas con %d de %d: %w",
			pid, pages, current, p.Heap.Capacity(), models.ErrHeapExhausted)
	}

	for i := 0; i < pages; i++ {
		if _, err := p.Heap.Register(p.HeapEnd + uint64(i)*pageSize); err != nil {
			return 0, err
		}
	}
	p.HeapEnd += uint64(pages) * pageSize

	slog.Debug("Heap extendido", "pid", pid, "paginas", pages, "heap_end", fmt.Sprintf("0x%x", p.HeapEnd))
	return p.HeapEnd, nil
}

// HandleFault es la entrada del trap: redondea la dirección a página y despacha el fault.
func (m *MemoryManager) HandleFault(pid uint, addr uint64) models.FaultResult {
	p, err := m.processes.Get(pid)
	if err != nil {
		return models.FaultResult{Outcome: models.OutcomeFatal, Err: err}
	}
	return m.faults.HandleFault(p, m.pageRoundDown(addr))
}

// HeapStatus devuelve el heap tracker y la contabilidad de residentes de pid.
func (m *MemoryManager) HeapStatus(pid uint) (models.HeapStatus, error) {
	p, err := m.processes.Get(pid)
	if err != nil {
		return models.HeapStatus{}, err
	}
	return p.Status(m.config.MaxResident), nil
}

func (m *MemoryManager) SwapStatus() models.SwapStatus {
	return models.SwapStatus{
		TotalBlocks:   m.swap.TotalBlocks(),
		UsedBlocks:    m.swap.UsedBlocks(),
		BlocksPerPage: m.swap.GroupSize(),
		Occupancy:     m.swap.Snapshot(),
	}
}

// Exit finaliza pid normalmente y lo saca de la tabla.
func (m *MemoryManager) Exit(pid uint) error {
	p, err := m.processes.Get(pid)
	if err != nil {
		return err
	}

	p.mu.Lock()
	m.faults.releaseLocked(p)
	p.Killed = true
	p.TLB.Close()
	p.mu.Unlock()

	m.processes.Remove(pid)
	slog.Info(fmt.Sprintf("## PID: %d - Proceso Destruido", pid))
	return nil
}

// Close finaliza todos los procesos y cierra el disco si corresponde.
func (m *MemoryManager) Close() error {
	var errs []error
	for _, pid := range m.processes.PIDs() {
		if err := m.Exit(pid); err != nil {
			errs = append(errs, err)
		}
	}
	if closer, ok := m.device.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
