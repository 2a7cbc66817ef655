package services

import (
	"fmt"
	"log/slog"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/models"
)

// FaultHandler atiende los page faults: decide si la dirección es de heap o de la imagen, desaloja y
// recupera páginas de swap y deja el espacio de direcciones consistente.
type FaultHandler struct {
	pageSize    uint64
	maxResident int
	swap        *SwapArea
	device      BlockDevice
	loader      *ElfLoader
	tracer      *Tracer
	clock       Clock
}

func NewFaultHandler(pageSize int, maxResident int, swap *SwapArea, device BlockDevice, loader *ElfLoader, tracer *Tracer, clock Clock) *FaultHandler {
	return &FaultHandler{
		pageSize:    uint64(pageSize),
		maxResident: maxResident,
		swap:        swap,
		device:      device,
		loader:      loader,
		tracer:      tracer,
		clock:       clock,
	}
}

// HandleFault atiende un fault sobre addr, que ya viene alineada a página.
func (h *FaultHandler) HandleFault(p *Process, addr uint64) models.FaultResult {
	p.mu.Lock()
	defer p.mu.Unlock()

	return h.handleFaultLocked(p, addr)
}

func (h *FaultHandler) handleFaultLocked(p *Process, addr uint64) models.FaultResult {
	if p.Killed {
		return models.FaultResult{Outcome: models.OutcomeFatal, Err: fmt.Errorf("PID %d: %w", p.PID, models.ErrProcessKilled)}
	}

	if addr%h.pageSize != 0 {
		return h.fatal(p, addr, fmt.Errorf("%w: dirección 0x%x no alineada", models.ErrInvariantViolation, addr))
	}

	h.tracer.PageFault(p.PID, p.Name, addr)

	// Antes de desalojar: si no, la propia página podría salir como víctima y volver vacía.
	if p.PageTable.IsMapped(addr) {
		return h.fatal(p, addr, fmt.Errorf("%w: 0x%x ya está mapeada", models.ErrInvariantViolation, addr))
	}

	idx := p.Heap.Find(addr)
	if idx == -1 && p.inHeapRegion(addr) {
		var err error
		if idx, err = p.Heap.Register(addr); err != nil {
			return h.fatal(p, addr, err)
		}
	}

	if idx == -1 {
		if err := h.loader.LoadPage(p, addr); err != nil {
			return h.fatal(p, addr, err)
		}
		p.TLB.Invalidate()
		return models.FaultResult{Outcome: models.OutcomeImageMapped}
	}

	outcome, err := h.handleHeapFault(p, idx, addr)
	if err != nil {
		return h.fatal(p, addr, err)
	}
	p.TLB.Invalidate()
	return models.FaultResult{Outcome: outcome}
}

func (h *FaultHandler) handleHeapFault(p *Process, idx int, addr uint64) (models.FaultOutcome, error) {
	restore := p.Heap.At(idx).InSwap()

	// Como mucho un desalojo por fault.
	if p.ResidentHeapPages >= h.maxResident {
		if err := h.evict(p); err != nil {
			return models.OutcomeFatal, err
		}
	}

	if err := p.PageTable.MapPage(addr, h.pageSize, models.PermRead|models.PermWrite|models.PermUser); err != nil {
		return models.OutcomeFatal, err
	}
	p.ResidentHeapPages++
	p.Heap.At(idx).LastAccess = h.clock.Now()

	if !restore {
		return models.OutcomeHeapMapped, nil
	}
	if err := h.retrieve(p, addr); err != nil {
		return models.OutcomeFatal, err
	}
	return models.OutcomeHeapRestored, nil
}

func (h *FaultHandler) fatal(p *Process, addr uint64, err error) models.FaultResult {
	slog.Error(fmt.Sprintf("## PID: %d - Fault fatal en 0x%x", p.PID, addr),
		"kind", models.ClassifyFaultError(err), "error", err)
	h.terminateLocked(p, err)
	return models.FaultResult{Outcome: models.OutcomeFatal, Err: err}
}
