package services

import (
	"fmt"
	"log/slog"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/models"
)

// selectVictim elige la página residente con el último acceso más viejo; ante empate gana el índice
// más bajo. Las entradas en swap o nunca mapeadas no son candidatas.
func (h *FaultHandler) selectVictim(p *Process) int {
	victim := -1
	var oldest uint64
	for i := 0; i < p.Heap.Capacity(); i++ {
		entry := p.Heap.At(i)
		if !entry.Used() || entry.InSwap() || !p.PageTable.IsMapped(entry.VirtualAddress) {
			continue
		}
		if victim == -1 || entry.LastAccess < oldest {
			victim = i
			oldest = entry.LastAccess
		}
	}
	return victim
}

// evict desaloja la víctima LRU al área de swap. Si algo falla después de reservar el grupo, el grupo
// se devuelve y el error se propaga: el fault termina el proceso.
func (h *FaultHandler) evict(p *Process) error {
	victim := h.selectVictim(p)
	if victim == -1 {
		return fmt.Errorf("%w: PID %d con %d páginas residentes y ninguna víctima",
			models.ErrInvariantViolation, p.PID, p.ResidentHeapPages)
	}
	entry := p.Heap.At(victim)

	slot, err := h.swap.AllocateGroup()
	if err != nil {
		return err
	}
	h.tracer.Evict(p.PID, entry.VirtualAddress, slot)

	if err := h.writeOut(p, entry.VirtualAddress, slot); err != nil {
		if freeErr := h.swap.FreeGroup(slot); freeErr != nil {
			slog.Error("No se pudo devolver el grupo de swap", "slot", slot, "error", freeErr)
		}
		return err
	}

	p.PageTable.UnmapPage(entry.VirtualAddress, 1)
	entry.SwapStartBlock = slot
	p.ResidentHeapPages--
	return nil
}

// writeOut copia la página a un buffer del kernel y lo escribe bloque a bloque, en orden de dirección.
func (h *FaultHandler) writeOut(p *Process, addr uint64, slot int) error {
	page := make([]byte, h.pageSize)
	if err := p.PageTable.CopyFromUser(page, addr); err != nil {
		return err
	}

	blockSize := h.device.BlockSize()
	for i := 0; i < h.swap.GroupSize(); i++ {
		if err := h.device.WriteBlock(slot+i, page[i*blockSize:(i+1)*blockSize]); err != nil {
			return fmt.Errorf("desalojando 0x%x: %w", addr, err)
		}
	}
	return nil
}

// retrieve trae de swap el contenido de addr sobre la página que el dispatcher ya mapeó, libera el
// grupo y marca la entrada como residente.
func (h *FaultHandler) retrieve(p *Process, addr uint64) error {
	idx := p.Heap.Find(addr)
	if idx == -1 || !p.Heap.At(idx).InSwap() {
		return fmt.Errorf("%w: 0x%x no está en swap", models.ErrInvariantViolation, addr)
	}
	entry := p.Heap.At(idx)
	slot := entry.SwapStartBlock
	h.tracer.Retrieve(p.PID, addr, slot)

	// El buffer se completa entero desde disco antes de copiarlo; una lectura fallida es fatal.
	page := make([]byte, h.pageSize)
	blockSize := h.device.BlockSize()
	for i := 0; i < h.swap.GroupSize(); i++ {
		if err := h.device.ReadBlock(slot+i, page[i*blockSize:(i+1)*blockSize]); err != nil {
			return fmt.Errorf("recuperando 0x%x: %w", addr, err)
		}
	}

	if err := p.PageTable.CopyToUser(addr, page); err != nil {
		return err
	}
	if err := h.swap.FreeGroup(slot); err != nil {
		return err
	}
	entry.SwapStartBlock = models.NoSwapBlock
	return nil
}
