package services

import (
	"fmt"
	"log/slog"
)

// terminateLocked finaliza el proceso después de un fault fatal. El proceso queda en la tabla marcado
// como muerto hasta que se lo finalice con Exit.
func (h *FaultHandler) terminateLocked(p *Process, reason error) {
	if p.Killed {
		return
	}
	h.releaseLocked(p)
	p.Killed = true
	p.KillReason = reason
	slog.Info(fmt.Sprintf("## PID: %d - Proceso finalizado por fault fatal", p.PID), "motivo", reason)
}

// releaseLocked desarma el espacio de direcciones: marcos, grupos de swap, heap tracker y TLB.
func (h *FaultHandler) releaseLocked(p *Process) {
	frames := p.PageTable.Len()
	p.PageTable.Teardown()

	swapped := 0
	for i := 0; i < p.Heap.Capacity(); i++ {
		entry := p.Heap.At(i)
		if !entry.Used() || !entry.InSwap() {
			continue
		}
		if err := h.swap.FreeGroup(entry.SwapStartBlock); err != nil {
			slog.Error("No se pudo liberar el grupo de swap", "pid", p.PID, "slot", entry.SwapStartBlock, "error", err)
		}
		swapped++
	}

	p.Heap.Reset()
	p.HeapEnd = p.HeapStart
	p.ResidentHeapPages = 0
	p.TLB.Invalidate()

	slog.Debug("Espacio de direcciones liberado", "pid", p.PID, "marcos", frames, "grupos_swap", swapped)
}
