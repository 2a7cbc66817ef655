package services

import (
	"fmt"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/models"
)

// HeapRegistry es el heap tracker de un proceso: un arreglo de capacidad fija (MAXHEAP) que no crece.
// Los índices no tienen relación con las direcciones.
type HeapRegistry struct {
	entries []models.HeapTrackerEntry
}

func NewHeapRegistry(capacity int) *HeapRegistry {
	r := &HeapRegistry{entries: make([]models.HeapTrackerEntry, capacity)}
	r.Reset()
	return r
}

// Find devuelve el índice de la entrada de addr, o -1.
func (r *HeapRegistry) Find(addr uint64) int {
	if addr == models.UnusedAddress {
		return -1
	}
	for i := range r.entries {
		if r.entries[i].VirtualAddress == addr {
			return i
		}
	}
	return -1
}

// Register devuelve la entrada de addr, creándola en el primer lugar libre si no existe.
func (r *HeapRegistry) Register(addr uint64) (int, error) {
	if idx := r.Find(addr); idx != -1 {
		return idx, nil
	}
	for i := range r.entries {
		if !r.entries[i].Used() {
			r.entries[i] = models.HeapTrackerEntry{
				VirtualAddress: addr,
				SwapStartBlock: models.NoSwapBlock,
			}
			return i, nil
		}
	}
	return -1, fmt.Errorf("registrando 0x%x: %w", addr, models.ErrHeapExhausted)
}

// At devuelve un puntero a la entrada i para modificarla en el lugar.
func (r *HeapRegistry) At(i int) *models.HeapTrackerEntry {
	return &r.entries[i]
}

func (r *HeapRegistry) Capacity() int {
	return len(r.entries)
}

// Len cuenta las entradas en uso.
func (r *HeapRegistry) Len() int {
	used := 0
	for _, e := range r.entries {
		if e.Used() {
			used++
		}
	}
	return used
}

// Entries devuelve una copia de las entradas en uso, en orden de índice.
func (r *HeapRegistry) Entries() []models.HeapTrackerEntry {
	out := make([]models.HeapTrackerEntry, 0, len(r.entries))
	for _, e := range r.entries {
		if e.Used() {
			out = append(out, e)
		}
	}
	return out
}

func (r *HeapRegistry) Reset() {
	for i := range r.entries {
		r.entries[i] = models.HeapTrackerEntry{
			VirtualAddress: models.UnusedAddress,
			SwapStartBlock: models.NoSwapBlock,
		}
	}
}
