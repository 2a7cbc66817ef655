package services

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/models"
)

// SwapArea administra los bloques del área de swap (PSA). Cada página desalojada ocupa un grupo de
// groupSize bloques contiguos que se reservan y liberan juntos.
//
// El lock solo cubre la búsqueda y marcado en el bitmap: la transferencia al disco se hace afuera, una
// vez reservados los bloques.
type SwapArea struct {
	mu        sync.Mutex
	slots     []bool // true = ocupado
	groupSize int
}

func NewSwapArea(totalBlocks int, groupSize int) *SwapArea {
	if groupSize <= 0 {
		groupSize = 1
	}
	return &SwapArea{
		slots:     make([]bool, totalBlocks),
		groupSize: groupSize,
	}
}

// AllocateGroup busca el primer índice a partir del cual hay groupSize bloques libres, los marca como
// ocupados y devuelve ese índice. Si no hay lugar devuelve models.ErrSwapExhausted.
func (s *SwapArea) AllocateGroup() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for start := 0; start+s.groupSize <= len(s.slots); start++ {
		if !s.runIsFree(start) {
			continue
		}
		for i := start; i < start+s.groupSize; i++ {
			s.slots[i] = true
		}
		return start, nil
	}

	slog.Warn("Área de swap sin grupos libres", "bloques", len(s.slots), "grupo", s.groupSize)
	return -1, models.ErrSwapExhausted
}

func (s *SwapArea) runIsFree(start int) bool {
	for i := start; i < start+s.groupSize; i++ {
		if s.slots[i] {
			return false
		}
	}
	return true
}

// FreeGroup libera el grupo que empieza en start. Liberar un grupo que no está completamente ocupado es
// una violación de invariante (doble liberación o índice corrido).
func (s *SwapArea) FreeGroup(start int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if start < 0 || start+s.groupSize > len(s.slots) {
		return fmt.Errorf("%w: grupo de swap %d fuera de rango", models.ErrInvariantViolation, start)
	}
	for i := start; i < start+s.groupSize; i++ {
		if !s.slots[i] {
			return fmt.Errorf("%w: bloque de swap %d ya estaba libre", models.ErrInvariantViolation, i)
		}
	}
	for i := start; i < start+s.groupSize; i++ {
		s.slots[i] = false
	}
	return nil
}

func (s *SwapArea) GroupSize() int {
	return s.groupSize
}

func (s *SwapArea) TotalBlocks() int {
	return len(s.slots)
}

// UsedBlocks cuenta los bloques ocupados.
func (s *SwapArea) UsedBlocks() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	used := 0
	for _, busy := range s.slots {
		if busy {
			used++
		}
	}
	return used
}

// Snapshot devuelve una copia del bitmap.
func (s *SwapArea) Snapshot() []bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]bool, len(s.slots))
	copy(out, s.slots)
	return out
}
