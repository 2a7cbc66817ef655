package services

import (
	"fmt"
	"log/slog"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/utils/list"
)

type TraceKind string

// maxTraceEvents acota el registro de un memoria que corre mucho tiempo.
const maxTraceEvents = 4096

const (
	TraceFault       TraceKind = "fault"
	TraceEvict       TraceKind = "evict"
	TraceRetrieve    TraceKind = "retrieve"
	TraceLoadSegment TraceKind = "load-segment"
)

// TraceEvent es un evento de diagnóstico del camino de page fault. Los tests verifican el orden de los
// eventos sin depender del formato de los logs.
type TraceEvent struct {
	Kind   TraceKind `json:"kind"`
	PID    uint      `json:"pid"`
	Addr   uint64    `json:"addr"`
	Slot   int       `json:"slot,omitempty"`
	Offset uint64    `json:"offset,omitempty"`
	Length uint64    `json:"length,omitempty"`
}

// Tracer guarda los últimos limit eventos; los más viejos se descartan.
type Tracer struct {
	events *list.ArrayList[TraceEvent]
	limit  int
}

func NewTracer(limit int) *Tracer {
	return &Tracer{events: list.NewArrayList[TraceEvent](64), limit: limit}
}

func (t *Tracer) add(e TraceEvent) {
	t.events.Add(e)
	if t.limit > 0 {
		t.events.TrimFront(t.limit)
	}
}

func (t *Tracer) PageFault(pid uint, name string, addr uint64) {
	t.add(TraceEvent{Kind: TraceFault, PID: pid, Addr: addr})
	slog.Info(fmt.Sprintf("## PID: %d - Page Fault - Proceso: %s - Página: 0x%x", pid, name, addr))
}

func (t *Tracer) Evict(pid uint, addr uint64, slot int) {
	t.add(TraceEvent{Kind: TraceEvict, PID: pid, Addr: addr, Slot: slot})
	slog.Info(fmt.Sprintf("## PID: %d - Página desalojada a SWAP - Página: 0x%x - Bloque: %d", pid, addr, slot))
}

func (t *Tracer) Retrieve(pid uint, addr uint64, slot int) {
	t.add(TraceEvent{Kind: TraceRetrieve, PID: pid, Addr: addr, Slot: slot})
	slog.Info(fmt.Sprintf("## PID: %d - Página recuperada de SWAP - Página: 0x%x - Bloque: %d", pid, addr, slot))
}

func (t *Tracer) LoadSegment(pid uint, addr uint64, offset uint64, length uint64) {
	t.add(TraceEvent{Kind: TraceLoadSegment, PID: pid, Addr: addr, Offset: offset, Length: length})
	slog.Info(fmt.Sprintf("## PID: %d - Carga de segmento - Página: 0x%x - Offset: %d - Tamaño: %d", pid, addr, offset, length))
}

// Events devuelve una copia de todos los eventos en orden.
func (t *Tracer) Events() []TraceEvent {
	return t.events.GetAll()
}

// EventsFor filtra los eventos de un proceso.
func (t *Tracer) EventsFor(pid uint) []TraceEvent {
	return t.events.FindAll(func(e TraceEvent) bool { return e.PID == pid }).GetAll()
}

func (t *Tracer) Reset() {
	t.events.Clear()
}

// Drain devuelve los eventos acumulados y vacía el registro.
func (t *Tracer) Drain() []TraceEvent {
	return t.events.Drain()
}
