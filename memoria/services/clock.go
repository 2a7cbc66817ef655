package services

import "sync/atomic"

// Clock entrega las marcas de tiempo de último acceso del heap tracker. Solo se comparan entre sí.
type Clock interface {
	Now() uint64
}

// TickClock es un contador monótono: cada lectura devuelve un valor mayor al anterior.
type TickClock struct {
	ticks atomic.Uint64
}

func (c *TickClock) Now() uint64 {
	return c.ticks.Add(1)
}
