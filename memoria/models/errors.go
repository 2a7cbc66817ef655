package models

import (
	"errors"
	"fmt"
)

// Categorías de falla de un page fault. Todas son fatales para el proceso.
var (
	ErrResourceExhausted  = errors.New("recurso agotado")
	ErrMalformedImage     = errors.New("ejecutable mal formado")
	ErrIO                 = errors.New("error de E/S en disco")
	ErrInvariantViolation = errors.New("violación de invariante")
)

var (
	ErrSwapExhausted   = fmt.Errorf("sin grupos libres en el área de swap: %w", ErrResourceExhausted)
	ErrNoFreeFrame     = fmt.Errorf("sin marcos libres en memoria: %w", ErrResourceExhausted)
	ErrHeapExhausted   = fmt.Errorf("heap tracker lleno: %w", ErrResourceExhausted)
	ErrProcessNotFound = errors.New("proceso inexistente")
	ErrProcessExists   = errors.New("ya existe un proceso con ese PID")
	ErrProcessKilled   = errors.New("proceso finalizado por un fault fatal")
	ErrProgramNotFound = errors.New("ejecutable no encontrado")
)
