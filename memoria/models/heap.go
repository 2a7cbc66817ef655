package models

import "math"

const (
	// UnusedAddress marca una entrada libre del heap tracker.
	UnusedAddress uint64 = math.MaxUint64
	// NoSwapBlock indica que la página no tiene copia válida en swap.
	NoSwapBlock = -1
)

// HeapTrackerEntry es una página de heap que el proceso tocó alguna vez.
type HeapTrackerEntry struct {
	VirtualAddress uint64 `json:"virtual_address"`
	SwapStartBlock int    `json:"swap_start_block"`
	LastAccess     uint64 `json:"last_access"`
}

// Used indica si la entrada corresponde a alguna página.
func (e HeapTrackerEntry) Used() bool {
	return e.VirtualAddress != UnusedAddress
}

// InSwap indica si el contenido de la página vive en el área de swap.
func (e HeapTrackerEntry) InSwap() bool {
	return e.SwapStartBlock != NoSwapBlock
}

// Permisos de una entrada de tabla de páginas, con los mismos bits que RISC-V.
type Perm uint8

const (
	PermRead Perm = 1 << iota
	PermWrite
	PermExec
	PermUser
)

func (p Perm) String() string {
	out := []byte("----")
	if p&PermRead != 0 {
		out[0] = 'r'
	}
	if p&PermWrite != 0 {
		out[1] = 'w'
	}
	if p&PermExec != 0 {
		out[2] = 'x'
	}
	if p&PermUser != 0 {
		out[3] = 'u'
	}
	return string(out)
}
