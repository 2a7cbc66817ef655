package models

import (
	"errors"
	"fmt"
)

type Config struct {
	IpMemory     string `json:"ip_memory"`
	PortMemory   int    `json:"port_memory"`
	MemorySize   int    `json:"memory_size"`
	PageSize     int    `json:"page_size"`
	BlockSize    int    `json:"block_size"`
	PsaStart     int    `json:"psa_start"`    // primer bloque del área de swap dentro del disco
	PsaSize      int    `json:"psa_size"`     // cantidad de bloques del área de swap (PSASIZE)
	MaxHeap      int    `json:"max_heap"`     // capacidad del heap tracker por proceso (MAXHEAP)
	MaxResident  int    `json:"max_resident"` // páginas de heap residentes por proceso (MAXRESIDENT)
	SwapFilePath string `json:"swap_file_path"`
	SwapDelay    int    `json:"swap_delay"` // en milisegundos, por bloque transferido
	ProgramsPath string `json:"programs_path"`
	DumpPath     string `json:"dump_path"`
	TlbEntries   int    `json:"tlb_entries"`
	LogLevel     string `json:"log_level"`
}

var MemoryConfig *Config

// BlocksPerPage es el tamaño de un grupo de swap: los bloques que ocupa una página.
func (c *Config) BlocksPerPage() int {
	return c.PageSize / c.BlockSize
}

// Validate chequea las relaciones entre tamaños que el resto del módulo da por sentadas.
func (c *Config) Validate() error {
	var errs []error

	if c.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("page_size debe ser positivo (%d)", c.PageSize))
	}
	if c.BlockSize <= 0 {
		errs = append(errs, fmt.Errorf("block_size debe ser positivo (%d)", c.BlockSize))
	}
	if c.PageSize > 0 && c.BlockSize > 0 {
		if c.PageSize%c.BlockSize != 0 {
			errs = append(errs, fmt.Errorf("page_size %d no es múltiplo de block_size %d", c.PageSize, c.BlockSize))
		} else if c.PsaSize < c.BlocksPerPage() {
			errs = append(errs, fmt.Errorf("psa_size %d no alcanza para una página (%d bloques)", c.PsaSize, c.BlocksPerPage()))
		}
		if c.MemorySize <= 0 || c.MemorySize%c.PageSize != 0 {
			errs = append(errs, fmt.Errorf("memory_size %d debe ser múltiplo positivo de page_size", c.MemorySize))
		}
	}
	if c.PsaStart < 0 {
		errs = append(errs, fmt.Errorf("psa_start no puede ser negativo (%d)", c.PsaStart))
	}
	if c.MaxResident < 1 {
		errs = append(errs, fmt.Errorf("max_resident debe ser al menos 1 (%d)", c.MaxResident))
	}
	if c.MaxHeap < c.MaxResident {
		errs = append(errs, fmt.Errorf("max_heap %d menor que max_resident %d", c.MaxHeap, c.MaxResident))
	}

	return errors.Join(errs...)
}
